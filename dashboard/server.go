package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"architect/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Server is the HTTP surface the layout dashboard talks to
type Server struct {
	layoutService   service.LayoutService
	settingsService service.GuildSettingsService
	guildClient     service.GuildClient
	httpServer      *http.Server
}

// NewServer creates a new dashboard server
func NewServer(layoutService service.LayoutService, settingsService service.GuildSettingsService, guildClient service.GuildClient) *Server {
	return &Server{
		layoutService:   layoutService,
		settingsService: settingsService,
		guildClient:     guildClient,
	}
}

// Router builds the dashboard route tree
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", s.handlePing)

		r.Route("/layout/{guildID}", func(r chi.Router) {
			r.Post("/", s.handleSaveLayout)
			r.Get("/latest", s.handleLatestLayout)
			r.Get("/versions", s.handleListVersions)
			r.Get("/versions/{version}", s.handleGetVersion)
		})

		r.Get("/live_layout/{guildID}", s.handleLiveLayout)

		r.Route("/settings/{guildID}", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/", s.handleUpdateSettings)
		})
	})

	return r
}

// Start begins serving on the given address. Blocks until the listener fails
// or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	log.WithField("addr", addr).Info("Starting dashboard server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
