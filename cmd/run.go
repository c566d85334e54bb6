package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"architect/bot"
	"architect/config"
	"architect/dashboard"
	"architect/database"
	"architect/events"
	"architect/repository"
	"architect/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting architect...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	layoutService := service.NewLayoutService(uowFactory)
	settingsService := service.NewGuildSettingsService(uowFactory)

	// Initialize Discord bot. The bot owns the session, so the guild client
	// and builder service are wired inside it.
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:          cfg.DiscordToken,
		ApplyEditDelay: cfg.ApplyEditDelay,
	}
	discordBot, err := bot.New(botConfig, layoutService, settingsService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized")

	// Start the dashboard HTTP server
	dashboardServer := dashboard.NewServer(layoutService, settingsService, discordBot.GuildClient())
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- dashboardServer.Start(cfg.DashboardAddr)
	}()

	log.Infof("Running in %s mode", cfg.Environment)

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Errorf("Dashboard server error: %v", err)
		}
	}

	// Cleanup resources
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := dashboardServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down dashboard server: %v", err)
	}

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown complete")
	return nil
}
