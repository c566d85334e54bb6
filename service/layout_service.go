package service

import (
	"context"
	"errors"
	"fmt"

	"architect/events"
	"architect/models"

	log "github.com/sirupsen/logrus"
)

// saveRetries bounds how often a save is retried after losing a version
// race. Each retry recomputes the next version in a fresh transaction.
const saveRetries = 3

// layoutService implements the LayoutService interface
type layoutService struct {
	uowFactory UnitOfWorkFactory
}

// NewLayoutService creates a new layout service
func NewLayoutService(uowFactory UnitOfWorkFactory) LayoutService {
	return &layoutService{
		uowFactory: uowFactory,
	}
}

// SaveLayout validates, normalizes, and stores a layout as a new version.
// A lost version race is retried with a freshly computed version number.
func (s *layoutService) SaveLayout(ctx context.Context, guildID string, payload models.Layout) (int, error) {
	if guildID == "" {
		return 0, models.NewValidationError("guild_id", "must not be empty")
	}

	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		version, err := s.saveOnce(ctx, guildID, payload)
		if err == nil {
			log.WithFields(log.Fields{
				"guildID": guildID,
				"version": version,
			}).Info("Saved layout version")
			return version, nil
		}
		if !errors.Is(err, ErrConflict) {
			return 0, err
		}
		lastErr = err
		log.WithFields(log.Fields{
			"guildID": guildID,
			"attempt": attempt + 1,
		}).Warn("Layout save lost version race, retrying")
	}

	return 0, lastErr
}

func (s *layoutService) saveOnce(ctx context.Context, guildID string, payload models.Layout) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	version, err := uow.LayoutRepository().Create(ctx, guildID, payload)
	if err != nil {
		return 0, err
	}

	uow.EventBus().Publish(events.LayoutSavedEvent{
		GuildID: guildID,
		Version: version,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return version, nil
}

// LatestLayout returns the newest stored layout for a guild
func (s *layoutService) LatestLayout(ctx context.Context, guildID string) (*models.BuilderLayout, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	layout, err := uow.LayoutRepository().Latest(ctx, guildID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return layout, nil
}

// GetLayout returns a specific stored version
func (s *layoutService) GetLayout(ctx context.Context, guildID string, version int) (*models.BuilderLayout, error) {
	if version < 1 {
		return nil, models.NewValidationError("version", "must be a positive integer")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	layout, err := uow.LayoutRepository().Get(ctx, guildID, version)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return layout, nil
}

// ListVersions returns the stored version history, newest first
func (s *layoutService) ListVersions(ctx context.Context, guildID string) ([]*models.BuilderLayout, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	layouts, err := uow.LayoutRepository().ListVersions(ctx, guildID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return layouts, nil
}
