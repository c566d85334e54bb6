package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"architect/events"
	"architect/models"

	log "github.com/sirupsen/logrus"
)

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory) GuildSettingsService {
	return &guildSettingsService{
		uowFactory: uowFactory,
	}
}

// GetSettings returns the settings for a guild. Guilds that were never
// configured get the defaults without a row being written.
func (s *guildSettingsService) GetSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.NewDefaultGuildSettings(guildID), nil
		}
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return settings, nil
}

// UpdateSettings applies a partial update and returns the resulting settings
func (s *guildSettingsService) UpdateSettings(ctx context.Context, guildID string, update models.GuildSettingsUpdate) (*models.GuildSettings, error) {
	if guildID == "" {
		return nil, models.NewValidationError("guild_id", "must not be empty")
	}
	if update.Timezone != nil {
		// LoadLocation accepts "" and "Local" without error, neither of
		// which is a name worth storing
		tz := strings.TrimSpace(*update.Timezone)
		if tz == "" || strings.EqualFold(tz, "local") {
			return nil, models.NewValidationError("timezone", "must be a valid IANA timezone name")
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, models.NewValidationError("timezone", "must be a valid IANA timezone name")
		}
		update.Timezone = &tz
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().Upsert(ctx, guildID, update)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.SettingsUpdatedEvent{
		GuildID: guildID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("guildID", guildID).Info("Updated guild settings")
	return settings, nil
}
