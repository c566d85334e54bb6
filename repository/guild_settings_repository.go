package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"architect/database"
	"architect/models"
	"architect/service"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

// newGuildSettingsRepositoryWithTx creates a new guild settings repository with a transaction
func newGuildSettingsRepositoryWithTx(tx queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

// Get retrieves settings for a guild
func (r *GuildSettingsRepository) Get(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	query := `
		SELECT guild_id, timezone, admin_channel_id, features, created_at, updated_at
		FROM guild_settings
		WHERE guild_id = $1
	`

	settings, err := scanSettings(r.q.QueryRow(ctx, query, guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no settings for guild %s: %w", guildID, service.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for guild %s: %w", guildID, err)
	}

	return settings, nil
}

// Upsert creates the row with defaults if absent, otherwise applies the
// partial update. updated_at is always refreshed.
func (r *GuildSettingsRepository) Upsert(ctx context.Context, guildID string, update models.GuildSettingsUpdate) (*models.GuildSettings, error) {
	current, err := r.Get(ctx, guildID)
	if errors.Is(err, service.ErrNotFound) {
		current = models.NewDefaultGuildSettings(guildID)
	} else if err != nil {
		return nil, err
	}

	if update.Timezone != nil {
		current.Timezone = *update.Timezone
	}
	if update.AdminChannelID != nil {
		if *update.AdminChannelID == "" {
			current.AdminChannelID = nil
		} else {
			current.AdminChannelID = update.AdminChannelID
		}
	}
	if update.Features != nil {
		if current.Features == nil {
			current.Features = map[string]bool{}
		}
		for name, enabled := range update.Features {
			current.Features[name] = enabled
		}
	}

	features, err := json.Marshal(current.Features)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features for guild %s: %w", guildID, err)
	}

	query := `
		INSERT INTO guild_settings (guild_id, timezone, admin_channel_id, features)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
		    admin_channel_id = EXCLUDED.admin_channel_id,
		    features = EXCLUDED.features,
		    updated_at = NOW()
		RETURNING guild_id, timezone, admin_channel_id, features, created_at, updated_at
	`

	settings, err := scanSettings(r.q.QueryRow(ctx, query, guildID, current.Timezone, current.AdminChannelID, features))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert settings for guild %s: %w", guildID, err)
	}

	return settings, nil
}

func scanSettings(row pgx.Row) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	var features []byte

	err := row.Scan(
		&settings.GuildID,
		&settings.Timezone,
		&settings.AdminChannelID,
		&features,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(features, &settings.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}

	return &settings, nil
}
