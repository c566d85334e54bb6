package repository

import (
	"context"
	"testing"
	"time"

	"architect/models"
	"architect/repository/testutil"
	"architect/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGuildSettingsRepository_Get(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unconfigured guild", func(t *testing.T) {
		settings, err := repo.Get(ctx, "missing-guild")
		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.Nil(t, settings)
	})

	t.Run("configured guild", func(t *testing.T) {
		_, err := repo.Upsert(ctx, "guild-1", models.GuildSettingsUpdate{
			Timezone: strPtr("Europe/Berlin"),
		})
		require.NoError(t, err)

		settings, err := repo.Get(ctx, "guild-1")
		require.NoError(t, err)
		assert.Equal(t, "guild-1", settings.GuildID)
		assert.Equal(t, "Europe/Berlin", settings.Timezone)
		assert.Nil(t, settings.AdminChannelID)
		assert.NotNil(t, settings.Features)
	})
}

func TestGuildSettingsRepository_Upsert(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates row with defaults", func(t *testing.T) {
		settings, err := repo.Upsert(ctx, "guild-1", models.GuildSettingsUpdate{})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTimezone, settings.Timezone)
		assert.Nil(t, settings.AdminChannelID)
		assert.Empty(t, settings.Features)
		assert.False(t, settings.CreatedAt.IsZero())
	})

	t.Run("partial update leaves other fields untouched", func(t *testing.T) {
		_, err := repo.Upsert(ctx, "guild-2", models.GuildSettingsUpdate{
			Timezone:       strPtr("America/Chicago"),
			AdminChannelID: strPtr("chan-42"),
		})
		require.NoError(t, err)

		settings, err := repo.Upsert(ctx, "guild-2", models.GuildSettingsUpdate{
			Features: map[string]bool{"announce_saves": true},
		})
		require.NoError(t, err)

		assert.Equal(t, "America/Chicago", settings.Timezone)
		require.NotNil(t, settings.AdminChannelID)
		assert.Equal(t, "chan-42", *settings.AdminChannelID)
		assert.True(t, settings.FeatureEnabled("announce_saves"))
	})

	t.Run("feature flags merge instead of replace", func(t *testing.T) {
		_, err := repo.Upsert(ctx, "guild-3", models.GuildSettingsUpdate{
			Features: map[string]bool{"announce_saves": true},
		})
		require.NoError(t, err)

		settings, err := repo.Upsert(ctx, "guild-3", models.GuildSettingsUpdate{
			Features: map[string]bool{"allow_snapshot": true},
		})
		require.NoError(t, err)

		assert.True(t, settings.FeatureEnabled("announce_saves"))
		assert.True(t, settings.FeatureEnabled("allow_snapshot"))
	})

	t.Run("empty admin channel clears the setting", func(t *testing.T) {
		_, err := repo.Upsert(ctx, "guild-4", models.GuildSettingsUpdate{
			AdminChannelID: strPtr("chan-1"),
		})
		require.NoError(t, err)

		settings, err := repo.Upsert(ctx, "guild-4", models.GuildSettingsUpdate{
			AdminChannelID: strPtr(""),
		})
		require.NoError(t, err)
		assert.Nil(t, settings.AdminChannelID)
	})

	t.Run("updated_at refreshes on every mutation", func(t *testing.T) {
		first, err := repo.Upsert(ctx, "guild-5", models.GuildSettingsUpdate{})
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		second, err := repo.Upsert(ctx, "guild-5", models.GuildSettingsUpdate{
			Timezone: strPtr("UTC"),
		})
		require.NoError(t, err)

		assert.Equal(t, first.CreatedAt, second.CreatedAt)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt) || second.UpdatedAt.Equal(first.UpdatedAt))
		assert.True(t, !second.UpdatedAt.Before(first.UpdatedAt))
	})

	t.Run("exactly one row per guild", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := repo.Upsert(ctx, "guild-6", models.GuildSettingsUpdate{})
			require.NoError(t, err)
		}

		var count int
		err := testDB.DB.QueryRow(ctx, "SELECT COUNT(*) FROM guild_settings WHERE guild_id = $1", "guild-6").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
