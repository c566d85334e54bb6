package service

import (
	"context"
	"testing"

	"architect/events"
	"architect/models"

	"github.com/stretchr/testify/assert"
)

func TestGuildSettingsService_GetSettings_DefaultsForUnconfiguredGuild(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockGuildSettingsRepository)

	mockUoW.SetRepositories(nil, mockSettingsRepo, nil)

	service := NewGuildSettingsService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx, "guild-1").Return(nil, ErrNotFound)

	settings, err := service.GetSettings(ctx, "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, "guild-1", settings.GuildID)
	assert.Equal(t, models.DefaultTimezone, settings.Timezone)
	assert.Nil(t, settings.AdminChannelID)
	mockSettingsRepo.AssertExpectations(t)
}

func TestGuildSettingsService_GetSettings_ReturnsStoredRow(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockGuildSettingsRepository)

	mockUoW.SetRepositories(nil, mockSettingsRepo, nil)

	service := NewGuildSettingsService(mockFactory)

	adminChannel := "123456789"
	stored := &models.GuildSettings{
		GuildID:        "guild-1",
		Timezone:       "Europe/Berlin",
		AdminChannelID: &adminChannel,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx, "guild-1").Return(stored, nil)

	settings, err := service.GetSettings(ctx, "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, stored, settings)
}

func TestGuildSettingsService_UpdateSettings_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockGuildSettingsRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(nil, mockSettingsRepo, mockPublisher)

	service := NewGuildSettingsService(mockFactory)

	tz := "Europe/Berlin"
	update := models.GuildSettingsUpdate{Timezone: &tz}
	updated := &models.GuildSettings{GuildID: "guild-1", Timezone: tz}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Upsert", ctx, "guild-1", update).Return(updated, nil)
	mockPublisher.On("Publish", events.SettingsUpdatedEvent{GuildID: "guild-1"}).Return()

	settings, err := service.UpdateSettings(ctx, "guild-1", update)

	assert.NoError(t, err)
	assert.Equal(t, updated, settings)

	mockSettingsRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestGuildSettingsService_UpdateSettings_RejectsBogusTimezone(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewGuildSettingsService(mockFactory)

	tz := "Mars/Olympus_Mons"
	_, err := service.UpdateSettings(ctx, "guild-1", models.GuildSettingsUpdate{Timezone: &tz})

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestGuildSettingsService_UpdateSettings_RejectsBlankTimezone(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewGuildSettingsService(mockFactory)

	// LoadLocation resolves both of these without error, so they need
	// explicit rejection before an empty name reaches storage
	for _, tz := range []string{"", "   ", "Local"} {
		tz := tz
		_, err := service.UpdateSettings(ctx, "guild-1", models.GuildSettingsUpdate{Timezone: &tz})

		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr, "timezone %q", tz)
	}
	mockFactory.AssertNotCalled(t, "Create")
}
