package service

import (
	"context"
	"testing"

	"architect/events"
	"architect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testLayout() models.Layout {
	return models.Layout{
		Mode: models.LayoutModeUpdate,
		Roles: []models.RoleSpec{
			{Name: "Mod", Color: "#00ff00"},
		},
		Categories: []models.CategorySpec{
			{
				Name: "General",
				Channels: []models.ChannelSpec{
					{Name: "chat", Type: models.ChannelTypeText},
				},
			},
		},
	}
}

func TestLayoutService_SaveLayout_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLayoutRepo := new(MockLayoutRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockLayoutRepo, nil, mockPublisher)

	service := NewLayoutService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLayoutRepo.On("Create", ctx, "guild-1", mock.AnythingOfType("models.Layout")).Return(1, nil)
	mockPublisher.On("Publish", events.LayoutSavedEvent{GuildID: "guild-1", Version: 1}).Return()

	version, err := service.SaveLayout(ctx, "guild-1", testLayout())

	assert.NoError(t, err)
	assert.Equal(t, 1, version)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockLayoutRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestLayoutService_SaveLayout_NormalizesBeforeStoring(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLayoutRepo := new(MockLayoutRepository)

	mockUoW.SetRepositories(mockLayoutRepo, nil, nil)

	service := NewLayoutService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Legacy dashboard shape: split channel lists, no mode, no channel type
	submitted := models.Layout{
		Categories: []models.CategorySpec{
			{
				Name:          "General",
				ChannelsText:  []models.ChannelSpec{{Name: "chat"}},
				ChannelsVoice: []models.ChannelSpec{{Name: "Lounge", Type: models.ChannelTypeVoice}},
			},
		},
	}

	mockLayoutRepo.On("Create", ctx, "guild-1", mock.MatchedBy(func(l models.Layout) bool {
		if l.Mode != models.LayoutModeUpdate {
			return false
		}
		cat := l.Categories[0]
		return len(cat.Channels) == 2 &&
			cat.ChannelsText == nil && cat.ChannelsVoice == nil &&
			cat.Channels[0].Type == models.ChannelTypeText
	})).Return(1, nil)

	_, err := service.SaveLayout(ctx, "guild-1", submitted)

	assert.NoError(t, err)
	mockLayoutRepo.AssertExpectations(t)
}

func TestLayoutService_SaveLayout_RejectsInvalidLayout(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewLayoutService(mockFactory)

	invalid := testLayout()
	invalid.Roles[0].Name = ""

	_, err := service.SaveLayout(ctx, "guild-1", invalid)

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestLayoutService_SaveLayout_RejectsEmptyGuildID(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewLayoutService(mockFactory)

	_, err := service.SaveLayout(ctx, "", testLayout())

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestLayoutService_SaveLayout_RetriesOnVersionRace(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLayoutRepo := new(MockLayoutRepository)

	mockUoW.SetRepositories(mockLayoutRepo, nil, nil)

	service := NewLayoutService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// First attempt loses the race, second lands on the next version
	mockLayoutRepo.On("Create", ctx, "guild-1", mock.AnythingOfType("models.Layout")).Return(0, ErrConflict).Once()
	mockLayoutRepo.On("Create", ctx, "guild-1", mock.AnythingOfType("models.Layout")).Return(3, nil).Once()

	version, err := service.SaveLayout(ctx, "guild-1", testLayout())

	assert.NoError(t, err)
	assert.Equal(t, 3, version)
	mockLayoutRepo.AssertExpectations(t)
}

func TestLayoutService_SaveLayout_GivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLayoutRepo := new(MockLayoutRepository)

	mockUoW.SetRepositories(mockLayoutRepo, nil, nil)

	service := NewLayoutService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLayoutRepo.On("Create", ctx, "guild-1", mock.AnythingOfType("models.Layout")).Return(0, ErrConflict).Times(3)

	_, err := service.SaveLayout(ctx, "guild-1", testLayout())

	assert.ErrorIs(t, err, ErrConflict)
	mockLayoutRepo.AssertExpectations(t)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestLayoutService_LatestLayout_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockLayoutRepo := new(MockLayoutRepository)

	mockUoW.SetRepositories(mockLayoutRepo, nil, nil)

	service := NewLayoutService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockLayoutRepo.On("Latest", ctx, "guild-1").Return(nil, ErrNotFound)

	_, err := service.LatestLayout(ctx, "guild-1")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLayoutService_GetLayout_RejectsNonPositiveVersion(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewLayoutService(mockFactory)

	_, err := service.GetLayout(ctx, "guild-1", 0)

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockFactory.AssertNotCalled(t, "Create")
}
