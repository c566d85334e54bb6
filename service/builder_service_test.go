package service

import (
	"context"
	"errors"
	"testing"

	"architect/events"
	"architect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func createTestBuilderService() (BuilderService, *MockLayoutService, *MockGuildClient) {
	mockLayouts := new(MockLayoutService)
	mockClient := new(MockGuildClient)
	service := NewBuilderService(mockLayouts, mockClient, events.NewBus())
	return service, mockLayouts, mockClient
}

func resultFor(report *models.BuildReport, kind models.EntityKind, name string) *models.EntityResult {
	for i := range report.Results {
		if report.Results[i].Kind == kind && report.Results[i].Name == name {
			return &report.Results[i]
		}
	}
	return nil
}

func TestBuilderService_Apply_FreshGuildCreatesEverything(t *testing.T) {
	ctx := context.Background()
	service, _, mockClient := createTestBuilderService()

	var callOrder []string

	mockClient.On("Snapshot", ctx, "guild-1").Return(models.NewGuildState(), nil)
	mockClient.On("CreateRole", ctx, "guild-1", mock.AnythingOfType("models.RoleSpec")).
		Return("role-1", nil).
		Run(func(mock.Arguments) { callOrder = append(callOrder, "role") })
	mockClient.On("CreateCategory", ctx, "guild-1", mock.AnythingOfType("models.CategorySpec"), mock.MatchedBy(func(roleIDs map[string]string) bool {
		// Roles created earlier in the pass must be resolvable by
		// normalized name
		return roleIDs["mod"] == "role-1"
	})).
		Return("cat-1", nil).
		Run(func(mock.Arguments) { callOrder = append(callOrder, "category") })
	mockClient.On("CreateChannel", ctx, "guild-1", "cat-1", mock.AnythingOfType("models.ChannelSpec"), mock.Anything).
		Return("chan-1", nil).
		Run(func(mock.Arguments) { callOrder = append(callOrder, "channel") })

	report, err := service.Apply(ctx, "guild-1", 1, testLayout())

	assert.NoError(t, err)
	assert.Equal(t, 3, report.Created())
	assert.Equal(t, 0, report.Existing())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, []string{"role", "category", "channel"}, callOrder)
	mockClient.AssertExpectations(t)
}

func TestBuilderService_Apply_SecondRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _, mockClient := createTestBuilderService()

	state := models.NewGuildState()
	state.SetRole("Mod", "role-1")
	state.SetCategory("General", "cat-1")
	state.SetChannel("General", "chat", models.ChannelTypeText, "chan-1")

	mockClient.On("Snapshot", ctx, "guild-1").Return(state, nil)

	report, err := service.Apply(ctx, "guild-1", 1, testLayout())

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Created())
	assert.Equal(t, 3, report.Existing())
	assert.Equal(t, 0, report.Failed())
	mockClient.AssertNotCalled(t, "CreateRole")
	mockClient.AssertNotCalled(t, "CreateCategory")
	mockClient.AssertNotCalled(t, "CreateChannel")
}

func TestBuilderService_Apply_MatchesDiscordRenamedChannels(t *testing.T) {
	ctx := context.Background()
	service, _, mockClient := createTestBuilderService()

	layout := models.Layout{
		Mode:  models.LayoutModeUpdate,
		Roles: []models.RoleSpec{{Name: "MOD"}},
		Categories: []models.CategorySpec{
			{Name: "General", Channels: []models.ChannelSpec{
				{Name: "General Chat", Type: models.ChannelTypeText},
			}},
		},
	}

	// After the first pass Discord reports the text channel lowercased and
	// hyphenated, and names compare case-insensitively. A second apply must
	// recognize everything as already present.
	state := models.NewGuildState()
	state.SetRole("mod", "role-1")
	state.SetCategory("GENERAL", "cat-1")
	state.SetChannel("GENERAL", "general-chat", models.ChannelTypeText, "chan-1")

	mockClient.On("Snapshot", ctx, "guild-1").Return(state, nil)

	report, err := service.Apply(ctx, "guild-1", 1, layout)

	assert.NoError(t, err)
	assert.Equal(t, 0, report.Created())
	assert.Equal(t, 3, report.Existing())
	mockClient.AssertNotCalled(t, "CreateRole")
	mockClient.AssertNotCalled(t, "CreateCategory")
	mockClient.AssertNotCalled(t, "CreateChannel")
}

func TestBuilderService_Apply_RoleFailureDoesNotAbortPass(t *testing.T) {
	ctx := context.Background()
	service, _, mockClient := createTestBuilderService()

	apiErr := &ExternalAPIError{Op: "create_role", Entity: "Mod", Err: errors.New("rate limited")}

	mockClient.On("Snapshot", ctx, "guild-1").Return(models.NewGuildState(), nil)
	mockClient.On("CreateRole", ctx, "guild-1", mock.AnythingOfType("models.RoleSpec")).Return("", apiErr)
	mockClient.On("CreateCategory", ctx, "guild-1", mock.AnythingOfType("models.CategorySpec"), mock.Anything).Return("cat-1", nil)
	mockClient.On("CreateChannel", ctx, "guild-1", "cat-1", mock.AnythingOfType("models.ChannelSpec"), mock.Anything).Return("chan-1", nil)

	report, err := service.Apply(ctx, "guild-1", 1, testLayout())

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Created())
	assert.Equal(t, 1, report.Failed())

	roleResult := resultFor(report, models.EntityRole, "Mod")
	assert.NotNil(t, roleResult)
	assert.Equal(t, models.OutcomeFailed, roleResult.Outcome)
	assert.Contains(t, roleResult.Reason, "rate limited")
}

func TestBuilderService_Apply_CategoryFailureFailsItsChannels(t *testing.T) {
	ctx := context.Background()
	service, _, mockClient := createTestBuilderService()

	layout := models.Layout{
		Mode: models.LayoutModeUpdate,
		Categories: []models.CategorySpec{
			{Name: "General", Channels: []models.ChannelSpec{{Name: "chat", Type: models.ChannelTypeText}}},
			{Name: "Voice", Channels: []models.ChannelSpec{{Name: "Lounge", Type: models.ChannelTypeVoice}}},
		},
	}

	mockClient.On("Snapshot", ctx, "guild-1").Return(models.NewGuildState(), nil)
	mockClient.On("CreateCategory", ctx, "guild-1", mock.MatchedBy(func(c models.CategorySpec) bool {
		return c.Name == "General"
	}), mock.Anything).Return("", errors.New("boom"))
	mockClient.On("CreateCategory", ctx, "guild-1", mock.MatchedBy(func(c models.CategorySpec) bool {
		return c.Name == "Voice"
	}), mock.Anything).Return("cat-voice", nil)
	mockClient.On("CreateChannel", ctx, "guild-1", "cat-voice", mock.AnythingOfType("models.ChannelSpec"), mock.Anything).Return("chan-1", nil)

	report, err := service.Apply(ctx, "guild-1", 1, layout)

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Created()) // Voice category and its channel
	assert.Equal(t, 2, report.Failed())

	chatResult := resultFor(report, models.EntityChannel, "chat")
	assert.NotNil(t, chatResult)
	assert.Equal(t, models.OutcomeFailed, chatResult.Outcome)
	assert.Equal(t, "parent category unavailable", chatResult.Reason)
}

func TestBuilderService_Apply_ChannelUnderExistingCategory(t *testing.T) {
	ctx := context.Background()
	service, _, mockClient := createTestBuilderService()

	// Category already exists; only the missing channel gets created,
	// parented to the pre-existing category ID from the snapshot.
	state := models.NewGuildState()
	state.SetRole("Mod", "role-1")
	state.SetCategory("General", "cat-old")

	mockClient.On("Snapshot", ctx, "guild-1").Return(state, nil)
	mockClient.On("CreateChannel", ctx, "guild-1", "cat-old", mock.AnythingOfType("models.ChannelSpec"), mock.MatchedBy(func(roleIDs map[string]string) bool {
		// Pre-existing roles are resolvable for overwrites too
		return roleIDs["mod"] == "role-1"
	})).Return("chan-1", nil)

	report, err := service.Apply(ctx, "guild-1", 1, testLayout())

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Created())
	assert.Equal(t, 2, report.Existing())
	mockClient.AssertNotCalled(t, "CreateRole")
	mockClient.AssertNotCalled(t, "CreateCategory")
}

func TestBuilderService_Apply_SnapshotFailureAborts(t *testing.T) {
	ctx := context.Background()
	service, _, mockClient := createTestBuilderService()

	mockClient.On("Snapshot", ctx, "guild-1").Return(nil, errors.New("guild unavailable"))

	report, err := service.Apply(ctx, "guild-1", 1, testLayout())

	assert.Error(t, err)
	assert.Nil(t, report)
	mockClient.AssertNotCalled(t, "CreateRole")
}

func TestBuilderService_ApplyLatest_UsesNewestStoredVersion(t *testing.T) {
	ctx := context.Background()
	service, mockLayouts, mockClient := createTestBuilderService()

	stored := &models.BuilderLayout{GuildID: "guild-1", Version: 4, Payload: testLayout()}
	mockLayouts.On("LatestLayout", ctx, "guild-1").Return(stored, nil)

	state := models.NewGuildState()
	state.SetRole("Mod", "role-1")
	state.SetCategory("General", "cat-1")
	state.SetChannel("General", "chat", models.ChannelTypeText, "chan-1")
	mockClient.On("Snapshot", ctx, "guild-1").Return(state, nil)

	report, err := service.ApplyLatest(ctx, "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, 4, report.Version)
	mockLayouts.AssertExpectations(t)
}

func TestBuilderService_ApplyLatest_NoStoredLayout(t *testing.T) {
	ctx := context.Background()
	service, mockLayouts, mockClient := createTestBuilderService()

	mockLayouts.On("LatestLayout", ctx, "guild-1").Return(nil, ErrNotFound)

	_, err := service.ApplyLatest(ctx, "guild-1")

	assert.ErrorIs(t, err, ErrNotFound)
	mockClient.AssertNotCalled(t, "Snapshot")
}

func TestBuilderService_ApplyVersion_LoadsRequestedVersion(t *testing.T) {
	ctx := context.Background()
	service, mockLayouts, mockClient := createTestBuilderService()

	stored := &models.BuilderLayout{GuildID: "guild-1", Version: 2, Payload: testLayout()}
	mockLayouts.On("GetLayout", ctx, "guild-1", 2).Return(stored, nil)

	state := models.NewGuildState()
	state.SetRole("Mod", "role-1")
	state.SetCategory("General", "cat-1")
	state.SetChannel("General", "chat", models.ChannelTypeText, "chan-1")
	mockClient.On("Snapshot", ctx, "guild-1").Return(state, nil)

	report, err := service.ApplyVersion(ctx, "guild-1", 2)

	assert.NoError(t, err)
	assert.Equal(t, 2, report.Version)
}

func TestBuilderService_SnapshotToLayout_StoresExportedStructure(t *testing.T) {
	ctx := context.Background()
	service, mockLayouts, mockClient := createTestBuilderService()

	exported := testLayout()
	mockClient.On("ExportLayout", ctx, "guild-1").Return(exported, nil)
	mockLayouts.On("SaveLayout", ctx, "guild-1", exported).Return(5, nil)

	version, err := service.SnapshotToLayout(ctx, "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, 5, version)
	mockLayouts.AssertExpectations(t)
	mockClient.AssertExpectations(t)
}

func TestBuilderService_SnapshotToLayout_ExportFailure(t *testing.T) {
	ctx := context.Background()
	service, mockLayouts, mockClient := createTestBuilderService()

	mockClient.On("ExportLayout", ctx, "guild-1").Return(models.Layout{}, errors.New("guild unavailable"))

	_, err := service.SnapshotToLayout(ctx, "guild-1")

	assert.Error(t, err)
	mockLayouts.AssertNotCalled(t, "SaveLayout")
}
