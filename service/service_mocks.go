package service

import (
	"context"

	"architect/models"

	"github.com/stretchr/testify/mock"
)

// MockLayoutService is a mock implementation of LayoutService
type MockLayoutService struct {
	mock.Mock
}

func (m *MockLayoutService) SaveLayout(ctx context.Context, guildID string, payload models.Layout) (int, error) {
	args := m.Called(ctx, guildID, payload)
	return args.Int(0), args.Error(1)
}

func (m *MockLayoutService) LatestLayout(ctx context.Context, guildID string) (*models.BuilderLayout, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuilderLayout), args.Error(1)
}

func (m *MockLayoutService) GetLayout(ctx context.Context, guildID string, version int) (*models.BuilderLayout, error) {
	args := m.Called(ctx, guildID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuilderLayout), args.Error(1)
}

func (m *MockLayoutService) ListVersions(ctx context.Context, guildID string) ([]*models.BuilderLayout, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BuilderLayout), args.Error(1)
}

// MockGuildSettingsService is a mock implementation of GuildSettingsService
type MockGuildSettingsService struct {
	mock.Mock
}

func (m *MockGuildSettingsService) GetSettings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) UpdateSettings(ctx context.Context, guildID string, update models.GuildSettingsUpdate) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

// MockBuilderService is a mock implementation of BuilderService
type MockBuilderService struct {
	mock.Mock
}

func (m *MockBuilderService) ApplyLatest(ctx context.Context, guildID string) (*models.BuildReport, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuildReport), args.Error(1)
}

func (m *MockBuilderService) ApplyVersion(ctx context.Context, guildID string, version int) (*models.BuildReport, error) {
	args := m.Called(ctx, guildID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuildReport), args.Error(1)
}

func (m *MockBuilderService) Apply(ctx context.Context, guildID string, version int, payload models.Layout) (*models.BuildReport, error) {
	args := m.Called(ctx, guildID, version, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuildReport), args.Error(1)
}

func (m *MockBuilderService) SnapshotToLayout(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}
