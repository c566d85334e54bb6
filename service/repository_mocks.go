package service

import (
	"context"

	"architect/events"
	"architect/models"

	"github.com/stretchr/testify/mock"
)

// MockLayoutRepository is a mock implementation of LayoutRepository
type MockLayoutRepository struct {
	mock.Mock
}

func (m *MockLayoutRepository) Create(ctx context.Context, guildID string, payload models.Layout) (int, error) {
	args := m.Called(ctx, guildID, payload)
	return args.Int(0), args.Error(1)
}

func (m *MockLayoutRepository) Latest(ctx context.Context, guildID string) (*models.BuilderLayout, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuilderLayout), args.Error(1)
}

func (m *MockLayoutRepository) Get(ctx context.Context, guildID string, version int) (*models.BuilderLayout, error) {
	args := m.Called(ctx, guildID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuilderLayout), args.Error(1)
}

func (m *MockLayoutRepository) ListVersions(ctx context.Context, guildID string) ([]*models.BuilderLayout, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BuilderLayout), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) Get(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) Upsert(ctx context.Context, guildID string, update models.GuildSettingsUpdate) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories rather than expectations, since the
// accessors carry no interesting behavior.
type MockUnitOfWork struct {
	mock.Mock

	layoutRepo        LayoutRepository
	guildSettingsRepo GuildSettingsRepository
	eventPublisher    EventPublisher
}

// SetRepositories configures the repositories returned by the accessors.
// A nil eventPublisher is replaced with a permissive mock so services can
// publish without each test declaring the expectation.
func (m *MockUnitOfWork) SetRepositories(layoutRepo LayoutRepository, guildSettingsRepo GuildSettingsRepository, eventPublisher EventPublisher) {
	if eventPublisher == nil {
		permissive := new(MockEventPublisher)
		permissive.On("Publish", mock.Anything).Maybe()
		eventPublisher = permissive
	}
	m.layoutRepo = layoutRepo
	m.guildSettingsRepo = guildSettingsRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) LayoutRepository() LayoutRepository {
	return m.layoutRepo
}

func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return m.guildSettingsRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockGuildClient is a mock implementation of GuildClient
type MockGuildClient struct {
	mock.Mock
}

func (m *MockGuildClient) Snapshot(ctx context.Context, guildID string) (*models.GuildState, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildState), args.Error(1)
}

func (m *MockGuildClient) ExportLayout(ctx context.Context, guildID string) (models.Layout, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(models.Layout), args.Error(1)
}

func (m *MockGuildClient) CreateRole(ctx context.Context, guildID string, spec models.RoleSpec) (string, error) {
	args := m.Called(ctx, guildID, spec)
	return args.String(0), args.Error(1)
}

func (m *MockGuildClient) CreateCategory(ctx context.Context, guildID string, spec models.CategorySpec, roleIDs map[string]string) (string, error) {
	args := m.Called(ctx, guildID, spec, roleIDs)
	return args.String(0), args.Error(1)
}

func (m *MockGuildClient) CreateChannel(ctx context.Context, guildID string, parentID string, spec models.ChannelSpec, roleIDs map[string]string) (string, error) {
	args := m.Called(ctx, guildID, parentID, spec, roleIDs)
	return args.String(0), args.Error(1)
}
