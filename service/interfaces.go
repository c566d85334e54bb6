package service

import (
	"context"

	"architect/events"
	"architect/models"
)

// LayoutRepository defines the interface for versioned layout storage
type LayoutRepository interface {
	// Create inserts a new layout row at the next version for the guild
	// (max existing + 1, starting at 1) and returns the assigned version.
	// Returns ErrConflict if a concurrent insert raced to the same version.
	Create(ctx context.Context, guildID string, payload models.Layout) (int, error)

	// Latest returns the highest-version row for the guild, or ErrNotFound
	Latest(ctx context.Context, guildID string) (*models.BuilderLayout, error)

	// Get returns a specific version for the guild, or ErrNotFound
	Get(ctx context.Context, guildID string, version int) (*models.BuilderLayout, error)

	// ListVersions returns all rows for the guild without payloads, newest
	// first
	ListVersions(ctx context.Context, guildID string) ([]*models.BuilderLayout, error)
}

// GuildSettingsRepository defines the interface for per-guild configuration
type GuildSettingsRepository interface {
	// Get retrieves settings for a guild, or ErrNotFound if never configured
	Get(ctx context.Context, guildID string) (*models.GuildSettings, error)

	// Upsert creates the row with defaults if absent, otherwise applies the
	// partial update. updated_at is refreshed on every call.
	Upsert(ctx context.Context, guildID string, update models.GuildSettingsUpdate) (*models.GuildSettings, error)
}

// UnitOfWork provides transactional access to repositories
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction; no-op if already committed
	Rollback() error

	// LayoutRepository returns the layout repository bound to this transaction
	LayoutRepository() LayoutRepository

	// GuildSettingsRepository returns the settings repository bound to this
	// transaction
	GuildSettingsRepository() GuildSettingsRepository

	// EventBus returns the transactional event publisher for this unit of work
	EventBus() EventPublisher
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	// Publish stages an event for delivery when the unit of work commits
	Publish(event events.Event)
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// GuildClient is the guild-management API surface the applier mutates.
// Implementations issue one external call per method; the applier sequences
// them and owns all ordering and error-accumulation policy.
type GuildClient interface {
	// Snapshot returns the current structure of the guild keyed by name
	Snapshot(ctx context.Context, guildID string) (*models.GuildState, error)

	// ExportLayout captures the live guild structure as a full layout
	// document suitable for storing as a new version
	ExportLayout(ctx context.Context, guildID string) (models.Layout, error)

	// CreateRole creates a role and returns its ID
	CreateRole(ctx context.Context, guildID string, spec models.RoleSpec) (string, error)

	// CreateCategory creates a category and returns its ID. Overwrites are
	// resolved against roleIDs, which covers the snapshot plus roles created
	// earlier in the same pass.
	CreateCategory(ctx context.Context, guildID string, spec models.CategorySpec, roleIDs map[string]string) (string, error)

	// CreateChannel creates a channel under the given parent category ID
	// and returns its ID
	CreateChannel(ctx context.Context, guildID string, parentID string, spec models.ChannelSpec, roleIDs map[string]string) (string, error)
}

// LayoutService defines the interface for layout store operations
type LayoutService interface {
	// SaveLayout validates, normalizes, and stores a layout as a new version
	SaveLayout(ctx context.Context, guildID string, payload models.Layout) (int, error)

	// LatestLayout returns the newest stored layout for a guild
	LatestLayout(ctx context.Context, guildID string) (*models.BuilderLayout, error)

	// GetLayout returns a specific stored version
	GetLayout(ctx context.Context, guildID string, version int) (*models.BuilderLayout, error)

	// ListVersions returns the stored version history, newest first
	ListVersions(ctx context.Context, guildID string) ([]*models.BuilderLayout, error)
}

// GuildSettingsService defines the interface for per-guild configuration
type GuildSettingsService interface {
	// GetSettings returns the guild's settings, or defaults if never
	// configured. Absence is not an error.
	GetSettings(ctx context.Context, guildID string) (*models.GuildSettings, error)

	// UpdateSettings applies a partial update, creating the row if needed
	UpdateSettings(ctx context.Context, guildID string, update models.GuildSettingsUpdate) (*models.GuildSettings, error)
}

// BuilderService defines the interface for applying stored layouts to guilds
type BuilderService interface {
	// ApplyLatest loads the newest stored layout for the guild and applies
	// it. Returns ErrNotFound when no layout has been saved.
	ApplyLatest(ctx context.Context, guildID string) (*models.BuildReport, error)

	// ApplyVersion applies a specific stored version
	ApplyVersion(ctx context.Context, guildID string, version int) (*models.BuildReport, error)

	// Apply reconciles the given payload against the live guild structure,
	// issuing only the create calls needed
	Apply(ctx context.Context, guildID string, version int, payload models.Layout) (*models.BuildReport, error)

	// SnapshotToLayout captures the live guild structure and stores it as a
	// new layout version, returning the assigned version
	SnapshotToLayout(ctx context.Context, guildID string) (int, error)
}
