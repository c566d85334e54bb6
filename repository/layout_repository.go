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
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE for a unique-key rejection, the sole
// concurrency-sensitive point of the layout store
const pgUniqueViolation = "23505"

// LayoutRepository implements the LayoutRepository interface
type LayoutRepository struct {
	q queryable
}

// NewLayoutRepository creates a new layout repository
func NewLayoutRepository(db *database.DB) *LayoutRepository {
	return &LayoutRepository{q: db.Pool}
}

// newLayoutRepositoryWithTx creates a new layout repository with a transaction
func newLayoutRepositoryWithTx(tx queryable) *LayoutRepository {
	return &LayoutRepository{q: tx}
}

// Create inserts a new layout row at the next version for the guild and
// returns the assigned version. The version is computed as max existing + 1
// in the same statement; if a concurrent writer races to the same version the
// composite primary key rejects the loser and ErrConflict is returned.
func (r *LayoutRepository) Create(ctx context.Context, guildID string, payload models.Layout) (int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal layout payload: %w", err)
	}

	query := `
		INSERT INTO builder_layouts (guild_id, version, payload)
		VALUES (
			$1,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM builder_layouts WHERE guild_id = $1),
			$2
		)
		RETURNING version
	`

	var version int
	err = r.q.QueryRow(ctx, query, guildID, raw).Scan(&version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, fmt.Errorf("layout save for guild %s lost version race: %w", guildID, service.ErrConflict)
		}
		return 0, fmt.Errorf("failed to create layout for guild %s: %w", guildID, err)
	}

	return version, nil
}

// Latest returns the highest-version row for the guild
func (r *LayoutRepository) Latest(ctx context.Context, guildID string) (*models.BuilderLayout, error) {
	query := `
		SELECT guild_id, version, payload, created_at
		FROM builder_layouts
		WHERE guild_id = $1
		ORDER BY version DESC
		LIMIT 1
	`

	return r.scanLayout(r.q.QueryRow(ctx, query, guildID), guildID)
}

// Get returns a specific version for the guild
func (r *LayoutRepository) Get(ctx context.Context, guildID string, version int) (*models.BuilderLayout, error) {
	query := `
		SELECT guild_id, version, payload, created_at
		FROM builder_layouts
		WHERE guild_id = $1 AND version = $2
	`

	return r.scanLayout(r.q.QueryRow(ctx, query, guildID, version), guildID)
}

// ListVersions returns all rows for the guild without payloads, newest first
func (r *LayoutRepository) ListVersions(ctx context.Context, guildID string) ([]*models.BuilderLayout, error) {
	query := `
		SELECT guild_id, version, created_at
		FROM builder_layouts
		WHERE guild_id = $1
		ORDER BY version DESC
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list layout versions for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	var layouts []*models.BuilderLayout
	for rows.Next() {
		var layout models.BuilderLayout
		if err := rows.Scan(&layout.GuildID, &layout.Version, &layout.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan layout version: %w", err)
		}
		layouts = append(layouts, &layout)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate layout versions: %w", err)
	}

	return layouts, nil
}

func (r *LayoutRepository) scanLayout(row pgx.Row, guildID string) (*models.BuilderLayout, error) {
	var layout models.BuilderLayout
	var raw []byte

	err := row.Scan(&layout.GuildID, &layout.Version, &raw, &layout.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no layout for guild %s: %w", guildID, service.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layout for guild %s: %w", guildID, err)
	}

	if err := json.Unmarshal(raw, &layout.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout payload for guild %s: %w", guildID, err)
	}

	return &layout, nil
}
