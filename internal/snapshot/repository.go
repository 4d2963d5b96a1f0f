package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no snapshot has the requested ID
var ErrNotFound = errors.New("snapshot not found")

// DefaultListLimit caps List when no limit is given
const DefaultListLimit = 50

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS dashboard_snapshots (
		id                UUID PRIMARY KEY,
		dataset_id        TEXT NOT NULL,
		selection         JSONB NOT NULL,
		total_count       INTEGER NOT NULL,
		mean_user_score   DOUBLE PRECISION,
		mean_critic_score DOUBLE PRECISION,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_dashboard_snapshots_created_at
		ON dashboard_snapshots (created_at DESC);
`

// Repository handles snapshot persistence
// ⭐ SSOT: dashboard_snapshots is read and written only here
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new snapshot repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the snapshot table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// Save stores a snapshot
func (r *Repository) Save(ctx context.Context, s *Snapshot) error {
	selectionJSON, err := json.Marshal(s.Selection)
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	query := `
		INSERT INTO dashboard_snapshots (
			id, dataset_id, selection, total_count, mean_user_score, mean_critic_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID, s.DatasetID, selectionJSON, s.TotalCount,
		nullable(s.MeanUserScore), nullable(s.MeanCriticScore), s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID
func (r *Repository) Get(ctx context.Context, id string) (*Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}

	query := `
		SELECT id::text, dataset_id, selection, total_count, mean_user_score, mean_critic_score, created_at
		FROM dashboard_snapshots
		WHERE id = $1
	`

	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return s, nil
}

// List returns the newest snapshots first
func (r *Repository) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id::text, dataset_id, selection, total_count, mean_user_score, mean_critic_score, created_at
		FROM dashboard_snapshots
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return snapshots, nil
}

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	var selectionJSON []byte
	var meanUser, meanCritic *float64

	err := row.Scan(
		&s.ID, &s.DatasetID, &selectionJSON, &s.TotalCount,
		&meanUser, &meanCritic, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(selectionJSON, &s.Selection); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selection: %w", err)
	}
	s.MeanUserScore = fromNullable(meanUser)
	s.MeanCriticScore = fromNullable(meanCritic)

	return &s, nil
}
