package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

// Connect opens a pgx connection pool and pings the database
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// PostgresHistory keeps criteria history in the criteria_history table
type PostgresHistory struct {
	pool *pgxpool.Pool
}

func NewPostgresHistory(ctx context.Context, pool *pgxpool.Pool) (*PostgresHistory, error) {
	h := &PostgresHistory{pool: pool}
	if err := h.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to create criteria history schema: %w", err)
	}
	return h, nil
}

func (h *PostgresHistory) ensureSchema(ctx context.Context) error {
	_, err := h.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS criteria_history (
	id UUID PRIMARY KEY,
	owner TEXT NOT NULL,
	criteria JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_criteria_history_owner ON criteria_history(owner, created_at DESC);
`)
	return err
}

func (h *PostgresHistory) Save(ctx context.Context, owner string, criteria models.JobCriteria) (SavedCriteria, error) {
	saved := SavedCriteria{
		ID:        uuid.New(),
		Owner:     owner,
		Criteria:  criteria,
		CreatedAt: time.Now().UTC(),
	}
	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return SavedCriteria{}, fmt.Errorf("failed to encode criteria: %w", err)
	}

	_, err = h.pool.Exec(ctx, `
INSERT INTO criteria_history (id, owner, criteria, created_at)
VALUES ($1, $2, $3, $4)
`, saved.ID, saved.Owner, criteriaJSON, saved.CreatedAt)
	if err != nil {
		return SavedCriteria{}, fmt.Errorf("failed to save criteria: %w", err)
	}
	return saved, nil
}

func (h *PostgresHistory) List(ctx context.Context, owner string, limit int) ([]SavedCriteria, error) {
	if limit <= 0 {
		limit = MaxHistoryEntries
	}
	rows, err := h.pool.Query(ctx, `
SELECT id, owner, criteria, created_at FROM criteria_history
WHERE owner = $1
ORDER BY created_at DESC
LIMIT $2
`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	defer rows.Close()

	out := []SavedCriteria{}
	for rows.Next() {
		s, err := scanSaved(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	return out, nil
}

func (h *PostgresHistory) Get(ctx context.Context, owner string, id uuid.UUID) (SavedCriteria, error) {
	row := h.pool.QueryRow(ctx, `
SELECT id, owner, criteria, created_at FROM criteria_history WHERE id = $1 AND owner = $2
`, id, owner)
	s, err := scanSaved(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SavedCriteria{}, ErrNotFound
	}
	return s, err
}

func (h *PostgresHistory) Name() string { return "postgres" }

func (h *PostgresHistory) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return h.pool.Ping(ctx)
}

func scanSaved(row pgx.Row) (SavedCriteria, error) {
	var s SavedCriteria
	var criteriaBytes []byte
	if err := row.Scan(&s.ID, &s.Owner, &criteriaBytes, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SavedCriteria{}, err
		}
		return SavedCriteria{}, fmt.Errorf("failed to read criteria: %w", err)
	}
	if err := json.Unmarshal(criteriaBytes, &s.Criteria); err != nil {
		return SavedCriteria{}, fmt.Errorf("failed to decode criteria %s: %w", s.ID, err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}
