// Package store holds the state the service keeps between requests: a
// key-value store for per-session data and the saved criteria history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

// ErrNotFound is returned when a saved entry does not exist
var ErrNotFound = errors.New("not found")

// KV stores opaque values by key. A zero ttl keeps the value until it is
// deleted.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SavedCriteria is one entry of a user's criteria history
type SavedCriteria struct {
	ID        uuid.UUID          `json:"id"`
	Owner     string             `json:"owner"`
	Criteria  models.JobCriteria `json:"criteria"`
	CreatedAt time.Time          `json:"created_at"`
}

// CriteriaHistory keeps the criteria each user has submitted. List returns
// the newest entries first.
type CriteriaHistory interface {
	Save(ctx context.Context, owner string, criteria models.JobCriteria) (SavedCriteria, error)
	List(ctx context.Context, owner string, limit int) ([]SavedCriteria, error)
	Get(ctx context.Context, owner string, id uuid.UUID) (SavedCriteria, error)
}

// Checker reports whether a backing service is reachable
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}
