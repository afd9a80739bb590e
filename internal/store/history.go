package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/resume-shortlister/internal/models"
)

// MaxHistoryEntries bounds how many criteria KVHistory keeps per owner
const MaxHistoryEntries = 50

// KVHistory keeps each owner's criteria history as one JSON list in a KV.
// Writes are serialized within the process only.
type KVHistory struct {
	kv  KV
	mu  sync.Mutex
	now func() time.Time
}

func NewKVHistory(kv KV) *KVHistory {
	return &KVHistory{kv: kv, now: time.Now}
}

func historyKey(owner string) string {
	return "history:" + owner
}

func (h *KVHistory) load(ctx context.Context, owner string) ([]SavedCriteria, error) {
	data, ok, err := h.kv.Get(ctx, historyKey(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to load criteria history: %w", err)
	}
	if !ok {
		return []SavedCriteria{}, nil
	}

	var entries []SavedCriteria
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode criteria history: %w", err)
	}
	return entries, nil
}

func (h *KVHistory) Save(ctx context.Context, owner string, criteria models.JobCriteria) (SavedCriteria, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.load(ctx, owner)
	if err != nil {
		return SavedCriteria{}, err
	}

	saved := SavedCriteria{
		ID:        uuid.New(),
		Owner:     owner,
		Criteria:  criteria,
		CreatedAt: h.now().UTC(),
	}
	entries = append([]SavedCriteria{saved}, entries...)
	if len(entries) > MaxHistoryEntries {
		entries = entries[:MaxHistoryEntries]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return SavedCriteria{}, fmt.Errorf("failed to encode criteria history: %w", err)
	}
	if err := h.kv.Set(ctx, historyKey(owner), data, 0); err != nil {
		return SavedCriteria{}, fmt.Errorf("failed to save criteria history: %w", err)
	}
	return saved, nil
}

func (h *KVHistory) List(ctx context.Context, owner string, limit int) ([]SavedCriteria, error) {
	entries, err := h.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (h *KVHistory) Get(ctx context.Context, owner string, id uuid.UUID) (SavedCriteria, error) {
	entries, err := h.load(ctx, owner)
	if err != nil {
		return SavedCriteria{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return SavedCriteria{}, ErrNotFound
}
