package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/wildaware/internal/model"
)

// MemoryStore keeps everything for the lifetime of the process
type MemoryStore struct {
	mu         sync.RWMutex
	sightings  []model.Sighting
	activities []model.Activity
	now        func() time.Time
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// AddSighting validates and stores a sighting
func (m *MemoryStore) AddSighting(ctx context.Context, s model.Sighting) (model.Sighting, error) {
	s, err := prepareSighting(s, m.now())
	if err != nil {
		return s, err
	}
	m.mu.Lock()
	m.sightings = append(m.sightings, s)
	m.mu.Unlock()
	return s, nil
}

// ListSightings returns sightings newest first
func (m *MemoryStore) ListSightings(ctx context.Context, limit int) ([]model.Sighting, error) {
	m.mu.RLock()
	out := make([]model.Sighting, len(m.sightings))
	copy(out, m.sightings)
	m.mu.RUnlock()

	reverse(out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return truncate(out, limit), nil
}

// LogActivity validates and stores an activity
func (m *MemoryStore) LogActivity(ctx context.Context, a model.Activity) (model.Activity, error) {
	a, err := prepareActivity(a, m.now())
	if err != nil {
		return a, err
	}
	a.Metadata = copyMetadata(a.Metadata)
	m.mu.Lock()
	m.activities = append(m.activities, a)
	m.mu.Unlock()

	a.Metadata = copyMetadata(a.Metadata)
	return a, nil
}

// ListActivities returns one user's activities newest first
func (m *MemoryStore) ListActivities(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	m.mu.RLock()
	var out []model.Activity
	for _, a := range m.activities {
		if a.UserID == userID {
			a.Metadata = copyMetadata(a.Metadata)
			out = append(out, a)
		}
	}
	m.mu.RUnlock()

	reverse(out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return truncate(out, limit), nil
}

// copyMetadata keeps callers from sharing maps with the store
func copyMetadata(md map[string]string) map[string]string {
	if md == nil {
		return nil
	}
	out := make(map[string]string, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}

// reverse puts later insertions first so equal timestamps list newest first
func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
