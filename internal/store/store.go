// Package store persists sighting reports and user activity logs.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/wildaware/internal/model"
	"github.com/ppiankov/wildaware/internal/util"
)

var (
	// ErrInvalidSighting is returned when a sighting lacks species, location or description
	ErrInvalidSighting = errors.New("invalid sighting")
	// ErrNoUser is returned when an activity is logged without a user id
	ErrNoUser = errors.New("user id required")
	// ErrInvalidActivity is returned for an unknown activity type
	ErrInvalidActivity = errors.New("invalid activity")
)

// SightingStore records sighting reports
type SightingStore interface {
	AddSighting(ctx context.Context, s model.Sighting) (model.Sighting, error)
	// ListSightings returns sightings newest first. limit <= 0 means all.
	ListSightings(ctx context.Context, limit int) ([]model.Sighting, error)
}

// ActivityStore records per-user activity
type ActivityStore interface {
	LogActivity(ctx context.Context, a model.Activity) (model.Activity, error)
	// ListActivities returns a user's activities newest first. limit <= 0 means all.
	ListActivities(ctx context.Context, userID string, limit int) ([]model.Activity, error)
}

// Store is the full persistence surface
type Store interface {
	SightingStore
	ActivityStore
	Close() error
}

// Open returns the store for a configured driver
func Open(cfg model.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// prepareSighting validates s and fills in id and timestamp
func prepareSighting(s model.Sighting, now time.Time) (model.Sighting, error) {
	s.Species = strings.TrimSpace(s.Species)
	s.Location = strings.TrimSpace(s.Location)
	s.Description = util.PlainText(s.Description)

	var missing []string
	if s.Species == "" {
		missing = append(missing, "species")
	}
	if s.Location == "" {
		missing = append(missing, "location")
	}
	if s.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return s, fmt.Errorf("%w: missing %s", ErrInvalidSighting, strings.Join(missing, ", "))
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = now
	}
	s.Timestamp = s.Timestamp.UTC()
	return s, nil
}

// prepareActivity validates a and fills in id and time
func prepareActivity(a model.Activity, now time.Time) (model.Activity, error) {
	a.UserID = strings.TrimSpace(a.UserID)
	if a.UserID == "" {
		return a, ErrNoUser
	}
	if !a.Type.Valid() {
		return a, fmt.Errorf("%w: unknown type %q", ErrInvalidActivity, a.Type)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = now
	}
	a.OccurredAt = a.OccurredAt.UTC()
	return a, nil
}
