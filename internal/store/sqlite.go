package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/wildaware/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS sightings (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	user_id TEXT,
	species TEXT NOT NULL,
	location TEXT NOT NULL,
	description TEXT NOT NULL,
	image_ref TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sightings_created ON sightings(created_at);

CREATE TABLE IF NOT EXISTS activities (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	activity_type TEXT NOT NULL,
	species TEXT,
	ngo_name TEXT,
	ngo_phone TEXT,
	notes TEXT,
	metadata TEXT,
	occurred_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id, occurred_at);
`

// SQLiteStore persists to a SQLite database file
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates the database at path. ":memory:" is accepted.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: path required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// AddSighting validates and inserts a sighting
func (s *SQLiteStore) AddSighting(ctx context.Context, sg model.Sighting) (model.Sighting, error) {
	sg, err := prepareSighting(sg, s.now())
	if err != nil {
		return sg, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sightings (id, user_id, species, location, description, image_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sg.ID, sg.UserID, sg.Species, sg.Location, sg.Description, sg.ImageRef, sg.Timestamp.UnixNano())
	if err != nil {
		return sg, fmt.Errorf("failed to insert sighting: %w", err)
	}
	return sg, nil
}

// ListSightings returns sightings newest first
func (s *SQLiteStore) ListSightings(ctx context.Context, limit int) ([]model.Sighting, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, species, location, description, image_ref, created_at
		 FROM sightings ORDER BY created_at DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sightings: %w", err)
	}
	defer rows.Close()

	var out []model.Sighting
	for rows.Next() {
		var (
			sg             model.Sighting
			userID, image  sql.NullString
			createdAtNanos int64
		)
		if err := rows.Scan(&sg.ID, &userID, &sg.Species, &sg.Location, &sg.Description, &image, &createdAtNanos); err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		sg.UserID = userID.String
		sg.ImageRef = image.String
		sg.Timestamp = time.Unix(0, createdAtNanos).UTC()
		out = append(out, sg)
	}
	return out, rows.Err()
}

// LogActivity validates and inserts an activity
func (s *SQLiteStore) LogActivity(ctx context.Context, a model.Activity) (model.Activity, error) {
	a, err := prepareActivity(a, s.now())
	if err != nil {
		return a, err
	}
	var metadata sql.NullString
	if len(a.Metadata) > 0 {
		raw, err := json.Marshal(a.Metadata)
		if err != nil {
			return a, fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO activities (id, user_id, activity_type, species, ngo_name, ngo_phone, notes, metadata, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, string(a.Type), a.Species, a.NGOName, a.NGOPhone, a.Notes, metadata, a.OccurredAt.UnixNano())
	if err != nil {
		return a, fmt.Errorf("failed to insert activity: %w", err)
	}
	return a, nil
}

// ListActivities returns one user's activities newest first
func (s *SQLiteStore) ListActivities(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, activity_type, species, ngo_name, ngo_phone, notes, metadata, occurred_at
		 FROM activities WHERE user_id = ? ORDER BY occurred_at DESC, seq DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var out []model.Activity
	for rows.Next() {
		var (
			a                                 model.Activity
			typ                               string
			species, ngoName, ngoPhone, notes sql.NullString
			metadata                          sql.NullString
			occurredAtNanos                   int64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &typ, &species, &ngoName, &ngoPhone, &notes, &metadata, &occurredAtNanos); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Type = model.ActivityType(typ)
		a.Species = species.String
		a.NGOName = ngoName.String
		a.NGOPhone = ngoPhone.String
		a.Notes = notes.String
		a.OccurredAt = time.Unix(0, occurredAtNanos).UTC()
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &a.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for %s: %w", a.ID, err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
