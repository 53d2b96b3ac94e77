package model

import "time"

// Sighting is a user-submitted wildlife sighting report
type Sighting struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Species     string    `json:"species"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageRef    string    `json:"image_ref,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ActivityType classifies a logged user action
type ActivityType string

const (
	ActivityCallHelpline   ActivityType = "call_helpline"
	ActivityReportSighting ActivityType = "report_sighting"
	ActivityGuidance       ActivityType = "guidance"
)

// Valid reports whether t is a known activity type
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCallHelpline, ActivityReportSighting, ActivityGuidance:
		return true
	default:
		return false
	}
}

// Activity is one entry of a user's activity log
type Activity struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Type       ActivityType      `json:"activity_type"`
	Species    string            `json:"species,omitempty"`
	NGOName    string            `json:"ngo_name,omitempty"`
	NGOPhone   string            `json:"ngo_phone,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
