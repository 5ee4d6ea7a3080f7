package model

import "time"

type Event struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	TimeZone      string    `json:"time_zone"`
	Location      string    `json:"location"`
	OwnerID       int64     `json:"owner_id"`
	MaxAttendees  int       `json:"max_attendees"`
	GoogleEventID *string   `json:"google_event_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Synced reports whether the event has a remote calendar mapping.
func (e *Event) Synced() bool {
	return e.GoogleEventID != nil && *e.GoogleEventID != ""
}
