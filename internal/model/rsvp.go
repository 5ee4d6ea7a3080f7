package model

import "time"

// RSVPStatus is an attendee's response to an event. Any status may transition
// to any other status by a fresh call; there is no terminal state.
type RSVPStatus string

const (
	RSVPNotResponded RSVPStatus = "not_responded"
	RSVPAttending    RSVPStatus = "attending"
	RSVPMaybe        RSVPStatus = "maybe"
	RSVPNotAttending RSVPStatus = "not_attending"
)

// Valid reports whether s is one of the known RSVP statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPNotResponded, RSVPAttending, RSVPMaybe, RSVPNotAttending:
		return true
	}
	return false
}

type RSVP struct {
	EventID    int64      `json:"event_id"`
	AttendeeID int64      `json:"attendee_id"`
	Status     RSVPStatus `json:"status"`
	TimeSlot   *time.Time `json:"time_slot,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
