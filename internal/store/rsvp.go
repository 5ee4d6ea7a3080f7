package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/streamslot/streamslot/internal/model"
)

type RSVPStore struct {
	db *sql.DB
}

func NewRSVPStore(db *sql.DB) *RSVPStore {
	return &RSVPStore{db: db}
}

// Upsert writes the RSVP row for (eventID, attendeeID), creating it on first
// response. A nil slot stores NULL.
func (s *RSVPStore) Upsert(eventID, attendeeID int64, status model.RSVPStatus, slot *time.Time) (*model.RSVP, error) {
	var slotVal sql.NullTime
	if slot != nil {
		slotVal = sql.NullTime{Time: slot.UTC(), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO rsvps (event_id, attendee_id, status, time_slot, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (event_id, attendee_id)
		 DO UPDATE SET status = excluded.status, time_slot = excluded.time_slot, updated_at = CURRENT_TIMESTAMP`,
		eventID, attendeeID, string(status), slotVal,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert rsvp: %w", err)
	}

	return s.Get(eventID, attendeeID)
}

func (s *RSVPStore) Get(eventID, attendeeID int64) (*model.RSVP, error) {
	var r model.RSVP
	var status string
	var slot sql.NullTime

	err := s.db.QueryRow(
		`SELECT event_id, attendee_id, status, time_slot, updated_at
		 FROM rsvps WHERE event_id = ? AND attendee_id = ?`,
		eventID, attendeeID,
	).Scan(&r.EventID, &r.AttendeeID, &status, &slot, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query rsvp: %w", err)
	}

	r.Status = model.RSVPStatus(status)
	if slot.Valid {
		t := slot.Time
		r.TimeSlot = &t
	}

	return &r, nil
}

func (s *RSVPStore) ListByEvent(eventID int64) ([]model.RSVP, error) {
	rows, err := s.db.Query(
		`SELECT event_id, attendee_id, status, time_slot, updated_at
		 FROM rsvps WHERE event_id = ?
		 ORDER BY attendee_id ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query rsvps: %w", err)
	}
	defer rows.Close()

	var rsvps []model.RSVP
	for rows.Next() {
		var r model.RSVP
		var status string
		var slot sql.NullTime

		if err := rows.Scan(&r.EventID, &r.AttendeeID, &status, &slot, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}

		r.Status = model.RSVPStatus(status)
		if slot.Valid {
			t := slot.Time
			r.TimeSlot = &t
		}
		rsvps = append(rsvps, r)
	}
	return rsvps, rows.Err()
}

// ClearSlot unsets the selected slot without touching the status. Used when
// an event's window change invalidates a previously selected slot.
func (s *RSVPStore) ClearSlot(eventID, attendeeID int64) error {
	_, err := s.db.Exec(
		"UPDATE rsvps SET time_slot = NULL WHERE event_id = ? AND attendee_id = ?",
		eventID, attendeeID,
	)
	if err != nil {
		return fmt.Errorf("clear rsvp slot: %w", err)
	}
	return nil
}

func (s *RSVPStore) DeleteByEvent(eventID int64) error {
	_, err := s.db.Exec("DELETE FROM rsvps WHERE event_id = ?", eventID)
	if err != nil {
		return fmt.Errorf("delete rsvps: %w", err)
	}
	return nil
}
