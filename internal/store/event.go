package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/streamslot/streamslot/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Create(title, description string, startTime, endTime time.Time, timeZone, location string, ownerID int64, maxAttendees int) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (title, description, start_time, end_time, time_zone, location, owner_id, max_attendees)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		title, description, startTime.UTC(), endTime.UTC(), timeZone, location, ownerID, maxAttendees,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	var e model.Event
	var googleID sql.NullString

	err := s.db.QueryRow(
		`SELECT id, title, description, start_time, end_time, time_zone, location, owner_id, max_attendees, google_event_id, created_at, updated_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime, &e.TimeZone, &e.Location, &e.OwnerID, &e.MaxAttendees, &googleID, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}

	if googleID.Valid {
		e.GoogleEventID = &googleID.String
	}

	return &e, nil
}

func (s *EventStore) List() ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT id, title, description, start_time, end_time, time_zone, location, owner_id, max_attendees, google_event_id, created_at, updated_at
		 FROM events
		 ORDER BY start_time ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var googleID sql.NullString

		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime, &e.TimeZone, &e.Location, &e.OwnerID, &e.MaxAttendees, &googleID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		if googleID.Valid {
			e.GoogleEventID = &googleID.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(id int64, title, description string, startTime, endTime time.Time, timeZone, location string, maxAttendees int) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events
		 SET title = ?, description = ?, start_time = ?, end_time = ?, time_zone = ?, location = ?, max_attendees = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, startTime.UTC(), endTime.UTC(), timeZone, location, maxAttendees, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	return s.GetByID(id)
}

// SetGoogleEventID stores the remote calendar mapping for an event.
// An empty remoteID clears the mapping.
func (s *EventStore) SetGoogleEventID(id int64, remoteID string) error {
	var val sql.NullString
	if remoteID != "" {
		val = sql.NullString{String: remoteID, Valid: true}
	}

	_, err := s.db.Exec("UPDATE events SET google_event_id = ? WHERE id = ?", val, id)
	if err != nil {
		return fmt.Errorf("set google event id: %w", err)
	}
	return nil
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
