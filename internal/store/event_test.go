package store

import (
	"testing"
	"time"

	"github.com/streamslot/streamslot/internal/database"
)

func setupTestDB(t *testing.T) (*EventStore, *UserStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := NewUserStore(db)
	owner, err := users.Create("Streamer", "streamer@example.com", "")
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}

	return NewEventStore(db), users, owner.ID
}

func TestEventCRUD(t *testing.T) {
	es, _, ownerID := setupTestDB(t)

	start := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	ev, err := es.Create("Launch Stream", "Season launch", start, end, "UTC", "Main studio", ownerID, 100)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if ev.Title != "Launch Stream" {
		t.Errorf("title = %q, want %q", ev.Title, "Launch Stream")
	}
	if !ev.StartTime.Equal(start) || !ev.EndTime.Equal(end) {
		t.Errorf("window = [%v, %v], want [%v, %v]", ev.StartTime, ev.EndTime, start, end)
	}
	if ev.GoogleEventID != nil {
		t.Error("expected no remote mapping on a new event")
	}

	updated, err := es.Update(ev.ID, "Launch Stream (moved)", ev.Description, start.Add(time.Hour), end.Add(time.Hour), "America/New_York", ev.Location, 50)
	if err != nil {
		t.Fatalf("update event: %v", err)
	}
	if updated.Title != "Launch Stream (moved)" {
		t.Errorf("updated title = %q", updated.Title)
	}
	if updated.TimeZone != "America/New_York" {
		t.Errorf("time zone = %q, want America/New_York", updated.TimeZone)
	}
	if updated.MaxAttendees != 50 {
		t.Errorf("max attendees = %d, want 50", updated.MaxAttendees)
	}

	if err := es.Delete(ev.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	got, err := es.GetByID(ev.ID)
	if err != nil {
		t.Fatalf("get deleted event: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted event")
	}
}

func TestEventGetByIDNotFound(t *testing.T) {
	es, _, _ := setupTestDB(t)

	got, err := es.GetByID(9999)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent event")
	}
}

func TestEventRemoteMapping(t *testing.T) {
	es, _, ownerID := setupTestDB(t)

	start := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	ev, err := es.Create("Launch Stream", "", start, start.Add(time.Hour), "UTC", "", ownerID, 0)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := es.SetGoogleEventID(ev.ID, "remote-abc"); err != nil {
		t.Fatalf("set mapping: %v", err)
	}
	got, err := es.GetByID(ev.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if !got.Synced() || *got.GoogleEventID != "remote-abc" {
		t.Errorf("mapping = %v, want remote-abc", got.GoogleEventID)
	}

	// Empty remote id clears the mapping.
	if err := es.SetGoogleEventID(ev.ID, ""); err != nil {
		t.Fatalf("clear mapping: %v", err)
	}
	got, err = es.GetByID(ev.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Synced() {
		t.Error("expected mapping cleared")
	}
}

func TestEventListOrdered(t *testing.T) {
	es, _, ownerID := setupTestDB(t)

	base := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	if _, err := es.Create("Later", "", base.Add(24*time.Hour), base.Add(26*time.Hour), "UTC", "", ownerID, 0); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := es.Create("Earlier", "", base, base.Add(time.Hour), "UTC", "", ownerID, 0); err != nil {
		t.Fatalf("create: %v", err)
	}

	events, err := es.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Title != "Earlier" || events[1].Title != "Later" {
		t.Errorf("order = [%q, %q], want earliest first", events[0].Title, events[1].Title)
	}
}
