package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streamslot/streamslot/internal/config"
	"github.com/streamslot/streamslot/internal/database"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(db, config.Config{Port: "0"}, slog.Default())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func login(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"name": "Test User", "email": email})
	resp, err := http.Post(ts.URL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if out.Token == "" {
		t.Fatal("login returned empty token")
	}
	return out.Token
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	ts := setupServer(t)

	resp := doJSON(t, ts, "GET", "/api/events", "", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	ts := setupServer(t)
	owner := login(t, ts, "owner@example.com")

	// Create. No calendar connected, so a sync warning is expected.
	create := doJSON(t, ts, "POST", "/api/events", owner, map[string]any{
		"title":      "Launch Stream",
		"start_time": time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		"end_time":   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		"time_zone":  "UTC",
	})
	defer create.Body.Close()

	if create.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", create.StatusCode, http.StatusCreated)
	}

	var created struct {
		Event struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"event"`
		Warnings []string `json:"warnings"`
	}
	if err := json.NewDecoder(create.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Event.Title != "Launch Stream" {
		t.Errorf("title = %q, want %q", created.Event.Title, "Launch Stream")
	}
	if len(created.Warnings) == 0 {
		t.Error("expected a sync warning for an unconnected calendar")
	}

	// Slots for a two hour window.
	slots := doJSON(t, ts, "GET", "/api/events/1/slots", owner, nil)
	defer slots.Body.Close()

	var slotList []struct {
		Start time.Time `json:"start"`
	}
	if err := json.NewDecoder(slots.Body).Decode(&slotList); err != nil {
		t.Fatalf("decode slots: %v", err)
	}
	if len(slotList) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slotList))
	}

	// RSVP from another user.
	attendeeTok := login(t, ts, "attendee@example.com")
	rsvp := doJSON(t, ts, "POST", "/api/rsvp", attendeeTok, map[string]any{
		"event_id":  created.Event.ID,
		"status":    "attending",
		"time_slot": slotList[1].Start,
	})
	defer rsvp.Body.Close()

	if rsvp.StatusCode != http.StatusOK {
		t.Fatalf("rsvp status = %d, want %d", rsvp.StatusCode, http.StatusOK)
	}

	// RSVP readback.
	get := doJSON(t, ts, "GET", "/api/rsvp/1", attendeeTok, nil)
	defer get.Body.Close()

	var gotRSVP struct {
		Status   string     `json:"status"`
		TimeSlot *time.Time `json:"time_slot"`
	}
	if err := json.NewDecoder(get.Body).Decode(&gotRSVP); err != nil {
		t.Fatalf("decode rsvp: %v", err)
	}
	if gotRSVP.Status != "attending" {
		t.Errorf("status = %q, want %q", gotRSVP.Status, "attending")
	}
	if gotRSVP.TimeSlot == nil || !gotRSVP.TimeSlot.Equal(slotList[1].Start) {
		t.Errorf("time_slot = %v, want %v", gotRSVP.TimeSlot, slotList[1].Start)
	}

	// Only the owner may delete.
	forbidden := doJSON(t, ts, "DELETE", "/api/events/1", attendeeTok, nil)
	forbidden.Body.Close()
	if forbidden.StatusCode != http.StatusForbidden {
		t.Errorf("delete by non-owner status = %d, want %d", forbidden.StatusCode, http.StatusForbidden)
	}

	del := doJSON(t, ts, "DELETE", "/api/events/1", owner, nil)
	del.Body.Close()
	if del.StatusCode != http.StatusOK && del.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 200 or 204", del.StatusCode)
	}

	gone := doJSON(t, ts, "GET", "/api/events/1", owner, nil)
	gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted event status = %d, want %d", gone.StatusCode, http.StatusNotFound)
	}
}

func TestInvalidRSVPSlotOverHTTP(t *testing.T) {
	ts := setupServer(t)
	owner := login(t, ts, "owner@example.com")

	create := doJSON(t, ts, "POST", "/api/events", owner, map[string]any{
		"title":      "QA Session",
		"start_time": time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		"end_time":   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		"time_zone":  "UTC",
	})
	create.Body.Close()
	if create.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", create.StatusCode)
	}

	rsvp := doJSON(t, ts, "POST", "/api/rsvp", owner, map[string]any{
		"event_id":  1,
		"status":    "attending",
		"time_slot": time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC),
	})
	defer rsvp.Body.Close()

	if rsvp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rsvp.StatusCode, http.StatusBadRequest)
	}
}

func TestCalendarStatusDisconnected(t *testing.T) {
	ts := setupServer(t)
	tok := login(t, ts, "user@example.com")

	resp := doJSON(t, ts, "GET", "/api/user/google-calendar-status", tok, nil)
	defer resp.Body.Close()

	var out struct {
		Connected bool `json:"connected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Connected {
		t.Error("expected connected = false")
	}
}

func TestNotificationPreferencesRoundTrip(t *testing.T) {
	ts := setupServer(t)
	tok := login(t, ts, "user@example.com")

	// Defaults before any save: email only.
	get := doJSON(t, ts, "GET", "/api/user/notification-preferences", tok, nil)
	defer get.Body.Close()

	var pref struct {
		EmailEnabled bool `json:"email_enabled"`
		SMSEnabled   bool `json:"sms_enabled"`
	}
	if err := json.NewDecoder(get.Body).Decode(&pref); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !pref.EmailEnabled || pref.SMSEnabled {
		t.Errorf("default prefs = %+v, want email only", pref)
	}

	put := doJSON(t, ts, "PUT", "/api/user/notification-preferences", tok, map[string]bool{
		"email_enabled": false,
		"sms_enabled":   true,
	})
	put.Body.Close()
	if put.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", put.StatusCode)
	}

	get2 := doJSON(t, ts, "GET", "/api/user/notification-preferences", tok, nil)
	defer get2.Body.Close()
	if err := json.NewDecoder(get2.Body).Decode(&pref); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pref.EmailEnabled || !pref.SMSEnabled {
		t.Errorf("saved prefs = %+v, want sms only", pref)
	}
}
