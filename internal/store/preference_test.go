package store

import (
	"testing"

	"github.com/streamslot/streamslot/internal/database"
)

func TestPreferenceDefaultEmailOnly(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := NewUserStore(db).Create("Alice", "alice@example.com", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	ps := NewPreferenceStore(db)
	p, err := ps.Get(user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !p.EmailEnabled || p.SMSEnabled || p.PushEnabled {
		t.Errorf("default = %+v, want email only", p)
	}
}

func TestPreferenceUpsert(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	user, err := NewUserStore(db).Create("Alice", "alice@example.com", "+15552223333")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	ps := NewPreferenceStore(db)
	p, err := ps.Upsert(user.ID, false, true, true)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.EmailEnabled || !p.SMSEnabled || !p.PushEnabled {
		t.Errorf("prefs = %+v, want sms+push", p)
	}

	p, err = ps.Upsert(user.ID, true, false, false)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if !p.EmailEnabled || p.SMSEnabled || p.PushEnabled {
		t.Errorf("prefs = %+v, want email only", p)
	}
}
