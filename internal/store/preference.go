package store

import (
	"database/sql"
	"fmt"

	"github.com/streamslot/streamslot/internal/model"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Get returns the user's saved notification preferences, or the email-only
// default when none have been saved.
func (s *PreferenceStore) Get(userID int64) (model.NotificationPreference, error) {
	var p model.NotificationPreference
	var email, sms, push int

	err := s.db.QueryRow(
		`SELECT user_id, email_enabled, sms_enabled, push_enabled, updated_at
		 FROM notification_preferences WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &email, &sms, &push, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.DefaultPreference(userID), nil
	}
	if err != nil {
		return model.NotificationPreference{}, fmt.Errorf("query preferences: %w", err)
	}

	p.EmailEnabled = email != 0
	p.SMSEnabled = sms != 0
	p.PushEnabled = push != 0
	return p, nil
}

func (s *PreferenceStore) Upsert(userID int64, emailEnabled, smsEnabled, pushEnabled bool) (model.NotificationPreference, error) {
	_, err := s.db.Exec(
		`INSERT INTO notification_preferences (user_id, email_enabled, sms_enabled, push_enabled, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id)
		 DO UPDATE SET email_enabled = excluded.email_enabled, sms_enabled = excluded.sms_enabled,
		               push_enabled = excluded.push_enabled, updated_at = CURRENT_TIMESTAMP`,
		userID, boolToInt(emailEnabled), boolToInt(smsEnabled), boolToInt(pushEnabled),
	)
	if err != nil {
		return model.NotificationPreference{}, fmt.Errorf("upsert preferences: %w", err)
	}

	return s.Get(userID)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
