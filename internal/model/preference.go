package model

import "time"

// NotificationPreference selects the delivery channels a user wants for
// event lifecycle notifications.
type NotificationPreference struct {
	UserID       int64     `json:"user_id"`
	EmailEnabled bool      `json:"email_enabled"`
	SMSEnabled   bool      `json:"sms_enabled"`
	PushEnabled  bool      `json:"push_enabled"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultPreference is used when a user has never saved preferences:
// email only.
func DefaultPreference(userID int64) NotificationPreference {
	return NotificationPreference{UserID: userID, EmailEnabled: true}
}

type PushSubscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
