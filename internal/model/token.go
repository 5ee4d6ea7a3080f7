package model

import "time"

// OAuthToken holds the stored credentials for one (user, provider) pair.
// Only the token manager reads or writes these; other components obtain
// access tokens through it rather than copying token state.
type OAuthToken struct {
	UserID       int64     `json:"user_id"`
	Provider     string    `json:"provider"`
	AccessToken  string    `json:"-"`
	RefreshToken *string   `json:"-"`
	Expiry       time.Time `json:"expiry"`
	Scopes       string    `json:"scopes"`
	UpdatedAt    time.Time `json:"updated_at"`
}
