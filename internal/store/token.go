package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/streamslot/streamslot/internal/model"
)

type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

// Upsert stores the token for (userID, provider), overwriting any prior one.
// A nil refreshToken stores NULL (provider issued no refresh token).
func (s *TokenStore) Upsert(userID int64, provider, accessToken string, refreshToken *string, expiry time.Time, scopes string) error {
	var refresh sql.NullString
	if refreshToken != nil {
		refresh = sql.NullString{String: *refreshToken, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO oauth_tokens (user_id, provider, access_token, refresh_token, expiry, scopes, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, provider)
		 DO UPDATE SET access_token = excluded.access_token, refresh_token = excluded.refresh_token,
		               expiry = excluded.expiry, scopes = excluded.scopes, updated_at = CURRENT_TIMESTAMP`,
		userID, provider, accessToken, refresh, expiry.UTC(), scopes,
	)
	if err != nil {
		return fmt.Errorf("upsert oauth token: %w", err)
	}
	return nil
}

func (s *TokenStore) Get(userID int64, provider string) (*model.OAuthToken, error) {
	var t model.OAuthToken
	var refresh sql.NullString

	err := s.db.QueryRow(
		`SELECT user_id, provider, access_token, refresh_token, expiry, scopes, updated_at
		 FROM oauth_tokens WHERE user_id = ? AND provider = ?`,
		userID, provider,
	).Scan(&t.UserID, &t.Provider, &t.AccessToken, &refresh, &t.Expiry, &t.Scopes, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query oauth token: %w", err)
	}

	if refresh.Valid {
		t.RefreshToken = &refresh.String
	}

	return &t, nil
}

func (s *TokenStore) Delete(userID int64, provider string) error {
	_, err := s.db.Exec("DELETE FROM oauth_tokens WHERE user_id = ? AND provider = ?", userID, provider)
	if err != nil {
		return fmt.Errorf("delete oauth token: %w", err)
	}
	return nil
}
