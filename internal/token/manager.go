// Package token owns the OAuth2 authorization-code lifecycle: building the
// consent URL, exchanging codes, and keeping a valid access token on file per
// user. Other components never hold token state; they ask the Manager for an
// access token at call time.
package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/streamslot/streamslot/internal/store"
)

// ProviderGoogle is the provider key used for stored Google tokens.
const ProviderGoogle = "google"

// expiryMargin is how close to expiry an access token may be before it is
// refreshed instead of returned.
const expiryMargin = 60 * time.Second

var (
	// ErrInvalidGrant is returned when the provider rejects an authorization
	// code (expired, reused, or malformed).
	ErrInvalidGrant = errors.New("authorization code rejected")

	// ErrTokenUnavailable is returned when no usable token is on file for the
	// user. The attached UI should prompt for re-authorization.
	ErrTokenUnavailable = errors.New("no token on file")

	// ErrRefreshFailed is returned when a refresh was attempted and the
	// provider rejected it, e.g. revoked consent. The stored token is
	// invalidated so subsequent calls fail fast with ErrTokenUnavailable.
	ErrRefreshFailed = errors.New("token refresh rejected")
)

// Provider is the narrow capability needed from the OAuth provider. It is
// implemented against the real service and by a deterministic fake in tests.
type Provider interface {
	AuthCodeURL(state string, scopes []string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

type Manager struct {
	provider Provider
	store    *store.TokenStore
	logger   *slog.Logger

	// refresh deduplicates in-flight refreshes per user; concurrent callers
	// share one provider call so the older refresh token is never invalidated
	// by a duplicate exchange.
	refresh singleflight.Group
}

func NewManager(provider Provider, st *store.TokenStore, logger *slog.Logger) *Manager {
	return &Manager{provider: provider, store: st, logger: logger}
}

// AuthorizationURL builds the provider consent URL for the requested scopes.
// Offline access is always requested so a refresh token is issued. No side
// effects.
func (m *Manager) AuthorizationURL(state string, scopes ...string) string {
	return m.provider.AuthCodeURL(state, scopes)
}

// ExchangeCode redeems a single-use authorization code and stores the
// resulting token for the user, overwriting any prior token for the provider.
func (m *Manager) ExchangeCode(ctx context.Context, userID int64, code string) error {
	tok, err := m.provider.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGrant, err)
	}

	var refresh *string
	if tok.RefreshToken != "" {
		refresh = &tok.RefreshToken
	}

	scopes, _ := tok.Extra("scope").(string)
	if err := m.store.Upsert(userID, ProviderGoogle, tok.AccessToken, refresh, tok.Expiry, scopes); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	m.logger.Info("stored oauth token", "user_id", userID, "expiry", tok.Expiry)
	return nil
}

// ValidToken returns an access token for the user that is good for at least
// the expiry margin, refreshing it first if necessary. Refreshes for the same
// user are collapsed to a single in-flight provider call.
func (m *Manager) ValidToken(ctx context.Context, userID int64) (string, error) {
	tok, err := m.store.Get(userID, ProviderGoogle)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if tok == nil {
		return "", ErrTokenUnavailable
	}

	if time.Until(tok.Expiry) > expiryMargin {
		return tok.AccessToken, nil
	}

	v, err, _ := m.refresh.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		return m.refreshToken(ctx, userID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refreshToken performs one refresh for the user. It re-reads the stored
// token so a caller that waited on another caller's refresh observes the
// fresh result.
func (m *Manager) refreshToken(ctx context.Context, userID int64) (string, error) {
	tok, err := m.store.Get(userID, ProviderGoogle)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if tok == nil {
		return "", ErrTokenUnavailable
	}
	if time.Until(tok.Expiry) > expiryMargin {
		return tok.AccessToken, nil
	}

	if tok.RefreshToken == nil || *tok.RefreshToken == "" {
		// Nothing to refresh with; retrying is pointless.
		if err := m.store.Delete(userID, ProviderGoogle); err != nil {
			m.logger.Error("invalidate token", "user_id", userID, "error", err)
		}
		return "", fmt.Errorf("%w: no refresh token on file", ErrRefreshFailed)
	}

	fresh, err := m.provider.Refresh(ctx, *tok.RefreshToken)
	if err != nil {
		// Revoked consent or similar. Drop the token so subsequent calls
		// fail fast with ErrTokenUnavailable instead of retrying a doomed
		// refresh.
		if derr := m.store.Delete(userID, ProviderGoogle); derr != nil {
			m.logger.Error("invalidate token", "user_id", userID, "error", derr)
		}
		m.logger.Warn("token refresh rejected", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	refresh := tok.RefreshToken
	if fresh.RefreshToken != "" {
		refresh = &fresh.RefreshToken
	}
	if err := m.store.Upsert(userID, ProviderGoogle, fresh.AccessToken, refresh, fresh.Expiry, tok.Scopes); err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	m.logger.Info("refreshed oauth token", "user_id", userID, "expiry", fresh.Expiry)
	return fresh.AccessToken, nil
}

// Connected reports whether a token is on file for the user.
func (m *Manager) Connected(userID int64) (bool, error) {
	tok, err := m.store.Get(userID, ProviderGoogle)
	if err != nil {
		return false, fmt.Errorf("load token: %w", err)
	}
	return tok != nil, nil
}

// Disconnect removes the stored token for the user.
func (m *Manager) Disconnect(userID int64) error {
	return m.store.Delete(userID, ProviderGoogle)
}
