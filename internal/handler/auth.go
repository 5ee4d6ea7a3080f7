package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/streamslot/streamslot/internal/auth"
	"github.com/streamslot/streamslot/internal/store"
	"github.com/streamslot/streamslot/internal/token"
)

const (
	sessionCookieName = "streamslot_session"
	stateCookieName   = "streamslot_oauth_state"
	sessionTTL        = 30 * 24 * time.Hour
)

type AuthHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	tokens   *token.Manager
	logger   *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, tm *token.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: us, sessions: ss, tokens: tm, logger: logger}
}

type loginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Login handles POST /auth/login. It finds or creates the user by email and
// issues a session token, returned in the body and as a cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	if user == nil {
		name := req.Name
		if name == "" {
			name = req.Email
		}
		user, err = h.users.Create(name, req.Email, req.Phone)
		if err != nil {
			h.logger.Error("login create user", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
			return
		}
	}

	sess, err := h.sessions.Create(uuid.NewString(), user.ID, time.Now().Add(sessionTTL))
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{"token": sess.Token, "user": user})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if ok {
		if err := h.sessions.Delete(caller.SessionID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// ConnectGoogle handles GET /auth/google. It stores a one-time state value
// in a short-lived cookie and redirects to Google's consent screen.
func (h *AuthHandler) ConnectGoogle(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.tokens.AuthorizationURL(state, calendarapi.CalendarEventsScope)
	http.Redirect(w, r, url, http.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "state mismatch"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing authorization code"})
		return
	}

	if err := h.tokens.ExchangeCode(r.Context(), auth.UserID(r.Context()), code); err != nil {
		if errors.Is(err, token.ErrInvalidGrant) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "authorization code rejected"})
			return
		}
		h.logger.Error("exchange code", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to connect google calendar"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

// CalendarStatus handles GET /api/user/google-calendar-status
func (h *AuthHandler) CalendarStatus(w http.ResponseWriter, r *http.Request) {
	connected, err := h.tokens.Connected(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("calendar status", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check status"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

// DisconnectCalendar handles POST /api/user/disconnect-google-calendar
func (h *AuthHandler) DisconnectCalendar(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Disconnect(auth.UserID(r.Context())); err != nil {
		h.logger.Error("disconnect calendar", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to disconnect"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
