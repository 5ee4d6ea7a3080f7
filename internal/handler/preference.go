package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/streamslot/streamslot/internal/auth"
	"github.com/streamslot/streamslot/internal/store"
)

type PreferenceHandler struct {
	prefs  *store.PreferenceStore
	logger *slog.Logger
}

func NewPreferenceHandler(prefs *store.PreferenceStore, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs, logger: logger}
}

// Get handles GET /api/user/notification-preferences
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	pref, err := h.prefs.Get(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get preferences", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get preferences"})
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

type preferenceRequest struct {
	EmailEnabled bool `json:"email_enabled"`
	SMSEnabled   bool `json:"sms_enabled"`
	PushEnabled  bool `json:"push_enabled"`
}

// Update handles PUT /api/user/notification-preferences
func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	pref, err := h.prefs.Upsert(auth.UserID(r.Context()), req.EmailEnabled, req.SMSEnabled, req.PushEnabled)
	if err != nil {
		h.logger.Error("update preferences", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save preferences"})
		return
	}

	writeJSON(w, http.StatusOK, pref)
}
