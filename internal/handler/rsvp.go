package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/streamslot/streamslot/internal/auth"
	"github.com/streamslot/streamslot/internal/model"
	"github.com/streamslot/streamslot/internal/service"
)

type RSVPHandler struct {
	rsvps  *service.RSVPManager
	logger *slog.Logger
}

func NewRSVPHandler(rsvps *service.RSVPManager, logger *slog.Logger) *RSVPHandler {
	return &RSVPHandler{rsvps: rsvps, logger: logger}
}

type rsvpRequest struct {
	EventID  int64      `json:"event_id"`
	Status   string     `json:"status"`
	TimeSlot *time.Time `json:"time_slot,omitempty"`
}

// Set handles POST /api/rsvp
func (h *RSVPHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	rsvp, err := h.rsvps.SetStatus(r.Context(), req.EventID, auth.UserID(r.Context()), model.RSVPStatus(req.Status), req.TimeSlot)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidSlotSelection):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			h.logger.Error("set rsvp", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save rsvp"})
		}
		return
	}

	writeJSON(w, http.StatusOK, rsvp)
}

// Get handles GET /api/rsvp/{event_id}
func (h *RSVPHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r, "event_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event id"})
		return
	}

	rsvp, err := h.rsvps.GetStatus(eventID, auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
			return
		}
		h.logger.Error("get rsvp", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get rsvp"})
		return
	}

	writeJSON(w, http.StatusOK, rsvp)
}
