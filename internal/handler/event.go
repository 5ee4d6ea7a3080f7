package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/streamslot/streamslot/internal/auth"
	"github.com/streamslot/streamslot/internal/service"
)

type EventHandler struct {
	events *service.EventService
	logger *slog.Logger
}

func NewEventHandler(events *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

type eventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	TimeZone     string    `json:"time_zone"`
	Location     string    `json:"location"`
	MaxAttendees int       `json:"max_attendees"`
}

func (r eventRequest) input() service.EventInput {
	return service.EventInput{
		Title:        r.Title,
		Description:  r.Description,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		TimeZone:     r.TimeZone,
		Location:     r.Location,
		MaxAttendees: r.MaxAttendees,
	}
}

// eventResponse wraps an event with any calendar sync warnings. Warnings are
// advisory; the local write already succeeded.
type eventResponse struct {
	Event    any      `json:"event"`
	Warnings []string `json:"warnings,omitempty"`
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ev, warnings, err := h.events.Create(r.Context(), auth.UserID(r.Context()), req.input())
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("create event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create event"})
		return
	}

	writeJSON(w, http.StatusCreated, eventResponse{Event: ev, Warnings: warnings})
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List()
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ev, err := h.events.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
			return
		}
		h.logger.Error("get event", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get event"})
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

// Slots handles GET /api/events/{id}/slots
func (h *EventHandler) Slots(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	slots, err := h.events.Slots(id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
			return
		}
		h.logger.Error("event slots", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute slots"})
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

// Update handles PUT /api/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ev, warnings, err := h.events.Update(r.Context(), auth.UserID(r.Context()), id, req.input())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrEventNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		case errors.Is(err, service.ErrNotOwner):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the owner can modify this event"})
		default:
			h.logger.Error("update event", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update event"})
		}
		return
	}

	writeJSON(w, http.StatusOK, eventResponse{Event: ev, Warnings: warnings})
}

// Delete handles DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	warnings, err := h.events.Delete(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		case errors.Is(err, service.ErrNotOwner):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the owner can modify this event"})
		default:
			h.logger.Error("delete event", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete event"})
		}
		return
	}

	if len(warnings) > 0 {
		writeJSON(w, http.StatusOK, map[string]any{"warnings": warnings})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
