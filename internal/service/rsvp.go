package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streamslot/streamslot/internal/model"
	"github.com/streamslot/streamslot/internal/notify"
	"github.com/streamslot/streamslot/internal/store"
	"github.com/streamslot/streamslot/internal/timeslot"
)

// RSVPManager maintains per-(event, attendee) RSVP state. Any status may move
// to any other status; slot selection is validated against the slots
// regenerated from the event's current schedule.
type RSVPManager struct {
	events     *store.EventStore
	rsvps      *store.RSVPStore
	users      *store.UserStore
	prefs      *store.PreferenceStore
	dispatcher Notifier
	hub        Broadcaster
	logger     *slog.Logger
}

func NewRSVPManager(events *store.EventStore, rsvps *store.RSVPStore, users *store.UserStore, prefs *store.PreferenceStore, dispatcher Notifier, hub Broadcaster, logger *slog.Logger) *RSVPManager {
	return &RSVPManager{
		events:     events,
		rsvps:      rsvps,
		users:      users,
		prefs:      prefs,
		dispatcher: dispatcher,
		hub:        hub,
		logger:     logger,
	}
}

// SetStatus records the attendee's response. For an attending response to a
// multi-slot event the slot is required and must be one of the generated
// slots; for a single-slot event it defaults to that slot. A non-attending
// response clears any stored slot. The RSVPChanged notification is
// fire-and-forget: the status write stands regardless of delivery outcome.
func (m *RSVPManager) SetStatus(ctx context.Context, eventID, attendeeID int64, status model.RSVPStatus, slot *time.Time) (*model.RSVP, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	ev, err := m.events.GetByID(eventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}

	if status == model.RSVPAttending {
		loc, err := time.LoadLocation(ev.TimeZone)
		if err != nil {
			loc = time.UTC
		}
		slots := timeslot.Generate(ev.StartTime, ev.EndTime, loc)

		switch {
		case slot == nil && len(slots) == 1:
			start := slots[0].Start
			slot = &start
		case slot == nil:
			return nil, fmt.Errorf("%w: a slot is required for this event", ErrInvalidSlotSelection)
		case !timeslot.ContainsStart(slots, *slot):
			return nil, fmt.Errorf("%w: %s", ErrInvalidSlotSelection, slot.Format(time.RFC3339))
		}
	} else {
		slot = nil
	}

	old, err := m.rsvps.Get(eventID, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("load rsvp: %w", err)
	}
	oldStatus := model.RSVPNotResponded
	if old != nil {
		oldStatus = old.Status
	}

	r, err := m.rsvps.Upsert(eventID, attendeeID, status, slot)
	if err != nil {
		return nil, fmt.Errorf("store rsvp: %w", err)
	}

	m.emitChanged(ctx, ev, attendeeID, oldStatus, r)
	return r, nil
}

// GetStatus returns the attendee's RSVP, or an unpersisted not_responded
// record if they have never responded.
func (m *RSVPManager) GetStatus(eventID, attendeeID int64) (*model.RSVP, error) {
	ev, err := m.events.GetByID(eventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}

	r, err := m.rsvps.Get(eventID, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("load rsvp: %w", err)
	}
	if r == nil {
		return &model.RSVP{EventID: eventID, AttendeeID: attendeeID, Status: model.RSVPNotResponded}, nil
	}
	return r, nil
}

// emitChanged notifies the event owner of the response change. Delivery runs
// detached from the caller so a slow or failing channel never blocks or rolls
// back the status write.
func (m *RSVPManager) emitChanged(ctx context.Context, ev *model.Event, attendeeID int64, oldStatus model.RSVPStatus, r *model.RSVP) {
	sideCtx := context.WithoutCancel(ctx)

	go func() {
		attendee, err := m.users.GetByID(attendeeID)
		if err != nil || attendee == nil {
			m.logger.Error("load attendee for rsvp notification", "attendee_id", attendeeID, "error", err)
			return
		}
		owner, err := m.users.GetByID(ev.OwnerID)
		if err != nil || owner == nil {
			m.logger.Error("load owner for rsvp notification", "owner_id", ev.OwnerID, "error", err)
			return
		}
		prefs, err := m.prefs.Get(owner.ID)
		if err != nil {
			m.logger.Error("load owner preferences", "owner_id", owner.ID, "error", err)
			return
		}

		text := fmt.Sprintf("%s changed their RSVP for %s from %s to %s.", attendee.Name, ev.Title, oldStatus, r.Status)
		if r.TimeSlot != nil {
			text = fmt.Sprintf("%s Selected slot: %s.", text, r.TimeSlot.Format(time.RFC3339))
		}
		m.dispatcher.Dispatch(sideCtx, *owner, prefs, notify.Content{
			Subject: fmt.Sprintf("RSVP update for %s", ev.Title),
			Text:    text,
		})
	}()

	if m.hub != nil {
		m.hub.Lifecycle("rsvp", "changed", ev.ID)
	}
}
