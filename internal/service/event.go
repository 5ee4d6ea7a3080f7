package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/streamslot/streamslot/internal/calendar"
	"github.com/streamslot/streamslot/internal/model"
	"github.com/streamslot/streamslot/internal/notify"
	"github.com/streamslot/streamslot/internal/store"
	"github.com/streamslot/streamslot/internal/timeslot"
)

// EventInput carries the schedulable fields of an event. Update replaces all
// of them.
type EventInput struct {
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	TimeZone     string
	Location     string
	MaxAttendees int
}

type EventService struct {
	events     *store.EventStore
	rsvps      *store.RSVPStore
	users      *store.UserStore
	prefs      *store.PreferenceStore
	syncer     *calendar.Syncer
	dispatcher Notifier
	hub        Broadcaster
	logger     *slog.Logger
}

func NewEventService(events *store.EventStore, rsvps *store.RSVPStore, users *store.UserStore, prefs *store.PreferenceStore, syncer *calendar.Syncer, dispatcher Notifier, hub Broadcaster, logger *slog.Logger) *EventService {
	return &EventService{
		events:     events,
		rsvps:      rsvps,
		users:      users,
		prefs:      prefs,
		syncer:     syncer,
		dispatcher: dispatcher,
		hub:        hub,
		logger:     logger,
	}
}

func validateInput(in EventInput) (*time.Location, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !in.StartTime.Before(in.EndTime) {
		return nil, fmt.Errorf("%w: start must be before end", ErrValidation)
	}
	tz := in.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", ErrValidation, in.TimeZone)
	}
	return loc, nil
}

// Create validates and persists a new event owned by the caller, mirrors it
// to the remote calendar, and notifies the owner. Sync and notification
// failures are returned as warnings, never as errors: the event is valid and
// usable with no remote mapping.
func (s *EventService) Create(ctx context.Context, callerID int64, in EventInput) (*model.Event, []string, error) {
	if _, err := validateInput(in); err != nil {
		return nil, nil, err
	}

	tz := in.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	ev, err := s.events.Create(in.Title, in.Description, in.StartTime, in.EndTime, tz, in.Location, callerID, in.MaxAttendees)
	if err != nil {
		return nil, nil, fmt.Errorf("create event: %w", err)
	}

	var warnings []string
	// Side effects run to completion even if the caller goes away, so the
	// remote mapping is never left half-written.
	sideCtx := context.WithoutCancel(ctx)

	if err := s.syncer.EventCreated(sideCtx, ev); err != nil {
		s.logger.Warn("event created without remote mapping", "event_id", ev.ID, "error", err)
		warnings = append(warnings, err.Error())
	}

	s.notifyUser(sideCtx, ev.OwnerID, notify.Content{
		Subject: fmt.Sprintf("Event created: %s", ev.Title),
		Text:    fmt.Sprintf("%s is scheduled for %s.", ev.Title, formatWindow(ev)),
	})
	s.broadcast("event", "created", ev.ID)

	return ev, warnings, nil
}

// Update replaces an event's schedulable fields. RSVP slots that fall outside
// the new window are cleared silently; the attendee's status is untouched and
// the "updated" notification re-prompts them. Only the owner may update.
func (s *EventService) Update(ctx context.Context, callerID, id int64, in EventInput) (*model.Event, []string, error) {
	existing, err := s.events.GetByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("load event: %w", err)
	}
	if existing == nil {
		return nil, nil, ErrEventNotFound
	}
	if existing.OwnerID != callerID {
		return nil, nil, ErrNotOwner
	}

	loc, err := validateInput(in)
	if err != nil {
		return nil, nil, err
	}

	tz := in.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	ev, err := s.events.Update(id, in.Title, in.Description, in.StartTime, in.EndTime, tz, in.Location, in.MaxAttendees)
	if err != nil {
		return nil, nil, fmt.Errorf("update event: %w", err)
	}

	if err := s.invalidateSlots(ev, loc); err != nil {
		return nil, nil, err
	}

	var warnings []string
	sideCtx := context.WithoutCancel(ctx)

	if err := s.syncer.EventUpdated(sideCtx, ev); err != nil {
		s.logger.Warn("event updated without remote sync", "event_id", ev.ID, "error", err)
		warnings = append(warnings, err.Error())
	}

	content := notify.Content{
		Subject: fmt.Sprintf("Event updated: %s", ev.Title),
		Text:    fmt.Sprintf("%s is now scheduled for %s.", ev.Title, formatWindow(ev)),
	}
	s.notifyUser(sideCtx, ev.OwnerID, content)
	s.notifyAttendees(sideCtx, ev.ID, content, model.RSVPAttending, model.RSVPMaybe)
	s.broadcast("event", "updated", ev.ID)

	return ev, warnings, nil
}

// Delete removes the event and its RSVPs, retires the remote mirror, and
// notifies everyone who responded. Only the owner may delete.
func (s *EventService) Delete(ctx context.Context, callerID, id int64) ([]string, error) {
	ev, err := s.events.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}
	if ev.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	// Collect recipients before the rows go away.
	rsvps, err := s.rsvps.ListByEvent(id)
	if err != nil {
		return nil, fmt.Errorf("load rsvps: %w", err)
	}

	var warnings []string
	sideCtx := context.WithoutCancel(ctx)

	if err := s.syncer.EventDeleted(sideCtx, ev); err != nil {
		s.logger.Warn("remote event not removed", "event_id", ev.ID, "error", err)
		warnings = append(warnings, err.Error())
	}

	if err := s.rsvps.DeleteByEvent(id); err != nil {
		return warnings, fmt.Errorf("delete rsvps: %w", err)
	}
	if err := s.events.Delete(id); err != nil {
		return warnings, fmt.Errorf("delete event: %w", err)
	}

	content := notify.Content{
		Subject: fmt.Sprintf("Event cancelled: %s", ev.Title),
		Text:    fmt.Sprintf("%s (%s) has been cancelled.", ev.Title, formatWindow(ev)),
	}
	for _, r := range rsvps {
		if r.Status == model.RSVPNotResponded {
			continue
		}
		s.notifyUser(sideCtx, r.AttendeeID, content)
	}
	s.broadcast("event", "cancelled", id)

	return warnings, nil
}

// Get returns an event by id.
func (s *EventService) Get(id int64) (*model.Event, error) {
	ev, err := s.events.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

// List returns all events ordered by start time.
func (s *EventService) List() ([]model.Event, error) {
	return s.events.List()
}

// Slots regenerates the event's bookable slots from its current schedule.
func (s *EventService) Slots(id int64) ([]timeslot.Slot, error) {
	ev, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(ev.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	return timeslot.Generate(ev.StartTime, ev.EndTime, loc), nil
}

// invalidateSlots clears any selected slot that is no longer generated from
// the event's current schedule.
func (s *EventService) invalidateSlots(ev *model.Event, loc *time.Location) error {
	slots := timeslot.Generate(ev.StartTime, ev.EndTime, loc)

	rsvps, err := s.rsvps.ListByEvent(ev.ID)
	if err != nil {
		return fmt.Errorf("load rsvps: %w", err)
	}
	for _, r := range rsvps {
		if r.TimeSlot == nil || timeslot.ContainsStart(slots, *r.TimeSlot) {
			continue
		}
		if err := s.rsvps.ClearSlot(ev.ID, r.AttendeeID); err != nil {
			return fmt.Errorf("clear invalidated slot: %w", err)
		}
		s.logger.Info("cleared invalidated slot", "event_id", ev.ID, "attendee_id", r.AttendeeID)
	}
	return nil
}

// notifyAttendees dispatches content to every attendee of the event whose
// status is one of the given statuses.
func (s *EventService) notifyAttendees(ctx context.Context, eventID int64, content notify.Content, statuses ...model.RSVPStatus) {
	rsvps, err := s.rsvps.ListByEvent(eventID)
	if err != nil {
		s.logger.Error("load rsvps for notification", "event_id", eventID, "error", err)
		return
	}

	want := make(map[model.RSVPStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}

	for _, r := range rsvps {
		if !want[r.Status] {
			continue
		}
		s.notifyUser(ctx, r.AttendeeID, content)
	}
}

func (s *EventService) notifyUser(ctx context.Context, userID int64, content notify.Content) {
	user, err := s.users.GetByID(userID)
	if err != nil || user == nil {
		s.logger.Error("load notification recipient", "user_id", userID, "error", err)
		return
	}

	prefs, err := s.prefs.Get(userID)
	if err != nil {
		s.logger.Error("load notification preferences", "user_id", userID, "error", err)
		return
	}

	s.dispatcher.Dispatch(ctx, *user, prefs, content)
}

func (s *EventService) broadcast(entity, action string, id int64) {
	if s.hub != nil {
		s.hub.Lifecycle(entity, action, id)
	}
}

func formatWindow(ev *model.Event) string {
	loc, err := time.LoadLocation(ev.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	start := ev.StartTime.In(loc)
	end := ev.EndTime.In(loc)
	return fmt.Sprintf("%s to %s (%s)", start.Format("Jan 2 15:04"), end.Format("Jan 2 15:04"), ev.TimeZone)
}
