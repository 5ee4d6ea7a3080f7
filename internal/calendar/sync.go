package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streamslot/streamslot/internal/model"
	"github.com/streamslot/streamslot/internal/store"
	"github.com/streamslot/streamslot/internal/token"
)

// Syncer maps local event lifecycle operations to remote calendar operations
// and maintains the local↔remote id mapping on the event row. Every returned
// error is a warning: an event is valid and usable with no remote mapping,
// and callers must not fail the local mutation over a sync error.
//
// Operations for the same event are serialized; different events sync
// concurrently.
type Syncer struct {
	provider Provider
	tokens   *token.Manager
	events   *store.EventStore
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSyncer(provider Provider, tokens *token.Manager, events *store.EventStore, logger *slog.Logger) *Syncer {
	return &Syncer{
		provider: provider,
		tokens:   tokens,
		events:   events,
		logger:   logger,
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (s *Syncer) lockEvent(id int64) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func remoteEventFor(ev *model.Event) RemoteEvent {
	return RemoteEvent{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       ev.StartTime,
		End:         ev.EndTime,
		TimeZone:    ev.TimeZone,
	}
}

// EventCreated mirrors a newly created event to the remote calendar and
// stores the returned remote id on the event.
func (s *Syncer) EventCreated(ctx context.Context, ev *model.Event) error {
	unlock := s.lockEvent(ev.ID)
	defer unlock()

	return s.createLocked(ctx, ev)
}

func (s *Syncer) createLocked(ctx context.Context, ev *model.Event) error {
	access, err := s.tokens.ValidToken(ctx, ev.OwnerID)
	if err != nil {
		return fmt.Errorf("calendar sync skipped: %w", err)
	}

	remoteID, err := s.provider.Create(ctx, access, remoteEventFor(ev))
	if err != nil {
		return fmt.Errorf("calendar sync failed: %w", err)
	}

	if err := s.events.SetGoogleEventID(ev.ID, remoteID); err != nil {
		return fmt.Errorf("store remote mapping: %w", err)
	}
	ev.GoogleEventID = &remoteID

	s.logger.Info("mirrored event to calendar", "event_id", ev.ID, "remote_id", remoteID)
	return nil
}

// EventUpdated pushes the event's current fields to its remote mirror. With
// no mapping on file it behaves as a create. If the remote reports the mapped
// id missing (deleted out-of-band), the stale mapping is cleared and the
// event is recreated remotely exactly once.
func (s *Syncer) EventUpdated(ctx context.Context, ev *model.Event) error {
	unlock := s.lockEvent(ev.ID)
	defer unlock()

	if !ev.Synced() {
		return s.createLocked(ctx, ev)
	}

	access, err := s.tokens.ValidToken(ctx, ev.OwnerID)
	if err != nil {
		return fmt.Errorf("calendar sync skipped: %w", err)
	}

	err = s.provider.Update(ctx, access, *ev.GoogleEventID, remoteEventFor(ev))
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("remote event missing, recreating", "event_id", ev.ID, "remote_id", *ev.GoogleEventID)
		if cerr := s.events.SetGoogleEventID(ev.ID, ""); cerr != nil {
			return fmt.Errorf("clear stale remote mapping: %w", cerr)
		}
		ev.GoogleEventID = nil
		return s.createLocked(ctx, ev)
	}
	if err != nil {
		return fmt.Errorf("calendar sync failed: %w", err)
	}

	return nil
}

// EventDeleted removes the event's remote mirror. A missing remote event is
// treated as success: the delete is idempotent.
func (s *Syncer) EventDeleted(ctx context.Context, ev *model.Event) error {
	unlock := s.lockEvent(ev.ID)
	defer func() {
		unlock()
		// The event is going away; drop its lock entry.
		s.mu.Lock()
		delete(s.locks, ev.ID)
		s.mu.Unlock()
	}()

	if !ev.Synced() {
		return nil
	}

	access, err := s.tokens.ValidToken(ctx, ev.OwnerID)
	if err != nil {
		return fmt.Errorf("calendar sync skipped: %w", err)
	}

	err = s.provider.Delete(ctx, access, *ev.GoogleEventID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("calendar sync failed: %w", err)
	}

	s.logger.Info("removed remote event", "event_id", ev.ID, "remote_id", *ev.GoogleEventID)
	ev.GoogleEventID = nil
	return nil
}
