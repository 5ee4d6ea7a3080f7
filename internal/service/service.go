// Package service owns event and RSVP orchestration: local persistence is
// strict and synchronous, remote mirroring and notification delivery are
// best-effort side effects that never fail the local mutation.
package service

import (
	"context"
	"errors"

	"github.com/streamslot/streamslot/internal/model"
	"github.com/streamslot/streamslot/internal/notify"
)

var (
	// ErrValidation rejects bad input shape or ordering. Nothing is applied.
	ErrValidation = errors.New("invalid input")

	// ErrEventNotFound rejects operations on an absent event.
	ErrEventNotFound = errors.New("event not found")

	// ErrNotOwner rejects mutations by a caller who does not own the event.
	ErrNotOwner = errors.New("caller does not own event")

	// ErrInvalidSlotSelection rejects an attending RSVP whose slot is not one
	// of the event's generated slots.
	ErrInvalidSlotSelection = errors.New("selected slot is not part of the event")
)

// Notifier is the dispatch capability the services need. Satisfied by
// *notify.Dispatcher and by recording fakes in tests.
type Notifier interface {
	Dispatch(ctx context.Context, recipient model.User, prefs model.NotificationPreference, content notify.Content) notify.Result
}

// Broadcaster pushes lifecycle events to connected dashboard clients.
// Satisfied by *realtime.Hub; may be nil.
type Broadcaster interface {
	Lifecycle(entity, action string, id int64)
}
