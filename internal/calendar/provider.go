// Package calendar keeps a best-effort mirror of local events in an external
// calendar service. The mirror may be absent or stale; local state stays
// authoritative.
package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Provider when the remote event id does not
// exist, e.g. it was deleted out-of-band.
var ErrNotFound = errors.New("remote event not found")

// RemoteEvent is the provider-neutral representation of an event to mirror.
type RemoteEvent struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Provider is the narrow capability the sync adapter needs from the external
// calendar service. Implemented once against the real service and once as a
// deterministic fake in tests.
type Provider interface {
	Create(ctx context.Context, accessToken string, ev RemoteEvent) (string, error)
	Update(ctx context.Context, accessToken, remoteID string, ev RemoteEvent) error
	Delete(ctx context.Context, accessToken, remoteID string) error
}
