// Package broadcast fans committed entity mutations out to every live
// dashboard connection. All sessions share one logical group; the bus is
// a live notification channel, not an event log. Subscribers that join
// after a publish never see it and recover state over the REST surface.
package broadcast

import (
	"context"

	"attendify/internal/events"
)

// Bus delivers published envelopes to every currently joined session,
// on whichever process accepted the connection. Publish hands the
// envelope to the distribution mechanism and returns; it never waits for
// subscriber delivery.
type Bus interface {
	Join(s *Session)
	Leave(s *Session)
	Publish(ctx context.Context, env events.Envelope) error
	Close()
}
