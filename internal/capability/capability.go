// Package capability defines what happens over an established
// connection.  A Capability operates on a Session rather than a raw
// net.Conn, which keeps it testable and decoupled from how the
// connection was dialed.
package capability

import (
	"context"

	"chalc/internal/session"
)

// Capability handles a single connection according to a specific
// behaviour.  Exchange is the challenge/answer protocol.
type Capability interface {
	// Handle runs the capability against the given session.  It blocks
	// until the protocol finishes, fails, or the context is cancelled.
	Handle(ctx context.Context, sess *session.Session) error
}
