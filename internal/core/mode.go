// Package core is the orchestration layer.  It composes a transport
// and a capability into a complete run and provides a builder that
// assembles that run from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  session  →  capability  →  core  →  cmd (CLI)
package core

import "context"

// Mode is one complete run of chalc, from connection establishment to
// teardown.
type Mode interface {
	Run(ctx context.Context) error
}
