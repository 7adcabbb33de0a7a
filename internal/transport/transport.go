// Package transport decides how the connection to the challenge server
// is opened: a direct TCP dial, or a dial forwarded through an SSH
// gateway.  What happens over the connection is the capability
// layer's job.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound stream connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH client).  Stateless dialers return nil.
	Close() error
}

// checkNetwork rejects anything that is not a stream transport; the
// exchange is line-oriented and needs ordered delivery.
func checkNetwork(network string) error {
	switch network {
	case "tcp", "tcp4", "tcp6":
		return nil
	default:
		return net.UnknownNetworkError(network)
	}
}
