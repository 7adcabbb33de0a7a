package config

import (
	"net"
	"strconv"
	"time"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so CLI flags and environment
// loading agree.

const (
	// DefaultHost is the challenge server the client was written for.
	DefaultHost = "194.182.161.159"

	// DefaultPort is the challenge server's TCP port.
	DefaultPort = 2028

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout bounds the SSH gateway dial and handshake.
	DefaultConnTimeout = 30 * time.Second
)

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
