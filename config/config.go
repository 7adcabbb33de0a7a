// Package config defines the runtime configuration for chalc and the
// helpers that parse endpoint and tunnel specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ncerr "chalc/internal/errors"
)

// Config holds every tuneable for a single chalc run.
type Config struct {
	// ── Challenge server ─────────────────────────────────────────────
	Host       string
	Port       int
	Identifier string        // first line sent to the server
	Timeout    time.Duration // dial + exchange deadline, 0 = none

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose     int
	Stats       bool   // dump run metrics as JSON on exit
	MetricsFile string // Prometheus textfile written on exit
}

// New returns a Config populated with the defaults.
func New() *Config {
	return &Config{
		Host: DefaultHost,
		Port: DefaultPort,
	}
}

// Address returns the challenge server as "host:port".
func (c *Config) Address() string {
	return joinHostPort(c.Host, c.Port)
}

// ── Endpoint parser ──────────────────────────────────────────────────

// ParsePort accepts a decimal port in 1-65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:@]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ApplyTunnelSpec parses TunnelSpec, if set, into the Tunnel* fields.
func (c *Config) ApplyTunnelSpec() error {
	if c.TunnelSpec == "" {
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return &ncerr.ConfigError{
			Field:   "tunnel",
			Value:   c.TunnelSpec,
			Message: err.Error(),
			Hint:    "use -T user@bastion.example.com[:port]",
		}
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &ncerr.ConfigError{
			Field:   "host",
			Message: "challenge server host is required",
			Hint:    "pass it as the first argument or set CHALC_HOST",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ncerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
		}
	}

	if c.Identifier == "" {
		return &ncerr.ConfigError{
			Field:   "id",
			Message: "identifier is required",
			Hint:    "pass --id you@example.com or set CHALC_ID",
		}
	}
	if strings.ContainsAny(c.Identifier, "\r\n") {
		return &ncerr.ConfigError{
			Field:   "id",
			Value:   strconv.Quote(c.Identifier),
			Message: "identifier must be a single line",
		}
	}

	if c.Timeout < 0 {
		return &ncerr.ConfigError{
			Field:   "timeout",
			Value:   c.Timeout,
			Message: "must not be negative",
		}
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ncerr.ConfigError{
			Field:   "tunnel",
			Message: "tunnel host is required",
		}
	}
	if !c.TunnelEnabled && (c.SSHKeyPath != "" || c.SSHPassword || c.UseSSHAgent) {
		return &ncerr.ConfigError{
			Field:   "tunnel",
			Message: "SSH options given without a tunnel",
			Hint:    "add -T user@gateway to use them",
		}
	}

	return nil
}
