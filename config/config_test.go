package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	ncerr "chalc/internal/errors"
)

// ── ParseTunnelSpec ──────────────────────────────────────────────────

func TestParseTunnelSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "admin@bastion.example.com:2222", "admin", "bastion.example.com", 2222, false},
		{"no port", "root@gateway", "root", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"zero port", "host:0", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
		{"no host", ":22", "", "", 0, true},
		{"user without host", "user@", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestApplyTunnelSpec(t *testing.T) {
	cfg := &Config{TunnelSpec: "ops@bastion:2200"}
	if err := cfg.ApplyTunnelSpec(); err != nil {
		t.Fatal(err)
	}
	if !cfg.TunnelEnabled || cfg.TunnelUser != "ops" || cfg.TunnelHost != "bastion" || cfg.TunnelPort != 2200 {
		t.Errorf("tunnel fields not applied: %+v", cfg)
	}

	empty := &Config{}
	if err := empty.ApplyTunnelSpec(); err != nil || empty.TunnelEnabled {
		t.Errorf("empty spec should be a no-op, got err=%v enabled=%v", err, empty.TunnelEnabled)
	}

	bad := &Config{TunnelSpec: "@@"}
	err := bad.ApplyTunnelSpec()
	var ce *ncerr.ConfigError
	if !errors.As(err, &ce) || ce.Field != "tunnel" {
		t.Errorf("want ConfigError{Field: tunnel}, got %v", err)
	}
}

// ── ParsePort ────────────────────────────────────────────────────────

func TestParsePort(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"2028", 2028, false},
		{"1", 1, false},
		{"65535", 65535, false},
		{"0", 0, true},
		{"70000", 0, true},
		{"abc", 0, true},
		{"-1", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePort(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePort(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePort(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ── Defaults ─────────────────────────────────────────────────────────

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	if cfg.Host != DefaultHost || cfg.Port != DefaultPort {
		t.Errorf("got %s:%d", cfg.Host, cfg.Port)
	}
	if got := cfg.Address(); got != "194.182.161.159:2028" {
		t.Errorf("Address() = %q", got)
	}
	if cfg.Timeout != 0 {
		t.Errorf("default timeout should be 0 (block), got %v", cfg.Timeout)
	}
}

func TestAddress_IPv6(t *testing.T) {
	cfg := &Config{Host: "::1", Port: 2028}
	if got := cfg.Address(); got != "[::1]:2028" {
		t.Errorf("Address() = %q", got)
	}
}

// ── Config.Validate ──────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Host: "example.com", Port: 2028, Identifier: "me@example.com"}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string // empty → no error expected
	}{
		{"valid", func(*Config) {}, ""},
		{"valid with timeout", func(c *Config) { c.Timeout = 5 * time.Second }, ""},
		{"valid tunnel", func(c *Config) {
			c.TunnelEnabled, c.TunnelHost, c.SSHKeyPath = true, "gw", "/k"
		}, ""},
		{"no host", func(c *Config) { c.Host = "" }, "host"},
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port high", func(c *Config) { c.Port = 70000 }, "port"},
		{"no identifier", func(c *Config) { c.Identifier = "" }, "id"},
		{"multi-line identifier", func(c *Config) { c.Identifier = "a\nb" }, "id"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"tunnel without host", func(c *Config) { c.TunnelEnabled = true }, "tunnel"},
		{"ssh key without tunnel", func(c *Config) { c.SSHKeyPath = "/k" }, "tunnel"},
		{"ssh agent without tunnel", func(c *Config) { c.UseSSHAgent = true }, "tunnel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ce *ncerr.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("want ConfigError, got %v", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantField)
			}
		})
	}
}

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantSub string
	}{
		{"missing id has hint", Config{Host: "x", Port: 1}, "hint:"},
		{"missing id names flag", Config{Host: "x", Port: 1}, "--id"},
		{"ssh without tunnel has hint", Config{Host: "x", Port: 1, Identifier: "i", SSHPassword: true}, "-T user@gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}
