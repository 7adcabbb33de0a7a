package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Config file  (file.go)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the CHALC_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  Call it BEFORE flag parsing so
// that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("CHALC_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("CHALC_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := os.Getenv("CHALC_ID"); v != "" {
		cfg.Identifier = v
	}
	if v := envInt("CHALC_TIMEOUT"); v > 0 {
		cfg.Timeout = time.Duration(v) * time.Second
	}

	// SSH tunnel
	if v := os.Getenv("CHALC_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("CHALC_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("CHALC_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("CHALC_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("CHALC_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("CHALC_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("CHALC_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
	if envBool("CHALC_STATS") {
		cfg.Stats = true
	}
	if v := os.Getenv("CHALC_METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}
