// Package cmd wires up the CLI flags and dispatches to the core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"chalc/config"
	"chalc/internal/capability"
	"chalc/internal/challenge"
	"chalc/internal/core"
	"chalc/internal/metrics"
	"chalc/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X chalc/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs chalc against os.Stdout and os.Stderr.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	cfg := config.New()
	cfgFile := configPath(args)
	if cfgFile != "" {
		if err := config.LoadFile(cfg, cfgFile); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("chalc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Already loaded above; registered so that Parse accepts it.
	fs.StringP("config", "c", cfgFile, "YAML configuration file")

	// ── challenge ────────────────────────────────────────────────
	fs.StringVarP(&cfg.Identifier, "id", "i", cfg.Identifier, "Identifier sent as the first line (required)")

	timeoutSec := int(cfg.Timeout / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Exchange deadline in seconds (0 = none)")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "SSH tunnel via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── offline ──────────────────────────────────────────────────
	var solveLine string
	var dryRun bool
	fs.StringVar(&solveLine, "solve", "", "Print the answer for a challenge line and exit")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")

	// ── output ───────────────────────────────────────────────────
	envVerbose := cfg.Verbose
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print run metrics as JSON to stderr")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write run metrics in Prometheus text format to this file")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !fs.Changed("verbose") {
		cfg.Verbose = envVerbose
	}

	if showHelp || (len(args) == 0 && cfg.Identifier == "") {
		printUsage(stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "chalc %s\n", version)
		return nil
	}
	if fs.Changed("solve") {
		answer, err := challenge.Solve(solveLine)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, answer)
		return nil
	}

	if fs.Changed("timeout") {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if err := cfg.ApplyTunnelSpec(); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(stderr)

	if dryRun {
		fmt.Fprintf(stdout, "would connect to %s%s as %q\n", cfg.Address(), via(cfg), cfg.Identifier)
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	var m *metrics.Collector
	if cfg.Stats || cfg.MetricsFile != "" {
		m = metrics.New()
		defer func() {
			if cfg.Stats {
				fmt.Fprintln(stderr, m.JSON())
			}
			if cfg.MetricsFile == "" {
				return
			}
			if werr := m.WriteTextfile(cfg.MetricsFile); werr != nil {
				logger.Error("metrics file: %v", werr)
				if err == nil {
					err = werr
				}
			}
		}()
	}

	mode, err := core.Build(cfg, core.Options{
		Logger:  logger,
		Metrics: m,
		Stdout:  stdout,
		OnResult: func(r *capability.Result) {
			logger.Verbose("answered %s with %s", r.Operands, r.Answer)
		},
	})
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// configPath finds --config/-c in args ahead of the real parse, so the
// file can sit below the environment and the flags.  CHALC_CONFIG is
// the fallback.
func configPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "--":
			return os.Getenv("CHALC_CONFIG")
		case a == "--config" || a == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		case strings.HasPrefix(a, "-c") && len(a) > 2 && !strings.HasPrefix(a, "--"):
			return a[2:]
		}
	}
	return os.Getenv("CHALC_CONFIG")
}

// parsePositional accepts "host", "host port" or "host:port".  Missing
// parts keep their env or default values.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
		return nil
	case 1:
		arg := remaining[0]
		if strings.Count(arg, ":") == 1 || strings.HasPrefix(arg, "[") {
			host, port, err := util.SplitAddr(arg)
			if err != nil {
				return fmt.Errorf("address %q: %w", arg, err)
			}
			cfg.Host, cfg.Port = host, port
			return nil
		}
		cfg.Host = arg
		return nil
	case 2:
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port %q: %w", remaining[1], err)
		}
		cfg.Host, cfg.Port = remaining[0], port
		return nil
	default:
		return fmt.Errorf("too many arguments: want [host [port]], got %d", len(remaining))
	}
}

func via(cfg *config.Config) string {
	if !cfg.TunnelEnabled {
		return ""
	}
	return fmt.Sprintf(" via ssh %s@%s:%d", cfg.TunnelUser, cfg.TunnelHost, cfg.TunnelPort)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `chalc – challenge/response client v%s

Identifies itself to a line-oriented challenge server, answers the
arithmetic challenge and prints the greeting and the verdict.

Usage:
  chalc --id <identifier> [options] [host [port]]
  chalc --config chalc.yaml
  chalc --solve "iii jjj kkk"

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Environment:
  CHALC_CONFIG, CHALC_METRICS_FILE,
  CHALC_HOST, CHALC_PORT, CHALC_ID, CHALC_TIMEOUT, CHALC_TUNNEL,
  CHALC_SSH_KEY, CHALC_SSH_PASSWORD, CHALC_SSH_AGENT,
  CHALC_STRICT_HOSTKEY, CHALC_KNOWN_HOSTS, CHALC_VERBOSE, CHALC_STATS

Examples:
  chalc --id me@example.com                    Default server (%s:%d)
  chalc -i me@example.com -w 10 localhost 2028 Local server, 10s deadline
  chalc -i me@example.com -T ops@bastion       Through an SSH gateway
  chalc --solve "010 020 030"                  Prints 890
`, config.DefaultHost, config.DefaultPort)
}
