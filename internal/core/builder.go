package core

import (
	"io"

	"chalc/config"
	"chalc/internal/capability"
	"chalc/internal/challenge"
	"chalc/internal/metrics"
	"chalc/internal/transport"
	"chalc/tunnel"
	"chalc/util"
)

// Options carries the run-time collaborators that do not come from the
// Config.  Every field is optional.
type Options struct {
	Logger   *util.Logger
	Metrics  *metrics.Collector
	Stdout   io.Writer
	OnResult func(*capability.Result)
}

// Build constructs the connect run for cfg.  cfg must already be
// validated.
func Build(cfg *config.Config, opts Options) (Mode, error) {
	logger := opts.Logger
	if logger == nil {
		logger = util.NewLogger(cfg.Verbose)
	}

	return &ConnectMode{
		Dialer: buildDialer(cfg, logger),
		Capability: &capability.Exchange{
			Identifier: cfg.Identifier,
			Format:     challenge.DefaultFormat,
			OnResult:   opts.OnResult,
		},
		Network: "tcp",
		Address: cfg.Address(),
		Timeout: cfg.Timeout,
		Logger:  logger,
		Metrics: opts.Metrics,
		Stdout:  opts.Stdout,
	}, nil
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.Timeout,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.Timeout}
}
