package core

import (
	"context"
	"io"
	"os"
	"time"

	"chalc/internal/capability"
	ncerr "chalc/internal/errors"
	"chalc/internal/metrics"
	"chalc/internal/session"
	"chalc/internal/transport"
	"chalc/util"
)

// ConnectMode dials the challenge server and runs a capability on the
// resulting connection.
type ConnectMode struct {
	Dialer     transport.Dialer
	Capability capability.Capability
	Network    string
	Address    string
	// Timeout bounds the whole exchange once connected.  Zero means
	// block for as long as the server takes.
	Timeout time.Duration
	Logger  *util.Logger
	Metrics *metrics.Collector

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run dials the remote address, creates a session and hands it to the
// capability.  The connection and the transport are closed on every
// return path.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	m.Logger.Verbose("connecting to %s (%s)", m.Address, m.Network)

	start := time.Now()
	conn, err := m.Dialer.Dial(ctx, m.Network, m.Address)
	if err != nil {
		m.Metrics.RecordError(err.Error())
		return dialError(m.Address, err)
	}
	m.Metrics.Dialed(time.Since(start))

	sess := session.New(conn, m.stdout(), m.Logger, m.Metrics)
	defer sess.Close()

	sess.Logger.Verbose("connected to %s", sess.Addr())

	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
		if err := sess.SetDeadline(time.Now().Add(m.Timeout)); err != nil {
			return ncerr.Wrap("deadline", sess.Addr(), err)
		}
	}
	stop := sess.Watch(ctx)
	defer stop()

	return m.Capability.Handle(ctx, sess)
}

// dialError makes sure a dial failure carries the target address,
// without wrapping errors the transport has already classified.
func dialError(addr string, err error) error {
	var ne *ncerr.NetworkError
	var se *ncerr.SSHError
	if ncerr.As(err, &ne) || ncerr.As(err, &se) {
		return err
	}
	return ncerr.Wrap("dial", addr, err)
}
