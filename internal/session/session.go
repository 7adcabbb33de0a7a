// Package session represents a single connection lifecycle: one
// socket, a line reader and a line writer bound to it, and the local
// stdout where protocol output is printed.
//
// Capabilities operate on a Session rather than a raw net.Conn, so
// they do not care whether the peer sits behind an SSH tunnel or a
// test listener.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ncerr "chalc/internal/errors"
	"chalc/internal/metrics"
	"chalc/util"
)

// Session is exclusively owned by the exchange that opened it.  It is
// not safe for concurrent line I/O.
type Session struct {
	ID      string
	Conn    net.Conn
	Stdout  io.Writer
	Logger  *util.Logger
	Metrics *metrics.Collector

	addr   string
	reader *bufio.Reader
	writer *bufio.Writer

	closeOnce sync.Once
	closeErr  error
}

// New binds a Session to conn.  stdout receives the lines the exchange
// prints; metrics may be nil.
func New(conn net.Conn, stdout io.Writer, logger *util.Logger, m *metrics.Collector) *Session {
	id := uuid.NewString()
	addr := ""
	if ra := conn.RemoteAddr(); ra != nil {
		addr = ra.String()
	}
	return &Session{
		ID:      id,
		Conn:    conn,
		Stdout:  stdout,
		Logger:  logger.WithPrefix("[" + id[:8] + "]"),
		Metrics: m,
		addr:    addr,
		reader:  bufio.NewReader(conn),
		writer:  bufio.NewWriter(conn),
	}
}

// Addr returns the remote address the session is connected to.
func (s *Session) Addr() string { return s.addr }

// ReadLine reads one line and strips its terminator (LF or CRLF).  A
// final unterminated line is returned as-is; EOF with nothing buffered
// is reported as ErrPeerClosed.
func (s *Session) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			s.Metrics.LineReceived(len(line))
			return strings.TrimRight(line, "\r"), nil
		}
		if err == io.EOF {
			err = fmt.Errorf("%w: %w", ncerr.ErrPeerClosed, io.ErrUnexpectedEOF)
		}
		return "", ncerr.Wrap("read", s.addr, err)
	}
	s.Metrics.LineReceived(len(line))
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	s.Logger.Debug("<- %q", line)
	return line, nil
}

// WriteLine sends text followed by exactly one "\n" and flushes.
func (s *Session) WriteLine(text string) error {
	if _, err := s.writer.WriteString(text); err != nil {
		return ncerr.Wrap("write", s.addr, err)
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return ncerr.Wrap("write", s.addr, err)
	}
	if err := s.writer.Flush(); err != nil {
		return ncerr.Wrap("write", s.addr, err)
	}
	s.Metrics.LineSent(len(text) + 1)
	s.Logger.Debug("-> %q", text)
	return nil
}

// Print writes one line to the session's stdout.
func (s *Session) Print(line string) error {
	_, err := fmt.Fprintln(s.Stdout, line)
	return err
}

// SetDeadline bounds every pending and future read and write.  A zero
// time removes the bound.
func (s *Session) SetDeadline(t time.Time) error {
	return s.Conn.SetDeadline(t)
}

// Watch closes the session when ctx is done, unblocking any pending
// read or write.  Once the returned stop function has been called the
// session is never closed on ctx's behalf.
func (s *Session) Watch(ctx context.Context) (stop func()) {
	cancelWatch := context.AfterFunc(ctx, func() {
		s.Logger.Debug("context done, closing session: %v", ctx.Err())
		s.Close() //nolint:errcheck
	})
	return func() { cancelWatch() }
}

// Close closes the socket, which releases the reader and writer bound
// to it.  WriteLine always flushes, so nothing is left buffered.  Only
// the first call does anything; later calls return the same error.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.Conn.Close()
		s.Logger.Debug("session closed")
	})
	return s.closeErr
}
