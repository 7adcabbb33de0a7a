// Package metrics provides lightweight counters for a chalc run.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks what one run did on the wire.
type Collector struct {
	linesIn   atomic.Int64
	linesOut  atomic.Int64
	bytesIn   atomic.Int64
	bytesOut  atomic.Int64
	exchanges atomic.Int64
	solved    atomic.Int64
	errors    atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	dialTime     time.Duration
	exchangeTime time.Duration
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Line I/O ─────────────────────────────────────────────────────────

// LineReceived records one line of n bytes (terminator included).
func (c *Collector) LineReceived(n int) {
	if c == nil {
		return
	}
	c.linesIn.Add(1)
	c.bytesIn.Add(int64(n))
}

// LineSent records one line of n bytes (terminator included).
func (c *Collector) LineSent(n int) {
	if c == nil {
		return
	}
	c.linesOut.Add(1)
	c.bytesOut.Add(int64(n))
}

// LinesIn returns the number of lines read from the peer.
func (c *Collector) LinesIn() int64 {
	if c == nil {
		return 0
	}
	return c.linesIn.Load()
}

// LinesOut returns the number of lines written to the peer.
func (c *Collector) LinesOut() int64 {
	if c == nil {
		return 0
	}
	return c.linesOut.Load()
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Exchange ─────────────────────────────────────────────────────────

// Dialed records how long the connection took to establish.
func (c *Collector) Dialed(d time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.dialTime = d
	c.mu.Unlock()
}

// ExchangeStarted counts an attempted exchange.
func (c *Collector) ExchangeStarted() {
	if c == nil {
		return
	}
	c.exchanges.Add(1)
}

// ExchangeDone records the duration of an exchange that reached the
// verdict line.
func (c *Collector) ExchangeDone(d time.Duration) {
	if c == nil {
		return
	}
	c.solved.Add(1)
	c.mu.Lock()
	c.exchangeTime = d
	c.mu.Unlock()
}

// Exchanges returns the number of exchanges attempted.
func (c *Collector) Exchanges() int64 {
	if c == nil {
		return 0
	}
	return c.exchanges.Load()
}

// Solved returns the number of exchanges that reached the verdict.
func (c *Collector) Solved() int64 {
	if c == nil {
		return 0
	}
	return c.solved.Load()
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errors.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errors.Load()
}

type timings struct {
	dial, exchange time.Duration
	lastError      time.Time
}

func (c *Collector) durations() timings {
	if c == nil {
		return timings{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return timings{dial: c.dialTime, exchange: c.exchangeTime, lastError: c.lastError}
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	DialTime         string `json:"dial_time,omitempty"`
	ExchangeTime     string `json:"exchange_time,omitempty"`
	LinesIn          int64  `json:"lines_in"`
	LinesOut         int64  `json:"lines_out"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	Exchanges        int64  `json:"exchanges"`
	Solved           int64  `json:"solved"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:      time.Since(c.startTime).Truncate(time.Millisecond).String(),
		LinesIn:     c.linesIn.Load(),
		LinesOut:    c.linesOut.Load(),
		BytesIn:     c.bytesIn.Load(),
		BytesOut:    c.bytesOut.Load(),
		Exchanges:   c.exchanges.Load(),
		Solved:      c.solved.Load(),
		ErrorsTotal: c.errors.Load(),
	}
	if c.dialTime > 0 {
		s.DialTime = c.dialTime.String()
	}
	if c.exchangeTime > 0 {
		s.ExchangeTime = c.exchangeTime.String()
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
