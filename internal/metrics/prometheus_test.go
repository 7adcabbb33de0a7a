package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Register(t *testing.T) {
	c := New()
	c.ExchangeStarted()
	c.LineReceived(12)
	c.LineReceived(12)
	c.LineSent(4)
	c.ExchangeDone(150 * time.Millisecond)

	reg := prometheus.NewRegistry()
	require.NoError(t, c.Register(reg, "test"))

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range families {
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			got[mf.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			got[mf.GetName()] = m.GetGauge().GetValue()
		}
	}

	assert.Equal(t, 2.0, got["test_lines_received_total"])
	assert.Equal(t, 24.0, got["test_bytes_received_total"])
	assert.Equal(t, 1.0, got["test_lines_sent_total"])
	assert.Equal(t, 1.0, got["test_solved_total"])
	assert.InDelta(t, 0.15, got["test_exchange_duration_seconds"], 1e-9)
	assert.Equal(t, 0.0, got["test_last_error_timestamp_seconds"])
}

func TestCollector_RegisterTwice(t *testing.T) {
	c := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, c.Register(reg, ""))
	assert.Error(t, c.Register(reg, ""), "duplicate registration must fail")
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.RecordError("dial refused")

	path := filepath.Join(t.TempDir(), "chalc.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE chalc_errors_total counter")
	assert.Contains(t, text, "chalc_errors_total 1")
	assert.True(t, strings.Contains(text, "chalc_solved_total 0"), text)
}

func TestNilCollector_WriteTextfile(t *testing.T) {
	var c *Collector
	path := filepath.Join(t.TempDir(), "nil.prom")
	require.NoError(t, c.WriteTextfile(path))
}
