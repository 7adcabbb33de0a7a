package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every exported metric name.
const DefaultNamespace = "chalc"

// Register exposes the collector's counters on reg.  The values are
// read at gather time, so registering once is enough.
func (c *Collector) Register(reg prometheus.Registerer, namespace string) error {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	counter := func(name, help string, fn func() int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(fn()) })
	}
	gauge := func(name, help string, fn func() float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, fn)
	}

	collectors := []prometheus.Collector{
		counter("lines_received_total", "Lines read from the challenge server.", c.LinesIn),
		counter("lines_sent_total", "Lines written to the challenge server.", c.LinesOut),
		counter("bytes_received_total", "Bytes read from the challenge server.", c.TotalBytesIn),
		counter("bytes_sent_total", "Bytes written to the challenge server.", c.TotalBytesOut),
		counter("exchanges_total", "Exchanges started.", c.Exchanges),
		counter("solved_total", "Exchanges that reached the verdict.", c.Solved),
		counter("errors_total", "Errors recorded during the run.", c.ErrorCount),
		gauge("dial_duration_seconds", "Time spent establishing the connection.", func() float64 {
			return c.durations().dial.Seconds()
		}),
		gauge("exchange_duration_seconds", "Time spent on the last completed exchange.", func() float64 {
			return c.durations().exchange.Seconds()
		}),
		gauge("last_error_timestamp_seconds", "Unix time of the last recorded error, 0 if none.", func() float64 {
			t := c.durations().lastError
			if t.IsZero() {
				return 0
			}
			return float64(t.UnixNano()) / 1e9
		}),
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// WriteTextfile writes the collector in the Prometheus text format to
// path, for node_exporter's textfile collector.  The file is replaced
// atomically.
func (c *Collector) WriteTextfile(path string) error {
	reg := prometheus.NewRegistry()
	if err := c.Register(reg, DefaultNamespace); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
