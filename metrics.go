package slotdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeDenied  = "denied"
	outcomeError   = "error"
)

// Metrics holds the Prometheus metrics of a server. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	cyclesTotal   *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	notifyFailed  prometheus.Counter
	sessionsTotal prometheus.Counter
	entries       prometheus.Gauge
}

// NewMetrics creates the server metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slotdb_request_cycles_total",
				Help: "Total number of request cycles by command and outcome",
			},
			[]string{"command", "outcome"},
		),
		cycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "slotdb_request_cycle_duration_seconds",
				Help:    "Request cycle duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		notifyFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotdb_notify_failures_total",
			Help: "Number of failed attempts to send a failure code to the peer",
		}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotdb_sessions_total",
			Help: "Number of protocol sessions served",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slotdb_store_entries",
			Help: "Number of records in the store",
		}),
	}

	reg.MustRegister(m.cyclesTotal, m.cycleDuration, m.notifyFailed, m.sessionsTotal, m.entries)
	return m
}

func (m *Metrics) observeCycle(out Outcome, d time.Duration, entries uint16) {
	if m == nil {
		return
	}

	cmd := commandName(out.Command)
	m.cyclesTotal.WithLabelValues(cmd, outcomeLabel(out.Code)).Inc()
	m.cycleDuration.WithLabelValues(cmd).Observe(d.Seconds())
	if out.Notify != Success {
		m.notifyFailed.Inc()
	}
	m.entries.Set(float64(entries))
}

func (m *Metrics) observeSession(entries uint16) {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
	m.entries.Set(float64(entries))
}

func outcomeLabel(c Code) string {
	switch {
	case c == Success:
		return outcomeSuccess
	case c.Failed():
		return outcomeError
	case c.Has(RequestDenied):
		return outcomeDenied
	}
	return outcomeError
}
