package nbd

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// driverMetrics holds the Prometheus collectors a mount reports to. A nil
// *driverMetrics is valid and every method on it is a no-op, so callers
// that don't care about metrics can simply leave it unset.
type driverMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestErrors   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeMounts    prometheus.Gauge
}

// Metrics holds the driver's Prometheus collectors. Pass the same *Metrics
// via WithMetrics to every mount that should share one set of collectors,
// or call NewMetrics once per mount with a dedicated registry for
// per-device metrics.
type Metrics struct {
	driverMetrics
}

// NewMetrics creates a Metrics instance and registers its collectors with
// reg. reg may be prometheus.NewRegistry() for isolation, or
// prometheus.DefaultRegisterer to participate in an application's existing
// /metrics endpoint.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{driverMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goblk",
			Subsystem: "nbd",
			Name:      "requests_total",
			Help:      "Number of NBD requests served, by command.",
		}, []string{"command"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "goblk",
			Subsystem: "nbd",
			Name:      "request_errors_total",
			Help:      "Number of NBD requests that completed with a nonzero errno, by command.",
		}, []string{"command"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "goblk",
			Subsystem: "nbd",
			Name:      "request_duration_seconds",
			Help:      "Latency of backend invocations dispatched from the NBD request loop, by command.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		activeMounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goblk",
			Subsystem: "nbd",
			Name:      "active_mounts",
			Help:      "Number of NBD mounts currently running their request loop.",
		}),
	}}

	for _, c := range []prometheus.Collector{
		m.requestsTotal, m.requestErrors, m.requestDuration, m.activeMounts,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *driverMetrics) observe(cmd Command, errno uint32, d time.Duration) {
	if m == nil {
		return
	}
	label := cmd.String()
	m.requestsTotal.WithLabelValues(label).Inc()
	m.requestDuration.WithLabelValues(label).Observe(d.Seconds())
	if errno != 0 {
		m.requestErrors.WithLabelValues(label).Inc()
	}
}

func (m *driverMetrics) mountStarted() {
	if m == nil {
		return
	}
	m.activeMounts.Inc()
}

func (m *driverMetrics) mountStopped() {
	if m == nil {
		return
	}
	m.activeMounts.Dec()
}

// dm returns the underlying *driverMetrics, or nil if m itself is nil. Every
// driverMetrics method tolerates a nil receiver, so callers can chain
// m.dm().mountStarted() whether or not metrics were configured for a mount.
func (m *Metrics) dm() *driverMetrics {
	if m == nil {
		return nil
	}
	return &m.driverMetrics
}
