package nbd

import "log/slog"

// mountConfig collects the optional pieces of a Mount call.
type mountConfig struct {
	log     *slog.Logger
	metrics *Metrics
}

// Option configures an optional aspect of a Mount call.
type Option func(*mountConfig)

// WithLogger directs the mount's structured log events to log instead of
// slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *mountConfig) { c.log = log }
}

// WithMetrics attaches Prometheus collectors to the mount's request loop.
func WithMetrics(m *Metrics) Option {
	return func(c *mountConfig) { c.metrics = m }
}
