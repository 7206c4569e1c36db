package logger

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// WithMetrics wraps a Logger so every Error call also increments a Prometheus counter, letting
// operators alert on contract host-wrapper errors without scraping log lines.
func WithMetrics(l Logger, registry prometheus.Registerer) (Logger, error) {
	errorCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bridge_contract_errors_total",
		Help: "Number of error-level log lines emitted by the bridge contract host wrapper",
	})
	if err := registry.Register(errorCounter); err != nil {
		return nil, errors.Wrapf(err, "failed to register error counter")
	}

	return metricLogger{
		parentLogger: l,
		errorCounter: errorCounter,
	}, nil
}

type metricLogger struct {
	parentLogger Logger
	errorCounter prometheus.Counter
}

func (l metricLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.parentLogger.Debug(ctx, msg, fields...)
}

func (l metricLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.parentLogger.Info(ctx, msg, fields...)
}

func (l metricLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.parentLogger.Warn(ctx, msg, fields...)
}

func (l metricLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.errorCounter.Inc()
	l.parentLogger.Error(ctx, msg, fields...)
}
