package sdk

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Operation outcome labels.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeUnconfig = "not_configured"
	outcomeFailed   = "error"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// newSDKMetrics registers the SDK operation metrics along with the provider and search
// metrics the wired use cases emit.
func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docsearch",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by operation and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docsearch",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	metrics.RegisterProviderMetrics(reg)
	metrics.RegisterSearchMetrics(reg)
	return m, nil
}

// registerOrReuse registers c, or points it at an identical collector that is already registered,
// so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("docsearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("docsearch: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and measures SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &observer{logger: logger.Named("sdk")}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// outcome classifies err for the status label. Caller mistakes are kept apart from failures.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrDocumentNotFound):
		return outcomeNotFound
	case errors.Is(err, domain.ErrInvalidDocument),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrUnauthorized):
		return outcomeInvalid
	case errors.Is(err, domain.ErrNotConfigured):
		return outcomeUnconfig
	default:
		return outcomeFailed
	}
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	took := time.Since(start)
	status := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(took.Seconds())
	}

	fields := []zap.Field{zap.String("op", op), zap.Duration("duration", took)}
	switch status {
	case outcomeOK:
		o.logger.Debug("Operation completed", fields...)
	case outcomeFailed:
		o.logger.Warn("Operation failed", append(fields, zap.Error(err))...)
	default:
		o.logger.Debug("Operation rejected", append(fields, zap.String("status", status), zap.Error(err))...)
	}
}
