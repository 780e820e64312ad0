// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	ChannelsCreated   prometheus.Counter
	ChannelsDeleted   prometheus.Counter
	InvitesIssued     prometheus.Counter
	ProvisionFailures prometheus.Counter
	CleanupFailures   prometheus.Counter

	// Histograms (seconds)
	ProvisionDuration prometheus.Observer

	// Gauges
	PendingCleanupsGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		ChannelsCreated = promauto.NewCounter(prometheus.CounterOpts{Name: "matchbot_channels_created_total", Help: "Number of match channels created"})
		ChannelsDeleted = promauto.NewCounter(prometheus.CounterOpts{Name: "matchbot_channels_deleted_total", Help: "Number of match channels deleted by cleanup"})
		InvitesIssued = promauto.NewCounter(prometheus.CounterOpts{Name: "matchbot_invites_issued_total", Help: "Number of invites issued"})
		ProvisionFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "matchbot_provision_failures_total", Help: "Number of provisioning requests that failed after auth/validation"})
		CleanupFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "matchbot_cleanup_failures_total", Help: "Number of scheduled channel deletions that failed"})
		ProvisionDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "matchbot_provision_duration_seconds", Help: "Provisioning flow duration seconds", Buckets: prometheus.DefBuckets})
		PendingCleanupsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "matchbot_pending_cleanups", Help: "Current number of channels with a deletion scheduled"})
	})
}

// Nil-safe increment helpers so callers work even when Init was never called (tests).

func IncChannelsCreated() {
	if ChannelsCreated != nil {
		ChannelsCreated.Inc()
	}
}

func IncChannelsDeleted() {
	if ChannelsDeleted != nil {
		ChannelsDeleted.Inc()
	}
}

func IncInvitesIssued() {
	if InvitesIssued != nil {
		InvitesIssued.Inc()
	}
}

func IncProvisionFailures() {
	if ProvisionFailures != nil {
		ProvisionFailures.Inc()
	}
}

func IncCleanupFailures() {
	if CleanupFailures != nil {
		CleanupFailures.Inc()
	}
}

// SetPendingCleanups records the current pending-deletion count.
func SetPendingCleanups(n int) {
	if PendingCleanupsGauge != nil {
		PendingCleanupsGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with a corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
