package notification

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dojo",
		Subsystem: "notifications",
		Name:      "deliveries_total",
		Help:      "Per-recipient notification deliveries by channel and outcome.",
	}, []string{"channel", "outcome"})

	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dojo",
		Subsystem: "notifications",
		Name:      "dispatch_duration_seconds",
		Help:      "Time to fan a notification out to all recipients.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event"})
)

func recordDelivery(channel Channel, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	deliveriesTotal.WithLabelValues(channel.String(), outcome).Inc()
}

func observeDispatch(event string, elapsed time.Duration) {
	if event == "" {
		event = "unnamed"
	}
	dispatchDuration.WithLabelValues(event).Observe(elapsed.Seconds())
}

// DispatchMetrics tracks fan-out activity since process start.
type DispatchMetrics struct {
	Dispatches          int64         `json:"dispatches"`
	RecipientsAttempted int64         `json:"recipients_attempted"`
	RecipientsSucceeded int64         `json:"recipients_succeeded"`
	RecipientsFailed    int64         `json:"recipients_failed"`
	Unresolved          int64         `json:"unresolved"`
	Panics              int64         `json:"panics"`
	InFlight            int64         `json:"in_flight"`
	LastDispatchAt      time.Time     `json:"last_dispatch_at"`
	AverageDuration     time.Duration `json:"average_duration"`
}

// MetricsTracker provides a goroutine-safe wrapper around DispatchMetrics.
type MetricsTracker struct {
	mu        sync.RWMutex
	metrics   DispatchMetrics
	listeners []func(DispatchMetrics)
}

func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{}
}

// Update applies a mutation in a thread-safe way.
func (t *MetricsTracker) Update(fn func(*DispatchMetrics)) {
	if fn == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&t.metrics)
	snapshot := t.metrics
	for _, listener := range t.listeners {
		listener(snapshot)
	}
}

// Snapshot returns a copy of the current metrics.
func (t *MetricsTracker) Snapshot() DispatchMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}

// OnChange registers a callback invoked whenever metrics are updated.
func (t *MetricsTracker) OnChange(listener func(DispatchMetrics)) {
	if listener == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}
