package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// StoreMetrics records data-access operations by entity and operation.
type StoreMetrics struct {
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
}

// NewStoreMetrics registers the data-access metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of data-access operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"entity", "op"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "store_operations_total",
		Help:      "Data-access operations by outcome.",
	}, []string{"entity", "op", "outcome"})
	reg.MustRegister(duration, operations)
	return &StoreMetrics{duration: duration, operations: operations}
}

// Observe records one operation that started at start.
func (m *StoreMetrics) Observe(entity, op, outcome string, start time.Time) {
	if m == nil || m.duration == nil {
		return
	}
	entity, op = normalizeLabel(entity), normalizeLabel(op)
	m.duration.WithLabelValues(entity, op).Observe(time.Since(start).Seconds())
	m.operations.WithLabelValues(entity, op, normalizeLabel(outcome)).Inc()
}

// OfferCodeMetrics tracks the offer code cache and redemptions.
type OfferCodeMetrics struct {
	cache       *prometheus.CounterVec
	redemptions *prometheus.CounterVec
}

func NewOfferCodeMetrics(reg prometheus.Registerer) *OfferCodeMetrics {
	if reg == nil {
		return &OfferCodeMetrics{}
	}
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "offer_code_cache_total",
		Help:      "Offer code cache lookups by result.",
	}, []string{"result"})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "offer_code_redemptions_total",
		Help:      "Offer code redemption attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(cache, redemptions)
	return &OfferCodeMetrics{cache: cache, redemptions: redemptions}
}

func (m *OfferCodeMetrics) CacheHit() {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues("hit").Inc()
}

func (m *OfferCodeMetrics) CacheMiss() {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues("miss").Inc()
}

func (m *OfferCodeMetrics) Redemption(outcome string) {
	if m == nil || m.redemptions == nil {
		return
	}
	m.redemptions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
