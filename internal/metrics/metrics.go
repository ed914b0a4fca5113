// Package metrics exposes Prometheus collectors for feed fetches, the response
// cache and estimate computations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the service collectors. A nil *Recorder records nothing.
type Recorder struct {
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	cache        *prometheus.CounterVec
	estimates    *prometheus.CounterVec
	duration     prometheus.Histogram
}

// New registers the collectors on reg, or on the default registerer when reg is
// nil. Collectors that are already registered are reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afrr_feed_requests_total",
			Help: "Upstream price feed requests by dataset and outcome",
		}, []string{"dataset", "outcome"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "afrr_feed_request_seconds",
			Help:    "Upstream price feed request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"dataset"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afrr_feed_cache_total",
			Help: "Feed cache lookups by dataset and result",
		}, []string{"dataset", "result"}),
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "afrr_estimates_total",
			Help: "Estimate computations by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "afrr_estimate_seconds",
			Help:    "Wall time of one estimate computation including feed fetches",
			Buckets: prometheus.DefBuckets,
		}),
	}

	var err error
	if r.fetches, err = register(reg, r.fetches); err != nil {
		return nil, err
	}
	if r.fetchLatency, err = register(reg, r.fetchLatency); err != nil {
		return nil, err
	}
	if r.cache, err = register(reg, r.cache); err != nil {
		return nil, err
	}
	if r.estimates, err = register(reg, r.estimates); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (r *Recorder) Fetch(dataset string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.fetches.WithLabelValues(dataset, outcome).Inc()
	r.fetchLatency.WithLabelValues(dataset).Observe(d.Seconds())
}

func (r *Recorder) CacheLookup(dataset string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(dataset, result).Inc()
}

func (r *Recorder) Estimate(d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.estimates.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
}
