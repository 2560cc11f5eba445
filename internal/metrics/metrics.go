// Package metrics exposes Prometheus instrumentation for panel fetch activity.
//
// A Recorder owns its own registry so tests and multiple programs never collide on the
// default registry. Every method is safe on a nil *Recorder, which lets engine
// components record unconditionally.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "entitydeck"

// Fetch result labels.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultCanceled = "canceled"
)

// shutdownTimeout bounds how long Serve waits for in-flight scrapes on shutdown.
const shutdownTimeout = 2 * time.Second

// Recorder collects entitydeck metrics.
type Recorder struct {
	registry *prometheus.Registry

	pageFetches   *prometheus.CounterVec
	pageDuration  prometheus.Histogram
	coalesced     prometheus.Counter
	staleDropped  *prometheus.CounterVec
	duplicates    prometheus.Counter
	detailFetches *prometheus.CounterVec
	detailHits    *prometheus.CounterVec
	panelsActive  prometheus.Gauge
}

// NewRecorder registers every collector on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pageFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "Page fetches issued to the paginated source, by result.",
		}, []string{"result"}),
		pageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Latency of page fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_coalesced_total",
			Help:      "Near-end triggers absorbed by the debounce window or the in-flight guard.",
		}),
		staleDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_dropped_total",
			Help:      "Fetch results discarded because their panel or epoch is gone.",
		}, []string{"kind"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_entities_dropped_total",
			Help:      "Entities dropped because their id was already listed in the panel.",
		}),
		detailFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_fetches_total",
			Help:      "Preview and detail fetches, by cache namespace and result.",
		}, []string{"namespace", "result"}),
		detailHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_cache_hits_total",
			Help:      "Preview and detail lookups answered without a fetch.",
		}, []string{"namespace"}),
		panelsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "panels_active",
			Help:      "Number of open panels.",
		}),
	}
	r.registry.MustRegister(
		r.pageFetches, r.pageDuration, r.coalesced, r.staleDropped,
		r.duplicates, r.detailFetches, r.detailHits, r.panelsActive,
	)
	return r
}

// Registry returns the registry backing r.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// PageFetch records one completed page fetch.
func (r *Recorder) PageFetch(result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.pageFetches.WithLabelValues(result).Inc()
	r.pageDuration.Observe(elapsed.Seconds())
}

// RequestCoalesced records a trigger that did not lead to its own fetch.
func (r *Recorder) RequestCoalesced() {
	if r == nil {
		return
	}
	r.coalesced.Inc()
}

// StaleDropped records a discarded result of the given kind ("page", "preview", "detail").
func (r *Recorder) StaleDropped(kind string) {
	if r == nil {
		return
	}
	r.staleDropped.WithLabelValues(kind).Inc()
}

// DuplicatesDropped records n entities skipped by the keep-first policy.
func (r *Recorder) DuplicatesDropped(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.duplicates.Add(float64(n))
}

// DetailFetch records a completed preview or detail fetch.
func (r *Recorder) DetailFetch(ns, result string) {
	if r == nil {
		return
	}
	r.detailFetches.WithLabelValues(ns, result).Inc()
}

// DetailHit records a lookup served from a panel cache.
func (r *Recorder) DetailHit(ns string) {
	if r == nil {
		return
	}
	r.detailHits.WithLabelValues(ns).Inc()
}

// PanelsActive sets the open panel gauge.
func (r *Recorder) PanelsActive(n int) {
	if r == nil {
		return
	}
	r.panelsActive.Set(float64(n))
}

// Handler returns the /metrics handler for r.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
