// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// Register the hooks once at startup and expose the registry:
//
//	reg := prometheus.NewRegistry()
//	metrics.New(reg).Install()
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/flexdock/pkg/observability"
)

const namespace = "flexdock"

// =============================================================================
// Collectors
// =============================================================================

// Metrics holds the flexdock collectors. It implements
// [observability.StashHooks], [observability.SessionHooks] and
// [observability.HTTPHooks].
type Metrics struct {
	downsizes        *prometheus.CounterVec
	downsizeDuration prometheus.Histogram
	pushed           prometheus.Counter
	upgrades         *prometheus.CounterVec
	migrated         prometheus.Counter
	templateLoads    *prometheus.CounterVec
	depth            prometheus.Gauge

	resizes         prometheus.Counter
	viewportWidth   prometheus.Gauge
	recomputes      *prometheus.HistogramVec
	overflow        *prometheus.GaugeVec
	editsSuperseded prometheus.Counter

	requests *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		downsizes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stash",
			Name:      "downsizes_total",
			Help:      "Downsize reactions by direction and whether the result fits",
		}, []string{"direction", "fits"}),
		downsizeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "stash",
			Name:      "downsize_duration_seconds",
			Help:      "Time spent in one downsize reaction",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		pushed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stash",
			Name:      "snapshots_pushed_total",
			Help:      "Snapshots pushed by downsize reactions",
		}),
		upgrades: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stash",
			Name:      "upgrades_total",
			Help:      "Migrate-and-pop steps by status",
		}, []string{"status"}),
		migrated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stash",
			Name:      "migration_actions_total",
			Help:      "Add and delete actions applied while restoring wider layouts",
		}),
		templateLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stash",
			Name:      "template_loads_total",
			Help:      "Template loads by panel budget and status",
		}, []string{"max_panels", "status"}),
		depth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stash",
			Name:      "depth",
			Help:      "Current number of stashed snapshots",
		}),
		resizes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "resizes_total",
			Help:      "Viewport changes reported by the shell",
		}),
		viewportWidth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "viewport_width_pixels",
			Help:      "Last reported viewport width",
		}),
		recomputes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "recompute_duration_seconds",
			Help:      "Layout recompute latency by trigger and status",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"trigger", "status"}),
		overflow: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "overflow",
			Help:      "1 when the layout overflows the viewport in a dimension",
		}, []string{"dimension"}),
		editsSuperseded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "edits_superseded_total",
			Help:      "Debounced edit recomputes replaced by a newer edit",
		}),
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status code",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP handler errors by route",
		}, []string{"method", "route"}),
	}
}

// Install registers m as the global stash, session and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetStashHooks(m)
	observability.SetSessionHooks(m)
	observability.SetHTTPHooks(m)
}

// =============================================================================
// Stash Hooks
// =============================================================================

func (m *Metrics) OnDownsize(_ context.Context, direction string, _ int, pushed int, fits bool, d time.Duration) {
	m.downsizes.WithLabelValues(direction, strconv.FormatBool(fits)).Inc()
	m.downsizeDuration.Observe(d.Seconds())
	m.pushed.Add(float64(pushed))
}

func (m *Metrics) OnUpgrade(_ context.Context, _ int, actions int, _ time.Duration, err error) {
	m.upgrades.WithLabelValues(status(err)).Inc()
	m.migrated.Add(float64(actions))
}

func (m *Metrics) OnTemplateLoad(_ context.Context, maxPanels, _ int, err error) {
	m.templateLoads.WithLabelValues(strconv.Itoa(maxPanels), status(err)).Inc()
}

func (m *Metrics) OnDepth(_ context.Context, depth int) {
	m.depth.Set(float64(depth))
}

// =============================================================================
// Session Hooks
// =============================================================================

func (m *Metrics) OnResize(_ context.Context, width, _ int) {
	m.resizes.Inc()
	m.viewportWidth.Set(float64(width))
}

func (m *Metrics) OnRecompute(_ context.Context, trigger string, d time.Duration, err error) {
	m.recomputes.WithLabelValues(trigger, status(err)).Observe(d.Seconds())
}

func (m *Metrics) OnOverflow(_ context.Context, width, height bool) {
	m.overflow.WithLabelValues("width").Set(flag(width))
	m.overflow.WithLabelValues("height").Set(flag(height))
}

func (m *Metrics) OnEditSuperseded(context.Context) {
	m.editsSuperseded.Inc()
}

// =============================================================================
// HTTP Hooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, _ error) {
	m.errors.WithLabelValues(method, route).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
