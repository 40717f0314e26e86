// Package metrics records run metrics and pushes them to a Prometheus
// Pushgateway when the run ends.
//
// A dorkshot run is a short-lived batch job, so metrics are pushed once
// rather than scraped.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/duration"
)

// Capture statuses used as the "status" label.
const (
	StatusCaptured = "captured"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Recorder collects the metrics of one run in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	capturesTotal     *prometheus.CounterVec
	waitTimeoutsTotal *prometheus.CounterVec
	captureSeconds    *prometheus.HistogramVec
	screenshotBytes   prometheus.Histogram
	runSeconds        prometheus.Gauge
	lastRunTimestamp  prometheus.Gauge
}

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.capturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dorkshot_captures_total",
			Help: "Dork captures by engine and status",
		},
		[]string{"engine", "status"},
	)
	r.waitTimeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dorkshot_page_wait_failures_total",
			Help: "Pages captured before the ready selector appeared",
		},
		[]string{"engine"},
	)
	r.captureSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dorkshot_capture_duration_seconds",
			Help:    "Time from navigation to annotated file on disk",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 20, 30, 60},
		},
		[]string{"engine"},
	)
	r.screenshotBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dorkshot_screenshot_bytes",
			Help:    "Size of annotated screenshots",
			Buckets: prometheus.ExponentialBuckets(64<<10, 2, 8),
		},
	)
	r.runSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dorkshot_run_duration_seconds",
		Help: "Wall time of the last run",
	})
	r.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dorkshot_last_run_timestamp_seconds",
		Help: "Unix time the last run finished",
	})

	r.registry.MustRegister(
		r.capturesTotal,
		r.waitTimeoutsTotal,
		r.captureSeconds,
		r.screenshotBytes,
		r.runSeconds,
		r.lastRunTimestamp,
	)
	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Captured records a saved screenshot.
func (r *Recorder) Captured(engine string, took time.Duration, size int64, waitFailed bool) {
	if r == nil {
		return
	}
	r.capturesTotal.WithLabelValues(engine, StatusCaptured).Inc()
	r.captureSeconds.WithLabelValues(engine).Observe(took.Seconds())
	r.screenshotBytes.Observe(float64(size))
	if waitFailed {
		r.waitTimeoutsTotal.WithLabelValues(engine).Inc()
	}
}

// Skipped records a capture that was not attempted.
func (r *Recorder) Skipped(engine string) {
	if r == nil {
		return
	}
	r.capturesTotal.WithLabelValues(engine, StatusSkipped).Inc()
}

// Failed records a capture that aborted the run.
func (r *Recorder) Failed(engine string) {
	if r == nil {
		return
	}
	r.capturesTotal.WithLabelValues(engine, StatusFailed).Inc()
}

// RunFinished records the run wall time.
func (r *Recorder) RunFinished(took time.Duration, at time.Time) {
	if r == nil {
		return
	}
	r.runSeconds.Set(took.Seconds())
	r.lastRunTimestamp.Set(float64(at.Unix()))
}

// PushOptions configures a Pushgateway push.
type PushOptions struct {
	// URL of the Pushgateway, e.g. "http://localhost:9091".
	URL string

	// Job name (default: "dorkshot").
	Job string

	// Grouping labels added to the push, e.g. target.
	Grouping map[string]string

	// Timeout for the push request (default: 10s).
	Timeout time.Duration
}

// Push replaces the job's metrics on the Pushgateway with the recorder's.
func (r *Recorder) Push(ctx context.Context, opts PushOptions) error {
	if opts.Job == "" {
		opts.Job = defaults.ToolName
	}
	if opts.Timeout == 0 {
		opts.Timeout = duration.TelemetryPush
	}

	pusher := push.New(opts.URL, opts.Job).
		Gatherer(r.registry).
		Client(&http.Client{Timeout: opts.Timeout})
	for k, v := range opts.Grouping {
		pusher = pusher.Grouping(k, v)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", opts.URL, err)
	}
	return nil
}
