// Package runner executes a dork run: one browser session, every engine and
// query in order, one annotated screenshot per pair.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/dork"
	"github.com/waftester/dorkshot/pkg/metrics"
	"github.com/waftester/dorkshot/pkg/screenshot"
	"github.com/waftester/dorkshot/pkg/tracing"
	"github.com/waftester/dorkshot/pkg/ui"
	"go.opentelemetry.io/otel/trace"
)

// Session is a browser tab the runner drives and releases.
type Session interface {
	screenshot.Page
	io.Closer
}

// Launcher starts a browser session.
type Launcher func(ctx context.Context) (Session, error)

// Config configures a run.
type Config struct {
	// OutputRoot is where the run directory is created (default ".").
	OutputRoot string

	// Engines to query, in order (default: google, bing, yahoo).
	Engines []dork.Engine

	// Templates are extra dork templates appended after the fixed queries.
	Templates []string

	// Capture configures navigation, readiness and annotation.
	Capture screenshot.Config
}

// Runner runs the capture pipeline.
type Runner struct {
	config    Config
	launch    Launcher
	annotator *screenshot.Annotator

	logger  *slog.Logger
	printer *ui.Printer
	metrics *metrics.Recorder
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithPrinter sets the console printer.
func WithPrinter(p *ui.Printer) Option {
	return func(r *Runner) { r.printer = p }
}

// WithMetrics records capture metrics into m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer emits run and capture spans on t.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// New creates a runner. The annotation font is loaded here so a missing
// font fails before any browser is started.
func New(config Config, launch Launcher, opts ...Option) (*Runner, error) {
	if config.OutputRoot == "" {
		config.OutputRoot = "."
	}
	if len(config.Engines) == 0 {
		config.Engines = dork.Engines()
	}

	annotator, err := screenshot.NewAnnotator(config.Capture)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		config:    config,
		launch:    launch,
		annotator: annotator,
		logger:    slog.Default(),
		printer:   ui.Stdout(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.printer == nil {
		r.printer = ui.Stdout()
	}
	if r.tracer == nil {
		r.tracer = tracing.Noop()
	}
	return r, nil
}

// Run captures every engine/query pair for target. The returned summary is
// non-nil once the queries are built, also when err is non-nil, and lists
// the outcomes reached so far. The browser is released on every path.
func (r *Runner) Run(ctx context.Context, target string) (summary *Summary, err error) {
	start := r.now()
	domain := dork.NormalizeDomain(target)

	queries, err := dork.Queries(domain, r.config.Templates)
	if err != nil {
		return nil, err
	}

	summary = &Summary{
		RunID:     uuid.NewString(),
		Target:    target,
		Domain:    domain,
		Queries:   queries,
		StartedAt: start,
	}
	for _, e := range r.config.Engines {
		summary.Engines = append(summary.Engines, e.String())
	}

	log := r.logger.With(slog.String("run_id", summary.RunID), slog.String("domain", domain))
	ctx, span := tracing.StartRun(ctx, r.tracer, summary.RunID, domain, len(r.config.Engines)*len(queries))
	defer func() {
		summary.FinishedAt = r.now()
		r.metrics.RunFinished(summary.Duration(), summary.FinishedAt)
		tracing.End(span, err)
	}()

	session, err := r.launch(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrBrowserLaunch, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("browser close failed", slog.String("error", cerr.Error()))
		}
	}()

	dir, err := r.makeRunDir(start)
	if err != nil {
		return summary, err
	}
	summary.Dir = dir
	log.Info("run started",
		slog.String("dir", dir),
		slog.Int("engines", len(r.config.Engines)),
		slog.Int("queries", len(queries)))

	for _, engine := range r.config.Engines {
		for _, query := range queries {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			outcome, err := r.Dork(ctx, session, dork.Encode(query), query, engine, dir)
			if err != nil {
				return summary, err
			}
			summary.Outcomes = append(summary.Outcomes, outcome)
		}
	}

	captured, skipped, _ := summary.Counts()
	log.Info("run finished", slog.Int("captured", captured), slog.Int("skipped", skipped))
	return summary, nil
}

// makeRunDir creates <root>/<unix seconds>_screenshots. It never reuses an
// existing directory.
func (r *Runner) makeRunDir(start time.Time) (string, error) {
	if err := os.MkdirAll(r.config.OutputRoot, defaults.DirPerm); err != nil {
		return "", fmt.Errorf("create output root: %w", err)
	}
	dir := filepath.Join(r.config.OutputRoot, RunDirName(start))
	if err := os.Mkdir(dir, defaults.DirPerm); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrOutputDirExists, dir)
		}
		return "", fmt.Errorf("create run directory: %w", err)
	}
	return dir, nil
}

// RunDirName returns the run directory name for a run started at t.
func RunDirName(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + defaults.RunDirSuffix
}

// Dork captures one query on one engine into dir. An engine without a
// search URL yields a skipped outcome and no page interaction. Capture
// failures are returned wrapped in ErrCaptureFailed.
func (r *Runner) Dork(ctx context.Context, page screenshot.Page, encodedQuery, query string, engine dork.Engine, dir string) (Outcome, error) {
	searchURL, ok := engine.SearchURL(encodedQuery)
	if !ok {
		reason := fmt.Sprintf("search engine %s not supported", engine)
		r.logger.Warn("skipping query", slog.String("engine", engine.String()), slog.String("reason", reason))
		r.printer.Warning(reason)
		r.metrics.Skipped(engine.String())
		return Skipped(engine.String(), query, reason), nil
	}

	ctx, span := tracing.StartCapture(ctx, r.tracer, engine.String(), query, searchURL)
	capturer := screenshot.NewCapturer(page, r.annotator, r.config.Capture, r.logger)
	result, err := capturer.Capture(ctx, searchURL, dir, engine.Label(query))
	if err != nil {
		tracing.End(span, err)
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		r.metrics.Failed(engine.String())
		return Outcome{}, fmt.Errorf("%w: %s: %w", ErrCaptureFailed, engine.Label(query), err)
	}
	tracing.End(span, nil)

	if result.WaitError != "" {
		r.printer.Warning(fmt.Sprintf("An error occurred while waiting for the page %s to load: %s", searchURL, result.WaitError))
	}
	r.printer.Saved(searchURL)
	r.metrics.Captured(engine.String(), result.Duration, result.Size, result.WaitError != "")
	return Captured(engine.String(), query, result), nil
}
