// Command dorkshot screenshots search-engine dork results for a domain.
//
//	dorkshot [flags] <target>
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/waftester/dorkshot/pkg/browser"
	"github.com/waftester/dorkshot/pkg/config"
	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/dork"
	"github.com/waftester/dorkshot/pkg/duration"
	"github.com/waftester/dorkshot/pkg/metrics"
	"github.com/waftester/dorkshot/pkg/report"
	"github.com/waftester/dorkshot/pkg/runner"
	"github.com/waftester/dorkshot/pkg/screenshot"
	"github.com/waftester/dorkshot/pkg/tracing"
	"github.com/waftester/dorkshot/pkg/ui"
)

func main() {
	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		// No target prints usage and exits cleanly.
		if errors.Is(err, config.ErrMissingRequired) || errors.Is(err, flag.ErrHelp) {
			os.Exit(defaults.ExitSuccess)
		}
		exitWithError("%v", err)
	}

	ui.SetSilent(cfg.Silent)
	ui.SetNoColor(cfg.NoColor)
	logger := newLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ui.PrintBanner()
	ui.FprintConfig(os.Stderr, configLines(cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := execute(ctx, cfg, browserLauncher(cfg, logger), logger, ui.Stdout()); err != nil {
		cancel()
		exitWithError("%v", err)
	}
}

// newLogger returns a text logger on w: debug with verbose, warnings
// otherwise so it does not repeat the status lines.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func configLines(cfg *config.Config) []ui.ConfigLine {
	engines := "google, bing, yahoo"
	if len(cfg.Engines) > 0 {
		engines = strings.Join(cfg.Engines, ", ")
	}
	lines := []ui.ConfigLine{
		{Name: "Target", Value: cfg.Target},
		{Name: "Engines", Value: engines},
		{Name: "Output", Value: cfg.Output},
		{Name: "Page wait", Value: cfg.WaitTimeout().String()},
		{Name: "Extra dorks", Value: countOrEmpty(len(cfg.Templates))},
		{Name: "Config", Value: cfg.ConfigFile},
		{Name: "Pushgateway", Value: cfg.Pushgateway},
		{Name: "OTLP endpoint", Value: cfg.OTelEndpoint},
	}
	var artifacts []string
	if cfg.Manifest {
		artifacts = append(artifacts, "manifest")
	}
	if cfg.PDF {
		artifacts = append(artifacts, "pdf")
	}
	return append(lines, ui.ConfigLine{Name: "Artifacts", Value: strings.Join(artifacts, ", ")})
}

func countOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// browserLauncher starts headless Chrome for a run.
func browserLauncher(cfg *config.Config, logger *slog.Logger) runner.Launcher {
	opts := browser.DefaultOptions()
	opts.ExecPath = cfg.Chrome
	return func(ctx context.Context) (runner.Session, error) {
		s, err := browser.Launch(ctx, opts, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// execute runs one dork run and writes its artifacts and telemetry. The
// artifacts of a partial run are still written when a run directory exists.
func execute(ctx context.Context, cfg *config.Config, launch runner.Launcher, logger *slog.Logger, printer *ui.Printer) error {
	engines, err := cfg.EngineList()
	if err != nil {
		return err
	}

	tp, err := tracing.New(tracing.Options{Endpoint: cfg.OTelEndpoint, Insecure: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("trace flush failed", slog.String("error", err.Error()))
		}
	}()

	capture := screenshot.DefaultConfig()
	capture.FontPath = cfg.Font
	capture.ReadyTimeout = cfg.WaitTimeout()

	rec := metrics.NewRecorder()
	r, err := runner.New(runner.Config{
		OutputRoot: cfg.Output,
		Engines:    engines,
		Templates:  cfg.Templates,
		Capture:    capture,
	}, launch,
		runner.WithLogger(logger),
		runner.WithPrinter(printer),
		runner.WithMetrics(rec),
		runner.WithTracer(tp.Tracer()),
	)
	if err != nil {
		return err
	}

	summary, runErr := r.Run(ctx, cfg.Target)
	if summary == nil {
		return runErr
	}

	if summary.Dir != "" {
		writeArtifacts(cfg, summary, printer)
	}

	if cfg.Pushgateway != "" {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), duration.TelemetryPush)
		err := rec.Push(pctx, metrics.PushOptions{
			URL:      cfg.Pushgateway,
			Grouping: map[string]string{"target": dork.NormalizeDomain(cfg.Target)},
		})
		cancel()
		if err != nil {
			printer.Warning(err.Error())
		}
	}

	captured, skipped, waits := summary.Counts()
	printer.PrintSummary(ui.Summary{
		RunID:        summary.RunID,
		Target:       summary.Domain,
		Dir:          summary.Dir,
		Captured:     captured,
		Skipped:      skipped,
		WaitFailures: waits,
		Duration:     summary.Duration(),
	})
	return runErr
}

func writeArtifacts(cfg *config.Config, summary *runner.Summary, printer *ui.Printer) {
	if cfg.Manifest {
		if path, err := report.WriteManifest(summary); err != nil {
			printer.Error(err.Error())
		} else {
			printer.Info("Manifest written to " + path)
		}
	}
	if cfg.PDF && len(summary.Files()) > 0 {
		if path, err := report.WritePDF(summary); err != nil {
			printer.Error(err.Error())
		} else {
			printer.Info("Contact sheet written to " + path)
		}
	}
}
