// Package screenshot captures annotated screenshots of browser pages.
package screenshot

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spaolacci/murmur3"
	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/duration"
)

// Page is the part of a browser tab a capture drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	SetZoom(ctx context.Context, percent int) error
	WaitReady(ctx context.Context, selector string) error
	CaptureScreenshot(ctx context.Context) ([]byte, error)
}

// Config configures capture and annotation
type Config struct {
	ZoomPercent   int           // Applied to document.body after navigation
	ReadySelector string        // Element that marks the page as loaded
	ReadyTimeout  time.Duration // Upper bound for the readiness wait
	BandHeight    int           // Header band height in pixels
	FontPath      string        // Annotation font; empty uses the embedded face
	FontSize      float64       // Annotation font size in pixels
	TextColor     color.Color   // Annotation text colour
	DPI           int           // Written to the PNG pHYs chunk
}

// DefaultConfig returns the standard capture settings
func DefaultConfig() Config {
	return Config{
		ZoomPercent:   defaults.ZoomPercent,
		ReadySelector: defaults.ReadySelector,
		ReadyTimeout:  duration.PageReady,
		BandHeight:    defaults.BandHeight,
		FontSize:      defaults.FontSize,
		TextColor:     color.RGBA{R: 0xff, A: 0xff},
		DPI:           defaults.DPI,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ZoomPercent <= 0 {
		c.ZoomPercent = d.ZoomPercent
	}
	if c.ReadySelector == "" {
		c.ReadySelector = d.ReadySelector
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = d.ReadyTimeout
	}
	if c.BandHeight <= 0 {
		c.BandHeight = d.BandHeight
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.TextColor == nil {
		c.TextColor = d.TextColor
	}
	if c.DPI <= 0 {
		c.DPI = d.DPI
	}
	return c
}

// Result represents one saved screenshot
type Result struct {
	URL           string        `json:"url"`
	Label         string        `json:"label"`
	FilePath      string        `json:"file_path"`
	Width         int           `json:"width"`
	Height        int           `json:"height"`
	Size          int64         `json:"size_bytes"`
	Hash          string        `json:"murmur3"`
	Duration      time.Duration `json:"-"`
	Timestamp     time.Time     `json:"timestamp"`
	NavigateError string        `json:"navigate_error,omitempty"`
	WaitError     string        `json:"wait_error,omitempty"`
}

// Capturer drives one page through navigate, zoom, wait, capture, annotate.
type Capturer struct {
	page      Page
	config    Config
	annotator *Annotator
	logger    *slog.Logger
}

// NewCapturer creates a capturer over page. A nil logger uses slog.Default().
func NewCapturer(page Page, annotator *Annotator, config Config, logger *slog.Logger) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{
		page:      page,
		config:    config.withDefaults(),
		annotator: annotator,
		logger:    logger,
	}
}

// FilePath returns where a capture with label is written inside dir.
func FilePath(dir, label string) string {
	return filepath.Join(dir, SanitizeFilename(label)+defaults.ImageExt)
}

// Capture navigates to url, screenshots the viewport into
// dir/<sanitized label>.png and annotates the file with the URL.
//
// Navigation, zoom and readiness failures are logged and recorded on the
// result; the page is captured in whatever state it reached. Screenshot,
// write and annotation failures are returned. Context cancellation is
// always returned.
func (c *Capturer) Capture(ctx context.Context, url, dir, label string) (Result, error) {
	start := time.Now()
	result := Result{
		URL:       url,
		Label:     label,
		FilePath:  FilePath(dir, label),
		Timestamp: start,
	}
	log := c.logger.With(slog.String("url", url))

	if err := c.page.Navigate(ctx, url); err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.NavigateError = err.Error()
		log.Warn("navigation failed, capturing current page", slog.String("error", err.Error()))
	}

	if err := c.page.SetZoom(ctx, c.config.ZoomPercent); err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		log.Debug("zoom not applied", slog.String("error", err.Error()))
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.config.ReadyTimeout)
	err := c.page.WaitReady(waitCtx, c.config.ReadySelector)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.WaitError = err.Error()
		log.Warn("page not ready, capturing anyway",
			slog.String("selector", c.config.ReadySelector),
			slog.Duration("timeout", c.config.ReadyTimeout),
			slog.String("error", err.Error()))
	}

	data, err := c.page.CaptureScreenshot(ctx)
	if err != nil {
		return result, fmt.Errorf("capture %s: %w", url, err)
	}
	if err := os.WriteFile(result.FilePath, data, defaults.FilePerm); err != nil {
		return result, fmt.Errorf("save screenshot: %w", err)
	}

	annotated, err := c.annotator.AnnotateFile(result.FilePath, defaults.TextPrefix+url)
	if err != nil {
		return result, fmt.Errorf("annotate %s: %w", result.FilePath, err)
	}

	result.Width = annotated.Width
	result.Height = annotated.Height
	result.Size = int64(len(annotated.Data))
	result.Hash = fmt.Sprintf("%016x", murmur3.Sum64(annotated.Data))
	result.Duration = time.Since(start)

	log.Debug("screenshot saved",
		slog.String("file", result.FilePath),
		slog.Int("width", result.Width),
		slog.Int("height", result.Height),
		slog.Duration("took", result.Duration))
	return result, nil
}
