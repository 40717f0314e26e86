package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waftester/dorkshot/pkg/config"
	"github.com/waftester/dorkshot/pkg/report"
	"github.com/waftester/dorkshot/pkg/runner"
	"github.com/waftester/dorkshot/pkg/ui"
)

type blankPage struct {
	closed bool
}

func (p *blankPage) Navigate(ctx context.Context, _ string) error { return ctx.Err() }
func (p *blankPage) SetZoom(context.Context, int) error { return nil }
func (p *blankPage) WaitReady(context.Context, string) error { return nil }
func (p *blankPage) Close() error { p.closed = true; return nil }

func (p *blankPage) CaptureScreenshot(context.Context) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 36)))
	return buf.Bytes(), err
}

func testConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	args = append([]string{"-o", t.TempDir()}, args...)
	cfg, err := config.Parse(append(args, "example.com"), &bytes.Buffer{})
	require.NoError(t, err)
	return cfg
}

func quietLogger() *slog.Logger {
	return newLogger(&bytes.Buffer{}, false)
}

func TestExecute_Artifacts(t *testing.T) {
	ui.SetNoColor(true)

	var (
		mu    sync.Mutex
		paths []string
	)
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	cfg := testConfig(t, "-manifest", "-pdf", "-engines", "google,bing", "-pushgateway", gw.URL)
	page := &blankPage{}
	var out bytes.Buffer

	err := execute(context.Background(), cfg, func(context.Context) (runner.Session, error) {
		return page, nil
	}, quietLogger(), ui.NewPrinter(&out))
	require.NoError(t, err)
	assert.True(t, page.closed)

	dirs, err := filepath.Glob(filepath.Join(cfg.Output, "*_screenshots"))
	require.NoError(t, err)
	require.Len(t, dirs, 1)

	pngs, err := filepath.Glob(filepath.Join(dirs[0], "*.png"))
	require.NoError(t, err)
	assert.Len(t, pngs, 6)

	m, err := report.ReadManifest(filepath.Join(dirs[0], "manifest.json"))
	require.NoError(t, err)
	assert.Equal(t, 6, m.Captured)
	assert.Equal(t, "example.com", m.RegistrableDomain)
	assert.FileExists(t, filepath.Join(dirs[0], "report.pdf"))

	mu.Lock()
	assert.Equal(t, []string{"PUT /metrics/job/dorkshot/target/example.com"}, paths)
	mu.Unlock()

	assert.Contains(t, out.String(), "Manifest written to ")
	assert.Contains(t, out.String(), "Contact sheet written to ")
	assert.Contains(t, out.String(), "Run Summary")
}

func TestExecute_LaunchFailure(t *testing.T) {
	ui.SetNoColor(true)
	cfg := testConfig(t, "-manifest")
	boom := errors.New("chrome not found")

	var out bytes.Buffer
	err := execute(context.Background(), cfg, func(context.Context) (runner.Session, error) {
		return nil, boom
	}, quietLogger(), ui.NewPrinter(&out))
	assert.ErrorIs(t, err, runner.ErrBrowserLaunch)
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(cfg.Output)
	require.NoError(t, err)
	assert.Empty(t, entries, "no run directory, no manifest")
}

func TestExecute_PushFailureIsWarning(t *testing.T) {
	ui.SetNoColor(true)
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gw.Close()

	cfg := testConfig(t, "-engines", "yahoo", "-pushgateway", gw.URL)
	var out bytes.Buffer
	err := execute(context.Background(), cfg, func(context.Context) (runner.Session, error) {
		return &blankPage{}, nil
	}, quietLogger(), ui.NewPrinter(&out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[!] push metrics to "+gw.URL)
}

func TestConfigLines(t *testing.T) {
	cfg := testConfig(t, "-pdf", "-engines", "bing")
	got := map[string]string{}
	for _, l := range configLines(cfg) {
		got[l.Name] = l.Value
	}
	assert.Equal(t, "example.com", got["Target"])
	assert.Equal(t, "bing", got["Engines"])
	assert.Equal(t, "10s", got["Page wait"])
	assert.Equal(t, "pdf", got["Artifacts"])
	assert.Empty(t, got["Extra dorks"])
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false).Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}
