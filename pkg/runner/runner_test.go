package runner

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waftester/dorkshot/pkg/dork"
	"github.com/waftester/dorkshot/pkg/metrics"
	"github.com/waftester/dorkshot/pkg/screenshot"
	"github.com/waftester/dorkshot/pkg/ui"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const shotW, shotH = 96, 54

var errBoom = errors.New("boom")

// stubSession is a browser tab that serves a blank screenshot.
type stubSession struct {
	mu         sync.Mutex
	visited    []string
	calls      int
	closed     int
	waitErr    error
	shotErr    error
	onNavigate func(n int)
}

func (s *stubSession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	s.visited = append(s.visited, url)
	s.calls++
	n := len(s.visited)
	s.mu.Unlock()
	if s.onNavigate != nil {
		s.onNavigate(n)
	}
	return ctx.Err()
}

func (s *stubSession) SetZoom(context.Context, int) error {
	s.calls++
	return nil
}

func (s *stubSession) WaitReady(context.Context, string) error {
	s.calls++
	return s.waitErr
}

func (s *stubSession) CaptureScreenshot(context.Context) ([]byte, error) {
	s.calls++
	if s.shotErr != nil {
		return nil, s.shotErr
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, shotW, shotH))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *stubSession) Close() error {
	s.closed++
	return nil
}

func launcherFor(s *stubSession) Launcher {
	return func(context.Context) (Session, error) { return s, nil }
}

var fixedStart = time.Unix(1700000000, 0)

func newTestRunner(t *testing.T, cfg Config, launch Launcher, opts ...Option) (*Runner, *bytes.Buffer) {
	t.Helper()
	ui.SetNoColor(true)
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = t.TempDir()
	}
	var out bytes.Buffer
	opts = append([]Option{WithPrinter(ui.NewPrinter(&out))}, opts...)
	r, err := New(cfg, launch, opts...)
	require.NoError(t, err)
	r.now = func() time.Time { return fixedStart }
	return r, &out
}

func TestRun_EndToEnd(t *testing.T) {
	session := &stubSession{}
	r, out := newTestRunner(t, Config{}, launcherFor(session))

	summary, err := r.Run(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, session.closed, "session released")
	assert.Equal(t, filepath.Join(r.config.OutputRoot, "1700000000_screenshots"), summary.Dir)
	assert.Equal(t, []string{"google", "bing", "yahoo"}, summary.Engines)
	require.Len(t, summary.Outcomes, 9)
	assert.NotEmpty(t, summary.RunID)

	var want []string
	for _, e := range []string{"google", "bing", "yahoo"} {
		for _, f := range []string{"filetype_txt", "filetype_pdf", "inurl_admin"} {
			want = append(want, e+"_site_example_com_"+f+".png")
		}
	}
	entries, err := os.ReadDir(summary.Dir)
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(t, want, got)

	for _, o := range summary.Outcomes {
		require.True(t, o.IsCaptured())
		assert.Equal(t, shotW, o.Result.Width)
		assert.Equal(t, shotH+50, o.Result.Height)
	}

	assert.Equal(t, "https://www.google.com/search?q=site%3Aexample.com+filetype%3Atxt", session.visited[0])
	assert.Equal(t, "https://search.yahoo.com/search?p=site%3Aexample.com+inurl%3Aadmin", session.visited[8])
	assert.Equal(t, 9, strings.Count(out.String(), "Screenshot saved for "))

	captured, skipped, waits := summary.Counts()
	assert.Equal(t, 9, captured)
	assert.Zero(t, skipped)
	assert.Zero(t, waits)
	assert.Len(t, summary.Files(), 9)
}

func TestRun_TrailingSlash(t *testing.T) {
	plain := &stubSession{}
	r, _ := newTestRunner(t, Config{Engines: []dork.Engine{dork.Google}}, launcherFor(plain))
	a, err := r.Run(context.Background(), "example.com")
	require.NoError(t, err)

	slash := &stubSession{}
	r, _ = newTestRunner(t, Config{Engines: []dork.Engine{dork.Google}}, launcherFor(slash))
	b, err := r.Run(context.Background(), "example.com/")
	require.NoError(t, err)

	assert.Equal(t, a.Queries, b.Queries)
	assert.Equal(t, plain.visited, slash.visited)
	assert.Equal(t, "example.com/", b.Target)
	assert.Equal(t, "example.com", b.Domain)
}

func TestDork_UnsupportedEngine(t *testing.T) {
	session := &stubSession{}
	r, out := newTestRunner(t, Config{}, launcherFor(session))

	outcome, err := r.Dork(context.Background(), session, "q", "q", dork.Engine("duckduckgo"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, outcome.Status)
	assert.Equal(t, "duckduckgo", outcome.Engine)
	assert.Contains(t, outcome.Reason, "duckduckgo")
	assert.Zero(t, session.calls, "no page interaction")
	assert.Contains(t, out.String(), "search engine duckduckgo not supported")
}

func TestRun_UnsupportedEngineIsSkipped(t *testing.T) {
	session := &stubSession{}
	r, _ := newTestRunner(t, Config{Engines: []dork.Engine{"altavista", dork.Bing}}, launcherFor(session))

	summary, err := r.Run(context.Background(), "example.com")
	require.NoError(t, err)
	captured, skipped, _ := summary.Counts()
	assert.Equal(t, 3, captured)
	assert.Equal(t, 3, skipped)
	assert.Len(t, session.visited, 3)
}

func TestRun_Templates(t *testing.T) {
	session := &stubSession{}
	r, _ := newTestRunner(t, Config{
		Engines:   []dork.Engine{dork.Google},
		Templates: []string{`site:{{ .Domain }} ext:{{ "env" }}`},
	}, launcherFor(session))

	summary, err := r.Run(context.Background(), "example.com")
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 4)
	assert.Equal(t, "site:example.com ext:env", summary.Outcomes[3].Query)
	assert.FileExists(t, filepath.Join(summary.Dir, "google_site_example_com_ext_env.png"))
}

func TestRun_BadTemplate(t *testing.T) {
	launched := false
	r, _ := newTestRunner(t, Config{Templates: []string{"{{ .Nope }}"}}, func(context.Context) (Session, error) {
		launched = true
		return &stubSession{}, nil
	})

	summary, err := r.Run(context.Background(), "example.com")
	assert.Error(t, err)
	assert.Nil(t, summary)
	assert.False(t, launched)
}

func TestRun_WaitFailureContinues(t *testing.T) {
	session := &stubSession{waitErr: context.DeadlineExceeded}
	r, out := newTestRunner(t, Config{Engines: []dork.Engine{dork.Yahoo}}, launcherFor(session))

	summary, err := r.Run(context.Background(), "example.com")
	require.NoError(t, err)
	_, _, waits := summary.Counts()
	assert.Equal(t, 3, waits)
	assert.Len(t, summary.Files(), 3)
	assert.Contains(t, out.String(), "An error occurred while waiting for the page https://search.yahoo.com/search?p=")

	// warning precedes the saved line
	first := strings.Index(out.String(), "[!]")
	saved := strings.Index(out.String(), "[+]")
	assert.Less(t, first, saved)
}

func TestRun_CaptureFailureReleasesSession(t *testing.T) {
	session := &stubSession{shotErr: errBoom}
	r, _ := newTestRunner(t, Config{}, launcherFor(session))

	summary, err := r.Run(context.Background(), "example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCaptureFailed)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, session.closed)
	require.NotNil(t, summary)
	assert.Empty(t, summary.Outcomes)
	assert.False(t, summary.FinishedAt.IsZero())
}

func TestRun_LaunchFailure(t *testing.T) {
	root := t.TempDir()
	r, _ := newTestRunner(t, Config{OutputRoot: root}, func(context.Context) (Session, error) {
		return nil, errBoom
	})

	_, err := r.Run(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrBrowserLaunch)
	assert.ErrorIs(t, err, errBoom)
	assert.NoDirExists(t, filepath.Join(root, RunDirName(fixedStart)))
}

func TestRun_OutputDirExists(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "1700000000_screenshots"), 0o755))

	session := &stubSession{}
	r, _ := newTestRunner(t, Config{OutputRoot: root}, launcherFor(session))

	_, err := r.Run(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrOutputDirExists)
	assert.Equal(t, 1, session.closed)
	assert.Zero(t, session.calls)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := &stubSession{}
	session.onNavigate = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	r, _ := newTestRunner(t, Config{}, launcherFor(session))

	summary, err := r.Run(ctx, "example.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, session.closed)
	assert.Len(t, summary.Outcomes, 1)
}

func TestNew_MissingFont(t *testing.T) {
	cfg := Config{Capture: screenshot.Config{FontPath: filepath.Join(t.TempDir(), "MartianMono-SemiBold.ttf")}}
	_, err := New(cfg, func(context.Context) (Session, error) {
		t.Fatal("launcher must not run")
		return nil, nil
	})
	assert.ErrorIs(t, err, screenshot.ErrMissingFontAsset)
}

func TestRun_MetricsAndSpans(t *testing.T) {
	rec := metrics.NewRecorder()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	session := &stubSession{}
	r, _ := newTestRunner(t, Config{Engines: []dork.Engine{dork.Google, "altavista"}}, launcherFor(session),
		WithMetrics(rec), WithTracer(tp.Tracer("test")))

	_, err := r.Run(context.Background(), "example.com")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(rec.Registry(), "dorkshot_captures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ended := spans.Ended()
	require.Len(t, ended, 4, "three captures and the run")
	assert.Equal(t, "dorkshot.run", ended[3].Name())
	for _, s := range ended[:3] {
		assert.Equal(t, "dorkshot.capture", s.Name())
		assert.Equal(t, ended[3].SpanContext().SpanID(), s.Parent().SpanID())
	}
}

func TestRunDirName(t *testing.T) {
	assert.Equal(t, "1700000000_screenshots", RunDirName(fixedStart))
}
