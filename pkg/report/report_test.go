package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waftester/dorkshot/pkg/runner"
	"github.com/waftester/dorkshot/pkg/screenshot"
)

var started = time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// sampleSummary returns a run with two captures and one skip whose files
// exist under a temp dir.
func sampleSummary(t *testing.T) *runner.Summary {
	t.Helper()
	dir := t.TempDir()
	google := filepath.Join(dir, "google_site_example_com_filetype_txt.png")
	bing := filepath.Join(dir, "bing_site_example_com_filetype_txt.png")
	writePNG(t, google, 120, 90)
	writePNG(t, bing, 80, 140)

	return &runner.Summary{
		RunID:      "2f1c7c1e-8f7a-4a43-b0f4-2b8f3f1e9c11",
		Target:     "www.example.co.uk/",
		Domain:     "www.example.co.uk",
		Dir:        dir,
		Engines:    []string{"google", "bing", "altavista"},
		Queries:    []string{"site:www.example.co.uk filetype:txt"},
		StartedAt:  started,
		FinishedAt: started.Add(12 * time.Second),
		Outcomes: []runner.Outcome{
			runner.Captured("google", "site:www.example.co.uk filetype:txt", screenshot.Result{
				URL:      "https://www.google.com/search?q=site%3Awww.example.co.uk+filetype%3Atxt",
				FilePath: google,
				Width:    120,
				Height:   90,
				Size:     2048,
				Hash:     "00112233aabbccdd",
				Duration: 1500 * time.Millisecond,
			}),
			runner.Captured("bing", "site:www.example.co.uk filetype:txt", screenshot.Result{
				URL:       "https://www.bing.com/search?q=site%3Awww.example.co.uk+filetype%3Atxt",
				FilePath:  bing,
				Width:     80,
				Height:    140,
				WaitError: "context deadline exceeded",
			}),
			runner.Skipped("altavista", "site:www.example.co.uk filetype:txt", "search engine altavista not supported"),
		},
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"www.example.co.uk", "example.co.uk"},
		{"WWW.Example.COM", "example.com"},
		{"https://sub.example.com/", "example.com"},
		{"example.com:8443", "example.com"},
		{"localhost", ""},
		{"127.0.0.1", ""},
		{"[::1]:80", ""},
		{"co.uk", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RegistrableDomain(tt.in))
		})
	}
}

func TestBuildManifest(t *testing.T) {
	s := sampleSummary(t)
	m := BuildManifest(s)

	assert.Equal(t, "dorkshot", m.Tool)
	assert.Equal(t, "example.co.uk", m.RegistrableDomain)
	assert.Equal(t, 2, m.Captured)
	assert.Equal(t, 1, m.Skipped)
	assert.InDelta(t, 12.0, m.DurationSeconds, 0.001)
	require.Len(t, m.Entries, 3)

	g := m.Entries[0]
	assert.Equal(t, "google_site_example_com_filetype_txt.png", g.File)
	assert.Equal(t, "captured", g.Status)
	assert.Equal(t, int64(2048), g.SizeBytes)
	assert.InDelta(t, 1.5, g.DurationSeconds, 0.001)

	assert.Equal(t, "context deadline exceeded", m.Entries[1].WaitError)

	skip := m.Entries[2]
	assert.Equal(t, "skipped", skip.Status)
	assert.Empty(t, skip.File)
	assert.Contains(t, skip.Reason, "altavista")
}

func TestWriteManifest_RoundTrip(t *testing.T) {
	s := sampleSummary(t)
	path, err := WriteManifest(s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "manifest.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"width": 0`, "zero sizes omitted for skips")
	assert.Contains(t, string(raw), `"registrable_domain": "example.co.uk"`)

	got, err := ReadManifest(path)
	require.NoError(t, err)
	want := BuildManifest(s)
	assert.Equal(t, want.RunID, got.RunID)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, want.Entries, got.Entries)
}

func TestWriteManifest_NoDir(t *testing.T) {
	_, err := WriteManifest(&runner.Summary{})
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	s := sampleSummary(t)
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, s, false))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))

	r := bytes.NewReader(raw)
	require.NoError(t, pdfapi.Validate(r, nil))
	_, err := r.Seek(0, 0)
	require.NoError(t, err)

	pages, err := pdfapi.PageCount(r, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, pages, "cover plus one page per capture")

	// uncompressed streams keep Helvetica text as literal bytes
	assert.Contains(t, string(raw), "Dork screenshots: www.example.co.uk")
	assert.Contains(t, string(raw), "Google: site:www.example.co.uk filetype:txt")
	assert.Contains(t, string(raw), "Captured before the page was ready")
}

func TestRenderPDF_MissingScreenshot(t *testing.T) {
	s := sampleSummary(t)
	require.NoError(t, os.Remove(s.Outcomes[1].Result.FilePath))

	err := RenderPDF(&bytes.Buffer{}, s, false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWritePDF(t *testing.T) {
	s := sampleSummary(t)
	path, err := WritePDF(s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "report.pdf"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	pages, err := pdfapi.PageCount(f, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}

func TestFitImage(t *testing.T) {
	w, h := fitImage(200, 100, 100, 100)
	assert.InDelta(t, 100, w, 1e-9)
	assert.InDelta(t, 50, h, 1e-9)

	w, h = fitImage(100, 400, 100, 100)
	assert.InDelta(t, 25, w, 1e-9)
	assert.InDelta(t, 100, h, 1e-9)

	w, h = fitImage(0, 10, 100, 100)
	assert.Zero(t, w)
	assert.Zero(t, h)
}
