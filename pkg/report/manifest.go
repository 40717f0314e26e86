package report

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/jsonutil"
	"github.com/waftester/dorkshot/pkg/runner"
	"golang.org/x/net/publicsuffix"
)

// Manifest indexes the screenshots of one run.
type Manifest struct {
	RunID             string    `json:"run_id"`
	Tool              string    `json:"tool"`
	Version           string    `json:"version"`
	Target            string    `json:"target"`
	Domain            string    `json:"domain"`
	RegistrableDomain string    `json:"registrable_domain,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	DurationSeconds   float64   `json:"duration_seconds"`
	Directory         string    `json:"directory"`
	Engines           []string  `json:"engines"`
	Queries           []string  `json:"queries"`
	Captured          int       `json:"captured"`
	Skipped           int       `json:"skipped"`
	Entries           []Entry   `json:"entries"`
}

// Entry is one engine/query pair.
type Entry struct {
	Engine          string  `json:"engine"`
	Query           string  `json:"query"`
	Status          string  `json:"status"`
	Reason          string  `json:"reason,omitempty"`
	URL             string  `json:"url,omitempty"`
	File            string  `json:"file,omitempty"` // relative to the run directory
	Width           int     `json:"width,omitzero"`
	Height          int     `json:"height,omitzero"`
	SizeBytes       int64   `json:"size_bytes,omitzero"`
	Murmur3         string  `json:"murmur3,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitzero"`
	NavigateError   string  `json:"navigate_error,omitempty"`
	WaitError       string  `json:"wait_error,omitempty"`
}

// RegistrableDomain returns the eTLD+1 of host, or "" when host has none
// (IP addresses, bare public suffixes, single labels).
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return d
}

// BuildManifest converts a run summary into a manifest.
func BuildManifest(s *runner.Summary) Manifest {
	captured, skipped, _ := s.Counts()
	m := Manifest{
		RunID:             s.RunID,
		Tool:              defaults.ToolName,
		Version:           defaults.Version,
		Target:            s.Target,
		Domain:            s.Domain,
		RegistrableDomain: RegistrableDomain(s.Domain),
		StartedAt:         s.StartedAt,
		FinishedAt:        s.FinishedAt,
		DurationSeconds:   s.Duration().Seconds(),
		Directory:         s.Dir,
		Engines:           s.Engines,
		Queries:           s.Queries,
		Captured:          captured,
		Skipped:           skipped,
		Entries:           make([]Entry, 0, len(s.Outcomes)),
	}
	for _, o := range s.Outcomes {
		e := Entry{
			Engine: o.Engine,
			Query:  o.Query,
			Status: string(o.Status),
			Reason: o.Reason,
		}
		if o.IsCaptured() {
			r := o.Result
			e.URL = r.URL
			e.File = filepath.Base(r.FilePath)
			e.Width = r.Width
			e.Height = r.Height
			e.SizeBytes = r.Size
			e.Murmur3 = r.Hash
			e.DurationSeconds = r.Duration.Seconds()
			e.NavigateError = r.NavigateError
			e.WaitError = r.WaitError
		}
		m.Entries = append(m.Entries, e)
	}
	return m
}

// WriteManifest writes manifest.json into the run directory and returns
// its path.
func WriteManifest(s *runner.Summary) (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("write manifest: run has no output directory")
	}
	path := filepath.Join(s.Dir, defaults.ManifestFile)
	if err := jsonutil.WriteFile(path, BuildManifest(s)); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	if err := jsonutil.ReadFile(path, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
