package runner

import (
	"time"

	"github.com/waftester/dorkshot/pkg/screenshot"
)

// Status tags an Outcome.
type Status string

const (
	StatusCaptured Status = "captured"
	StatusSkipped  Status = "skipped"
)

// Outcome is the result of one (engine, query) pair: either a captured
// screenshot or a skip with its reason.
type Outcome struct {
	Status Status
	Engine string
	Query  string
	Reason string            // set when skipped
	Result screenshot.Result // set when captured
}

// Captured builds a captured outcome.
func Captured(engine, query string, result screenshot.Result) Outcome {
	return Outcome{Status: StatusCaptured, Engine: engine, Query: query, Result: result}
}

// Skipped builds a skipped outcome.
func Skipped(engine, query, reason string) Outcome {
	return Outcome{Status: StatusSkipped, Engine: engine, Query: query, Reason: reason}
}

// IsCaptured reports whether a screenshot was saved.
func (o Outcome) IsCaptured() bool {
	return o.Status == StatusCaptured
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	RunID      string
	Target     string // as given on the command line
	Domain     string // normalized
	Dir        string
	Engines    []string
	Queries    []string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
}

// Duration returns the run wall time.
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Counts returns the number of captured and skipped outcomes and how many
// captures were taken before the page reported ready.
func (s *Summary) Counts() (captured, skipped, waitFailures int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusCaptured:
			captured++
			if o.Result.WaitError != "" {
				waitFailures++
			}
		case StatusSkipped:
			skipped++
		}
	}
	return captured, skipped, waitFailures
}

// Files returns the paths of all saved screenshots in run order.
func (s *Summary) Files() []string {
	var files []string
	for _, o := range s.Outcomes {
		if o.IsCaptured() {
			files = append(files, o.Result.FilePath)
		}
	}
	return files
}
