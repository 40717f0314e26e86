package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Printer writes status lines to one writer. Safe for concurrent use.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter returns a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: w}
}

var (
	stdoutOnce    sync.Once
	stdoutPrinter *Printer
)

// Stdout returns the shared printer for standard output.
func Stdout() *Printer {
	stdoutOnce.Do(func() { stdoutPrinter = NewPrinter(os.Stdout) })
	return stdoutPrinter
}

func (p *Printer) line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, SanitizeString(s))
}

// Success prints "[+] message".
func (p *Printer) Success(message string) {
	if IsSilent() {
		return
	}
	p.line(SuccessStyle.Render("[+]") + " " + message)
}

// Warning prints "[!] message".
func (p *Printer) Warning(message string) {
	if IsSilent() {
		return
	}
	p.line(WarningStyle.Render("[!]") + " " + message)
}

// Error prints "[X] message". Errors are printed in silent mode too.
func (p *Printer) Error(message string) {
	p.line(ErrorStyle.Render("[X]") + " " + message)
}

// Info prints "[*] message".
func (p *Printer) Info(message string) {
	if IsSilent() {
		return
	}
	p.line(InfoStyle.Render("[*]") + " " + message)
}

// Saved reports a screenshot written for url.
func (p *Printer) Saved(url string) {
	p.Success("Screenshot saved for " + URLStyle.Render(url))
}

// Summary is the end-of-run overview.
type Summary struct {
	RunID        string
	Target       string
	Dir          string
	Captured     int
	Skipped      int
	WaitFailures int
	Duration     time.Duration
}

// PrintSummary prints the run summary box.
func (p *Printer) PrintSummary(s Summary) {
	if IsSilent() {
		return
	}
	const labelW = 16
	row := func(label, value string) string {
		return "  " + StatLabelStyle.Render(label+strings.Repeat(" ", max(0, labelW-len(label)))) +
			StatValueStyle.Render(value)
	}
	count := func(label, status string, n int) string {
		return "  " + StatLabelStyle.Render(label+strings.Repeat(" ", max(0, labelW-len(label)))) +
			StatusStyle(status).Render(fmt.Sprintf("%d", n))
	}
	divider := DividerStyle.Render("  " + strings.Repeat("-", 48))

	lines := []string{
		"",
		SectionStyle.Render(Icon("📸", ">") + " Run Summary"),
		divider,
		row("Run ID:", s.RunID),
		row("Target:", s.Target),
		row("Directory:", s.Dir),
		divider,
		count("Captured:", "captured", s.Captured),
		count("Skipped:", "skipped", s.Skipped),
		count("Not ready:", "", s.WaitFailures),
		row("Duration:", s.Duration.Round(time.Millisecond).String()),
		divider,
	}
	for _, l := range lines {
		p.line(l)
	}
}
