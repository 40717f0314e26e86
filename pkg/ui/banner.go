// Package ui renders dorkshot's console output: banner, status lines and
// the run summary.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/waftester/dorkshot/pkg/defaults"
)

// Version information - these can be overridden at build time via ldflags:
// go build -ldflags "-X github.com/waftester/dorkshot/pkg/ui.Commit=abc123"
var (
	Version = defaults.Version
	Commit  = "dev"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses everything but errors)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

const bannerArt = `
     __           __        __          __
 ___/ /__  ____  / /__ ___ / /  ___  __/ /_
/ _  / _ \/ __/ /  '_/(_-</ _ \/ _ \/_  __/
\_,_/\___/_/   /_/\_\/___/_//_/\___/ /_/
`

const bannerSeparator = "________________________________________________"

// PrintBanner writes the banner and version to stderr.
func PrintBanner() {
	FprintBanner(os.Stderr)
}

// FprintBanner writes the banner and version to w.
func FprintBanner(w io.Writer) {
	if IsSilent() {
		return
	}
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "                       v%s\n\n", VersionStyle.Render(Version))
}

// ConfigLine is one row of the configuration banner.
type ConfigLine struct {
	Name  string
	Value string
}

// FprintConfig writes the run configuration to w, ffuf style:
//
//	:: Target               : example.com
func FprintConfig(w io.Writer, lines []ConfigLine) {
	if IsSilent() {
		return
	}
	for _, l := range lines {
		if l.Value == "" {
			continue
		}
		fmt.Fprintf(w, " :: %-20s : %s\n", ConfigLabelStyle.Render(l.Name), ConfigValueStyle.Render(l.Value))
	}
	fmt.Fprintf(w, "%s\n\n", DividerStyle.Render(bannerSeparator))
}
