// Package duration provides canonical time constants for dorkshot.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	waitCtx, cancel := context.WithTimeout(ctx, duration.PageReady)
//
// DO NOT use hardcoded time.Duration values like `10 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// BROWSER/HEADLESS TIMEOUTS
// ============================================================================
//
// Use these for chromedp operations.
// ============================================================================

const (
	// PageReady bounds the wait for the ready selector after navigation (10s)
	PageReady = 10 * time.Second

	// BrowserLaunch bounds starting Chrome and opening the first tab (30s)
	BrowserLaunch = 30 * time.Second

	// BrowserShutdown is how long a graceful close may block before the
	// process tree is killed (5s)
	BrowserShutdown = 5 * time.Second
)

// ============================================================================
// TELEMETRY
// ============================================================================
//
// Use these for the Pushgateway and OTLP exporters.
// ============================================================================

const (
	// TelemetryConnect bounds exporter connection setup (10s)
	TelemetryConnect = 10 * time.Second

	// TelemetryPush bounds a single Pushgateway push (10s)
	TelemetryPush = 10 * time.Second

	// TelemetryShutdown bounds the final span flush (5s)
	TelemetryShutdown = 5 * time.Second
)
