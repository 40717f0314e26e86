// Package defaults provides canonical default values for dorkshot.
// This is the SINGLE SOURCE OF TRUTH for capture geometry, annotation
// styling and output naming.
//
// Usage:
//
//	cfg.ViewportWidth = defaults.ViewportWidth
//	dir := fmt.Sprintf("%d%s", time.Now().Unix(), defaults.RunDirSuffix)
//
// DO NOT hardcode values like `1920` or `50` in capture code.
// Reference the appropriate constant from this package instead.
package defaults

// ToolName is used for service names, tracer names and the banner.
const ToolName = "dorkshot"

// Version is the current dorkshot version
const Version = "1.2.0"

// ============================================================================
// BROWSER VIEWPORT
// ============================================================================

const (
	// ViewportWidth is the emulated browser width in CSS pixels (1920)
	ViewportWidth = 1920

	// ViewportHeight is the emulated browser height in CSS pixels (1080)
	ViewportHeight = 1080

	// ZoomPercent is applied to document.body after navigation (150)
	ZoomPercent = 150

	// ReadySelector is the element whose presence marks a page as loaded
	ReadySelector = "body"
)

// ============================================================================
// ANNOTATION
// ============================================================================
//
// Every screenshot gets a black band on top carrying the request URL.
// ============================================================================

const (
	// BandHeight is the height of the black header band in pixels (50)
	BandHeight = 50

	// FontSize is the annotation font size in pixels (14)
	FontSize = 14

	// TextX and TextY are the top-left of the URL text inside the band
	TextX = 10
	TextY = 10

	// TextPrefix precedes the URL in the band
	TextPrefix = "URL: "

	// DPI is written into the PNG pHYs chunk on both axes (1000)
	DPI = 1000
)

// ============================================================================
// OUTPUT NAMING
// ============================================================================

const (
	// RunDirSuffix follows the unix timestamp in the run directory name
	RunDirSuffix = "_screenshots"

	// ImageExt is the screenshot file extension
	ImageExt = ".png"

	// ManifestFile is written into the run directory with -manifest
	ManifestFile = "manifest.json"

	// ReportFile is written into the run directory with -pdf
	ReportFile = "report.pdf"

	// DirPerm and FilePerm are used for everything dorkshot creates
	DirPerm  = 0o755
	FilePerm = 0o644
)
