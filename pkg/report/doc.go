// Package report writes the optional artifacts of a run next to its
// screenshots.
//
// The package is organized by logical concern across multiple files:
//
// # Run Manifest (manifest.go)
//
// Manifest, Entry, BuildManifest, WriteManifest, ReadManifest.
// A JSON index of the run: run ID, target, normalized and registrable
// domain, timing, and one entry per engine/query pair with the file name,
// dimensions, size, content hash and any readiness failure.
//
// # Contact Sheet (pdf.go)
//
// WritePDF, RenderPDF. A PDF with a cover page summarizing the run and one
// page per captured screenshot, scaled to the page width.
package report
