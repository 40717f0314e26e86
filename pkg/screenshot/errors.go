package screenshot

import "errors"

// Sentinel errors for capture failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrMissingFontAsset indicates the configured annotation font file
	// does not exist. Annotation cannot proceed without it.
	ErrMissingFontAsset = errors.New("screenshot: missing font asset")

	// ErrMalformedPNG indicates encoded PNG data lacks a leading IHDR chunk.
	ErrMalformedPNG = errors.New("screenshot: malformed PNG")
)
