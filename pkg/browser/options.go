// Package browser drives a headless Chrome tab over the DevTools protocol.
package browser

import (
	"github.com/chromedp/chromedp"
	"github.com/waftester/dorkshot/pkg/defaults"
)

// Options configures the Chrome process.
type Options struct {
	ExecPath string // Chrome binary; empty lets chromedp search PATH
	Width    int    // Window and viewport width
	Height   int    // Window and viewport height
	Headful  bool   // Show a browser window; the zero value runs headless
}

// DefaultOptions returns a headless 1920x1080 configuration.
func DefaultOptions() Options {
	return Options{
		Width:  defaults.ViewportWidth,
		Height: defaults.ViewportHeight,
	}
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = defaults.ViewportWidth
	}
	if o.Height <= 0 {
		o.Height = defaults.ViewportHeight
	}
	return o
}

// flag is one Chrome command-line switch. Values are bool or string.
type flag struct {
	name  string
	value any
}

// flags lists the switches passed to Chrome, in order.
func (o Options) flags() []flag {
	o = o.withDefaults()
	fs := []flag{
		{"disable-infobars", true},
		{"log-level", "3"},
		{"enable-automation", false},
		{"disable-blink-features", "AutomationControlled"},
		{"disable-gpu", true},
		{"no-sandbox", true},
		{"disable-dev-shm-usage", true},
	}
	if !o.Headful {
		fs = append([]flag{{"headless", true}, {"hide-scrollbars", true}, {"mute-audio", true}}, fs...)
	}
	return fs
}

// allocatorOptions builds the exec allocator options. chromedp's default
// set is not used: its headless switch would ignore Options.Headful.
func (o Options) allocatorOptions() []chromedp.ExecAllocatorOption {
	o = o.withDefaults()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.WindowSize(o.Width, o.Height),
	}
	for _, f := range o.flags() {
		opts = append(opts, chromedp.Flag(f.name, f.value))
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	return opts
}
