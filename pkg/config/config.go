// Package config assembles dorkshot settings from an optional YAML file and
// command-line flags. Flags given explicitly win over the file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/dork"
	"github.com/waftester/dorkshot/pkg/duration"
	"gopkg.in/yaml.v3"
)

// Config holds all CLI configuration options
type Config struct {
	// Target settings
	Target string `yaml:"-"` // Positional argument

	// Capture settings
	Output    string   `yaml:"output"`    // Root for the run directory (default: .)
	Engines   []string `yaml:"engines"`   // Subset of google, bing, yahoo (empty = all)
	Templates []string `yaml:"templates"` // Extra dork templates, {{ .Domain }} is the target
	Font      string   `yaml:"font"`      // Annotation font file (empty = embedded)
	Chrome    string   `yaml:"chrome"`    // Chrome executable (empty = auto-detect)
	Wait      int      `yaml:"wait"`      // Readiness wait in seconds (default: 10)

	// Artifacts
	Manifest bool `yaml:"manifest"` // Write manifest.json
	PDF      bool `yaml:"pdf"`      // Write report.pdf

	// Telemetry
	Pushgateway  string `yaml:"pushgateway"`   // Prometheus Pushgateway URL
	OTelEndpoint string `yaml:"otel_endpoint"` // OTLP gRPC endpoint

	// Output settings
	Verbose bool `yaml:"verbose"`  // Debug logging
	Silent  bool `yaml:"silent"`   // No banner or status lines
	NoColor bool `yaml:"no_color"` // Disable colored output

	ConfigFile string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Output: ".",
		Wait:   int(duration.PageReady / time.Second),
	}
}

// Load reads a YAML config file over the defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	cfg.ConfigFile = path
	return cfg, nil
}

// Usage prints the command synopsis and flag defaults.
func Usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] <target>\n\nFlags:\n", defaults.ToolName)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// Parse parses command line arguments and returns Config. Without a target
// it prints usage to stderr and returns ErrMissingRequired. -h returns
// flag.ErrHelp.
func Parse(args []string, stderr io.Writer) (*Config, error) {
	fs := flag.NewFlagSet(defaults.ToolName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFile string
		fl         = Default()
		engines    string
		templates  stringSlice
	)

	// === INPUT ===
	fs.StringVar(&configFile, "config", "", "YAML config file")
	fs.StringVar(&configFile, "c", "", "Config file (alias)")

	// === CAPTURE ===
	fs.StringVar(&fl.Output, "output", fl.Output, "Root directory for the run directory")
	fs.StringVar(&fl.Output, "o", fl.Output, "Output root (alias)")
	fs.StringVar(&engines, "engines", "", "Comma-separated engines: google,bing,yahoo (default all)")
	fs.StringVar(&engines, "e", "", "Engines (alias)")
	fs.Var(&templates, "dork", "Extra dork template, e.g. 'site:{{ .Domain }} ext:env' (repeatable)")
	fs.StringVar(&fl.Font, "font", "", "TrueType/OpenType font for the URL annotation")
	fs.StringVar(&fl.Chrome, "chrome", "", "Chrome executable path")
	fs.IntVar(&fl.Wait, "wait", fl.Wait, "Seconds to wait for each page to load")

	// === ARTIFACTS ===
	fs.BoolVar(&fl.Manifest, "manifest", false, "Write manifest.json into the run directory")
	fs.BoolVar(&fl.PDF, "pdf", false, "Write a report.pdf contact sheet into the run directory")

	// === TELEMETRY ===
	fs.StringVar(&fl.Pushgateway, "pushgateway", "", "Prometheus Pushgateway URL for run metrics")
	fs.StringVar(&fl.OTelEndpoint, "otel-endpoint", "", "OTLP gRPC endpoint for traces")

	// === OUTPUT ===
	fs.BoolVar(&fl.Verbose, "verbose", false, "Debug logging")
	fs.BoolVar(&fl.Verbose, "v", false, "Verbose (alias)")
	fs.BoolVar(&fl.Silent, "silent", false, "Silent mode - no banner or status lines")
	fs.BoolVar(&fl.Silent, "s", false, "Silent (alias)")
	fs.BoolVar(&fl.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&fl.NoColor, "nc", false, "No color (alias)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			Usage(stderr, fs)
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg := Default()
	if configFile != "" {
		loaded, err := Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Explicit flags override the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output", "o":
			cfg.Output = fl.Output
		case "engines", "e":
			cfg.Engines = splitList(engines)
		case "dork":
			cfg.Templates = append(cfg.Templates, templates...)
		case "font":
			cfg.Font = fl.Font
		case "chrome":
			cfg.Chrome = fl.Chrome
		case "wait":
			cfg.Wait = fl.Wait
		case "manifest":
			cfg.Manifest = fl.Manifest
		case "pdf":
			cfg.PDF = fl.PDF
		case "pushgateway":
			cfg.Pushgateway = fl.Pushgateway
		case "otel-endpoint":
			cfg.OTelEndpoint = fl.OTelEndpoint
		case "verbose", "v":
			cfg.Verbose = fl.Verbose
		case "silent", "s":
			cfg.Silent = fl.Silent
		case "no-color", "nc":
			cfg.NoColor = fl.NoColor
		}
	})

	cfg.Target = strings.TrimSpace(fs.Arg(0))
	if cfg.Target == "" {
		Usage(stderr, fs)
		return nil, ErrMissingRequired
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("%w: unexpected arguments after target: %v", ErrInvalidConfig, fs.Args()[1:])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values. All failures wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if _, err := c.EngineList(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Wait <= 0 {
		return fmt.Errorf("%w: wait must be positive, got %d", ErrInvalidConfig, c.Wait)
	}
	for i, text := range c.Templates {
		if _, err := dork.ParseTemplate(fmt.Sprintf("dork[%d]", i), text); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.Pushgateway != "" {
		u, err := url.Parse(c.Pushgateway)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: pushgateway must be an absolute URL, got %q", ErrInvalidConfig, c.Pushgateway)
		}
	}
	return nil
}

// EngineList returns the selected engines in run order.
func (c *Config) EngineList() ([]dork.Engine, error) {
	return dork.ParseEngines(strings.Join(c.Engines, ","))
}

// WaitTimeout is the per-page readiness bound.
func (c *Config) WaitTimeout() time.Duration {
	if c.Wait <= 0 {
		return duration.PageReady
	}
	return time.Duration(c.Wait) * time.Second
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// stringSlice is a repeatable string flag.
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}
