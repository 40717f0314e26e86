package dork

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateData is the data passed to extra dork templates.
type TemplateData struct {
	Domain string
}

// ParseTemplate compiles one dork template with sprig functions.
func ParseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("dork template %q: %w", name, err)
	}
	return tmpl, nil
}

// Render executes extra dork templates against domain, in order. Rendered
// queries are whitespace-trimmed; a template rendering to an empty string
// is an error.
//
//	site:{{ .Domain }} ext:{{ "env" }}
//	site:{{ .Domain | lower }} intitle:"index of"
func Render(templates []string, domain string) ([]string, error) {
	out := make([]string, 0, len(templates))
	data := TemplateData{Domain: domain}
	for i, text := range templates {
		tmpl, err := ParseTemplate(fmt.Sprintf("dork[%d]", i), text)
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, data); err != nil {
			return nil, fmt.Errorf("dork template %d: %w", i, err)
		}
		q := strings.TrimSpace(b.String())
		if q == "" {
			return nil, fmt.Errorf("dork template %d rendered an empty query", i)
		}
		out = append(out, q)
	}
	return out, nil
}

// Queries returns the fixed dork set followed by the rendered extras.
func Queries(domain string, extra []string) ([]string, error) {
	rendered, err := Render(extra, domain)
	if err != nil {
		return nil, err
	}
	return append(Build(domain), rendered...), nil
}
