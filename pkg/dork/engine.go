package dork

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedEngine is returned when an engine name has no search URL.
var ErrUnsupportedEngine = errors.New("dork: unsupported search engine")

// Engine identifies a search engine.
type Engine string

const (
	Google Engine = "google"
	Bing   Engine = "bing"
	Yahoo  Engine = "yahoo"
)

// searchPrefixes maps each engine to its search URL up to the query value.
var searchPrefixes = map[Engine]string{
	Google: "https://www.google.com/search?q=",
	Bing:   "https://www.bing.com/search?q=",
	Yahoo:  "https://search.yahoo.com/search?p=",
}

// Engines returns every supported engine in run order.
func Engines() []Engine {
	return []Engine{Google, Bing, Yahoo}
}

// Supported reports whether e has a search URL.
func (e Engine) Supported() bool {
	_, ok := searchPrefixes[e]
	return ok
}

// SearchURL joins the engine prefix and an already-encoded query.
// ok is false for an unsupported engine.
func (e Engine) SearchURL(encodedQuery string) (u string, ok bool) {
	prefix, ok := searchPrefixes[e]
	if !ok {
		return "", false
	}
	return prefix + encodedQuery, true
}

// Label is the capture label for a query on this engine.
func (e Engine) Label(query string) string {
	return string(e) + "_" + query
}

func (e Engine) String() string {
	return string(e)
}

// ParseEngines parses a comma-separated engine list. Names are trimmed and
// lower-cased; blanks are ignored and duplicates dropped. An empty list
// yields all engines.
func ParseEngines(csv string) ([]Engine, error) {
	var out []Engine
	seen := make(map[Engine]bool)
	for _, part := range strings.Split(csv, ",") {
		e := Engine(strings.ToLower(strings.TrimSpace(part)))
		if e == "" || seen[e] {
			continue
		}
		if !e.Supported() {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, string(e))
		}
		seen[e] = true
		out = append(out, e)
	}
	if len(out) == 0 {
		return Engines(), nil
	}
	return out, nil
}
