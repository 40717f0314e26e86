// Package dork builds search-engine dork queries for a target domain and
// turns them into search URLs.
package dork

import (
	"net/url"
	"strings"
)

// Filters scoping the fixed dork set, in query order.
const (
	FilterText  = "filetype:txt"
	FilterPDF   = "filetype:pdf"
	FilterAdmin = "inurl:admin"
)

var filters = []string{FilterText, FilterPDF, FilterAdmin}

// Build returns the fixed, ordered dork queries for domain.
// The domain is used verbatim.
func Build(domain string) []string {
	queries := make([]string, 0, len(filters))
	for _, f := range filters {
		queries = append(queries, Site(domain)+" "+f)
	}
	return queries
}

// Site returns the site: operator for domain.
func Site(domain string) string {
	return "site:" + domain
}

// NormalizeDomain strips a single trailing slash.
func NormalizeDomain(raw string) string {
	return strings.TrimSuffix(raw, "/")
}

// Encode percent-encodes a query for use as a query-string value.
// Spaces become '+'.
func Encode(query string) string {
	return url.QueryEscape(query)
}
