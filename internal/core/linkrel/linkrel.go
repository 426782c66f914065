// Package linkrel parses RFC 5988 style Link response headers into
// pagination cursors.
package linkrel

import (
	"net/url"
	"strings"
)

// Entry is one link-value from a Link header.
type Entry struct {
	URL string
	Rel string
}

// Parse splits a raw Link header into its entries. Malformed segments
// are skipped rather than failing the whole header.
func Parse(header string) []Entry {
	if header == "" {
		return nil
	}

	var out []Entry
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		open := strings.IndexByte(part, '<')
		close := strings.IndexByte(part, '>')
		if open != 0 || close < 0 {
			continue
		}

		e := Entry{URL: part[open+1 : close]}
		for _, param := range strings.Split(part[close+1:], ";") {
			param = strings.TrimSpace(param)
			k, v, ok := strings.Cut(param, "=")
			if !ok || strings.TrimSpace(k) != "rel" {
				continue
			}
			e.Rel = strings.Trim(strings.TrimSpace(v), `"`)
		}
		if e.URL != "" {
			out = append(out, e)
		}
	}
	return out
}

// Next returns the path and query of the last rel="next" entry in the
// header, or "" when the feed has no further page. Later duplicates win
// so a proxy-merged header resolves the same way the upstream intended.
func Next(header string) string {
	var raw string
	for _, e := range Parse(header) {
		if e.Rel == "next" {
			raw = e.URL
		}
	}
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}
