package cache

import (
	"net/url"
	"strings"
)

// Key derives the canonical cache key for a request path and its query
// parameters. Parameters already present in path are merged with params.
// Keys are sorted and values keep their order, so logically identical
// requests map to the same key regardless of how the call site built them.
func Key(path string, params url.Values) string {
	base := path
	merged := url.Values{}

	if i := strings.IndexByte(path, '?'); i >= 0 {
		base = path[:i]
		if q, err := url.ParseQuery(path[i+1:]); err == nil {
			for k, vs := range q {
				merged[k] = append(merged[k], vs...)
			}
		}
	}
	for k, vs := range params {
		merged[k] = append(merged[k], vs...)
	}

	if len(merged) == 0 {
		return base
	}
	// Encode sorts by key.
	return base + "?" + merged.Encode()
}

// Family returns the resource family of a request path: its first
// non-empty segment. "/accounts/42?x=1" belongs to "accounts".
func Family(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}
