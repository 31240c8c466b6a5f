package client

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Params url.Values
	Body   any
	Header http.Header

	// Cache opts a GET into the response cache. CacheTTL <= 0 uses the
	// client default.
	Cache    bool
	CacheTTL time.Duration
}

// RequestOption customises a Request.
type RequestOption func(*Request)

// WithParams merges query parameters into the request.
func WithParams(params url.Values) RequestOption {
	return func(r *Request) {
		if r.Params == nil {
			r.Params = url.Values{}
		}
		for k, vs := range params {
			r.Params[k] = append(r.Params[k], vs...)
		}
	}
}

// WithParam sets a single query parameter. Empty values are skipped.
func WithParam(key, value string) RequestOption {
	return func(r *Request) {
		if value == "" {
			return
		}
		if r.Params == nil {
			r.Params = url.Values{}
		}
		r.Params.Set(key, value)
	}
}

// WithCache opts the request into the response cache for ttl.
func WithCache(ttl time.Duration) RequestOption {
	return func(r *Request) {
		r.Cache = true
		r.CacheTTL = ttl
	}
}

// WithoutCache opts the request out of the response cache.
func WithoutCache() RequestOption {
	return func(r *Request) {
		r.Cache = false
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.Header.Set(key, value)
	}
}

// NewRequest builds a Request with options applied.
func NewRequest(method, path string, body any, opts ...RequestOption) *Request {
	r := &Request{
		Method: strings.ToUpper(method),
		Path:   normalizePath(path),
		Body:   body,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// query merges the query embedded in Path with Params.
func (r *Request) query() url.Values {
	merged := url.Values{}
	if i := strings.IndexByte(r.Path, '?'); i >= 0 {
		if q, err := url.ParseQuery(r.Path[i+1:]); err == nil {
			for k, vs := range q {
				merged[k] = append(merged[k], vs...)
			}
		}
	}
	for k, vs := range r.Params {
		merged[k] = append(merged[k], vs...)
	}
	return merged
}

func (r *Request) isMutation() bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func normalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
