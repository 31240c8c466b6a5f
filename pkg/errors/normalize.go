package errors

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Failure is the raw outcome of a failed request, before classification.
// Exactly one of Err or a non-zero Status is expected; a Failure with
// neither is treated as a network failure.
type Failure struct {
	// Err is the transport error when no response was received.
	Err error

	// Status is the HTTP status code of the response, zero if none.
	Status int

	// Header holds the response headers.
	Header http.Header

	// Body is the raw response body.
	Body []byte
}

// errorBody is the server's error body contract.
type errorBody struct {
	Message json.RawMessage     `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// FromResponse builds a Failure from a non-2xx response and its already read body.
func FromResponse(resp *http.Response, body []byte) Failure {
	if resp == nil {
		return Failure{}
	}
	return Failure{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}
}

// FromTransport builds a Failure for a request that never got a response.
func FromTransport(err error) Failure {
	return Failure{Err: err}
}

// Normalize maps any failure to exactly one APIError. It never panics and
// never returns nil.
func Normalize(f Failure) *APIError {
	if f.Status == 0 {
		return NewNetworkError("", f.Err)
	}

	parsed, details := decodeBody(f.Body)
	message := parsed.message()

	var e *APIError
	switch {
	case f.Status == http.StatusUnauthorized:
		e = NewUnauthorized(message)
	case f.Status == http.StatusForbidden:
		e = NewForbidden(message)
	case f.Status == http.StatusNotFound:
		e = NewNotFound(message)
	case f.Status == http.StatusConflict:
		e = NewConflict(message)
	case f.Status == http.StatusUnprocessableEntity:
		e = NewValidation(message, parsed.Errors)
	case f.Status == http.StatusTooManyRequests:
		e = NewRateLimited(message, ParseRetryAfter(f.Header.Get("Retry-After")))
	case f.Status >= 500 && f.Status <= 599:
		e = NewServerError(message, f.Status)
	default:
		e = New(f.Status, message)
	}
	if details != nil {
		e.Details = details
	}
	return e
}

// ParseRetryAfter reads a Retry-After value as whole seconds. It returns nil
// when the value is missing, not an integer, or negative.
func ParseRetryAfter(v string) *time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return nil
	}
	d := time.Duration(secs) * time.Second
	return &d
}

// decodeBody returns the parsed error contract and the value to expose as
// Details: the decoded JSON document, the raw text, or nil for an empty body.
func decodeBody(body []byte) (errorBody, any) {
	var parsed errorBody
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return parsed, nil
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return parsed, string(trimmed)
	}
	if _, ok := doc.(map[string]any); !ok {
		return parsed, doc
	}

	// Fields are decoded one at a time so a malformed "errors" value does
	// not hide a valid "message".
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err == nil {
		parsed.Message = fields["message"]
		if raw, ok := fields["errors"]; ok {
			_ = json.Unmarshal(raw, &parsed.Errors)
		}
	}
	return parsed, doc
}

// message accepts either a string or an array of strings.
func (b errorBody) message() string {
	if len(b.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Message, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(b.Message, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
