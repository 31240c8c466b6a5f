package httputil

import (
	"fmt"
	"strings"
)

// FieldErrors collects per-field validation messages, serialized as the
// "errors" member of ErrorBody.
type FieldErrors map[string][]string

// Add records msg against field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Require records a message when value is blank.
func (f FieldErrors) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.Add(field, fmt.Sprintf("%s is required", field))
	}
}

// Empty reports whether no field failed.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}
