package client

import (
	"errors"
	"fmt"
)

// Construction errors. Request failures are always *errors.APIError.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrClosed        = errors.New("client closed")
)

// ConfigError reports a Config field New rejected. It matches
// ErrInvalidConfig under errors.Is.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid client config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid client config: %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }
