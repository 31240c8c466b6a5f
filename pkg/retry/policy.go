// Package retry decides whether a failed request may be re-issued and how
// long to wait before doing so.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/deividlukks/Fayol-sub007/pkg/errors"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// maxShift bounds the exponent. Delays past math.MaxInt64 saturate.
const maxShift = 30

// DefaultRetryableStatusCodes are the transient gateway failures.
func DefaultRetryableStatusCodes() []int {
	return []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout}
}

// DefaultRetryableMethods are the idempotent methods. POST and PATCH are
// excluded.
func DefaultRetryableMethods() []string {
	return []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodHead, http.MethodOptions}
}

// Condition overrides the built-in retry decision. It receives the attempt
// that just failed (1-based), the request method and the failure.
type Condition func(attempt int, method string, err error) bool

// Config configures a Policy.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `yaml:"max_attempts"`

	// BaseDelay is the wait before the second attempt; it doubles each time.
	BaseDelay time.Duration `yaml:"base_delay"`

	// MaxDelay caps the computed delay. Zero means no cap.
	MaxDelay time.Duration `yaml:"max_delay"`

	// Jitter spreads each delay by up to ±Jitter of its value (0.0 to 1.0).
	Jitter float64 `yaml:"jitter"`

	RetryableStatusCodes []int    `yaml:"retryable_status_codes"`
	RetryableMethods     []string `yaml:"retryable_methods"`
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:          DefaultMaxAttempts,
		BaseDelay:            DefaultBaseDelay,
		RetryableStatusCodes: DefaultRetryableStatusCodes(),
		RetryableMethods:     DefaultRetryableMethods(),
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	if c.Jitter > 1 {
		c.Jitter = 1
	}
	if c.RetryableStatusCodes == nil {
		c.RetryableStatusCodes = DefaultRetryableStatusCodes()
	}
	if c.RetryableMethods == nil {
		c.RetryableMethods = DefaultRetryableMethods()
	}
	return c
}

// Policy is an immutable retry policy. It is safe for concurrent use.
type Policy struct {
	cfg       Config
	statuses  map[int]struct{}
	methods   map[string]struct{}
	condition Condition
	randFloat func() float64
}

// Option configures a Policy.
type Option func(*Policy)

// WithCondition replaces the built-in retry decision. The attempt bound
// still applies.
func WithCondition(cond Condition) Option {
	return func(p *Policy) {
		p.condition = cond
	}
}

// WithRand sets the source of jitter, a function returning values in [0, 1).
func WithRand(f func() float64) Option {
	return func(p *Policy) {
		if f != nil {
			p.randFloat = f
		}
	}
}

// New builds a Policy from cfg. Zero fields take their defaults; the
// status and method sets are copied.
func New(cfg Config, opts ...Option) *Policy {
	cfg = cfg.withDefaults()

	p := &Policy{
		statuses:  make(map[int]struct{}, len(cfg.RetryableStatusCodes)),
		methods:   make(map[string]struct{}, len(cfg.RetryableMethods)),
		randFloat: rand.Float64,
	}
	for _, code := range cfg.RetryableStatusCodes {
		p.statuses[code] = struct{}{}
	}
	for _, m := range cfg.RetryableMethods {
		p.methods[strings.ToUpper(m)] = struct{}{}
	}

	cfg.RetryableStatusCodes = append([]int(nil), cfg.RetryableStatusCodes...)
	cfg.RetryableMethods = append([]string(nil), cfg.RetryableMethods...)
	p.cfg = cfg

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns a copy of the effective configuration.
func (p *Policy) Config() Config {
	cfg := p.cfg
	cfg.RetryableStatusCodes = append([]int(nil), p.cfg.RetryableStatusCodes...)
	cfg.RetryableMethods = append([]string(nil), p.cfg.RetryableMethods...)
	return cfg
}

// MaxAttempts returns the total attempt bound.
func (p *Policy) MaxAttempts() int {
	return p.cfg.MaxAttempts
}

// ShouldRetry reports whether the request may be re-issued after attempt
// (1-based) failed with err.
func (p *Policy) ShouldRetry(attempt int, method string, err error) bool {
	if err == nil || attempt >= p.cfg.MaxAttempts {
		return false
	}
	if p.condition != nil {
		return p.condition(attempt, method, err)
	}
	if _, ok := p.methods[strings.ToUpper(method)]; !ok {
		return false
	}
	return p.retryableFailure(err)
}

func (p *Policy) retryableFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	apiErr, ok := apierrors.As(err)
	if !ok {
		// Anything that is not a classified response is a transport failure.
		return true
	}
	if apiErr.Kind == apierrors.KindNetwork {
		return true
	}
	if apiErr.Kind == apierrors.KindRateLimited {
		return false
	}
	_, ok = p.statuses[apiErr.StatusCode]
	return ok
}

// DelayFor returns the wait after the given failed attempt (1-based):
// BaseDelay * 2^(attempt-1), capped at MaxDelay when set, then jittered.
func (p *Policy) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift > maxShift {
		shift = maxShift
	}

	delay := time.Duration(math.MaxInt64)
	if p.cfg.BaseDelay <= time.Duration(math.MaxInt64>>shift) {
		delay = p.cfg.BaseDelay << shift
	}
	if p.cfg.MaxDelay > 0 && delay > p.cfg.MaxDelay {
		delay = p.cfg.MaxDelay
	}

	if p.cfg.Jitter > 0 {
		spread := float64(delay) * p.cfg.Jitter
		jittered := float64(delay) - spread + 2*spread*p.randFloat()
		switch {
		case jittered <= 0:
			delay = 0
		case jittered >= math.MaxInt64:
			delay = time.Duration(math.MaxInt64)
		default:
			delay = time.Duration(jittered)
		}
	}
	return delay
}

// Wait blocks for d or until ctx is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
