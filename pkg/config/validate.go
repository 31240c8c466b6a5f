package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/deividlukks/Fayol-sub007/pkg/config/validate"
)

// ValidationError represents a single validation error with context.
type ValidationError = validate.ValidationError

// Validate performs comprehensive validation of the entire config.
// It aggregates all errors so the caller can print every issue at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateClient()...)
	errs = append(errs, c.validateRetry()...)
	errs = append(errs, c.validateCache()...)
	errs = append(errs, validate.ValidateStorage(validate.StorageConfig{
		Variant:       c.Storage.Variant,
		Dir:           c.Storage.Dir,
		HasPassphrase: c.Storage.Passphrase != "",
		KV:            c.Storage.KV,
		RQLiteDSN:     c.Storage.RQLiteDSN,
		OlricServers:  c.Storage.Olric.Servers,
	})...)
	errs = append(errs, validate.ValidateLogging(validate.LoggingConfig{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		OutputFile: c.Logging.OutputFile,
	})...)
	errs = append(errs, c.validateProxy()...)
	errs = append(errs, c.validateTLS()...)

	return errs
}

func (c *Config) validateClient() []error {
	var errs []error

	if err := validate.ValidateHTTPURL(c.Client.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Path:    "client.base_url",
			Message: err.Error(),
			Hint:    "expected e.g. http://localhost:3333/api",
		})
	}
	if c.Client.Timeout < 0 {
		errs = append(errs, ValidationError{
			Path:    "client.timeout",
			Message: fmt.Sprintf("must be >= 0; got %s", c.Client.Timeout),
		})
	}

	return errs
}

func (c *Config) validateRetry() []error {
	var errs []error
	rc := c.Retry

	if rc.MaxAttempts < 1 {
		errs = append(errs, ValidationError{
			Path:    "retry.max_attempts",
			Message: fmt.Sprintf("must be >= 1; got %d", rc.MaxAttempts),
			Hint:    "1 disables retries",
		})
	}
	if rc.BaseDelay < 0 {
		errs = append(errs, ValidationError{
			Path:    "retry.base_delay",
			Message: fmt.Sprintf("must be >= 0; got %s", rc.BaseDelay),
		})
	}
	if rc.MaxDelay != 0 && rc.MaxDelay < rc.BaseDelay {
		errs = append(errs, ValidationError{
			Path:    "retry.max_delay",
			Message: fmt.Sprintf("must be 0 or >= base_delay (%s); got %s", rc.BaseDelay, rc.MaxDelay),
		})
	}
	if rc.Jitter < 0 || rc.Jitter > 1 {
		errs = append(errs, ValidationError{
			Path:    "retry.jitter",
			Message: fmt.Sprintf("must be between 0 and 1; got %g", rc.Jitter),
		})
	}
	for i, code := range rc.RetryableStatusCodes {
		if code < 500 || code > 599 {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("retry.retryable_status_codes[%d]", i),
				Message: fmt.Sprintf("must be a 5xx status; got %d", code),
				Hint:    "4xx responses are never retried",
			})
		}
	}
	for i, m := range rc.RetryableMethods {
		switch strings.ToUpper(m) {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		case http.MethodPost, http.MethodPatch:
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("retry.retryable_methods[%d]", i),
				Message: fmt.Sprintf("%s is not idempotent", m),
				Hint:    "retrying it may duplicate writes",
			})
		default:
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("retry.retryable_methods[%d]", i),
				Message: fmt.Sprintf("unknown method %q", m),
			})
		}
	}

	return errs
}

func (c *Config) validateCache() []error {
	var errs []error

	if c.Cache.TTL < 0 {
		errs = append(errs, ValidationError{
			Path:    "cache.ttl",
			Message: fmt.Sprintf("must be >= 0; got %s", c.Cache.TTL),
		})
	}
	if c.Cache.SweepInterval < 0 {
		errs = append(errs, ValidationError{
			Path:    "cache.sweep_interval",
			Message: fmt.Sprintf("must be >= 0; got %s", c.Cache.SweepInterval),
		})
	}

	return errs
}

func (c *Config) validateProxy() []error {
	if c.Proxy.SOCKS5Addr == "" {
		return nil
	}
	if err := validate.ValidateHostPort(c.Proxy.SOCKS5Addr); err != nil {
		return []error{ValidationError{
			Path:    "proxy.socks5_addr",
			Message: err.Error(),
			Hint:    "expected host:port, e.g. 127.0.0.1:9050",
		}}
	}
	return nil
}

func (c *Config) validateTLS() []error {
	var errs []error
	if c.TLS.CACert != "" {
		path, err := validate.ExpandHome(c.TLS.CACert)
		if err == nil {
			var info os.FileInfo
			if info, err = os.Stat(path); err == nil && info.IsDir() {
				err = fmt.Errorf("%s is a directory", path)
			}
		}
		if err != nil {
			errs = append(errs, ValidationError{
				Path:    "tls.ca_cert",
				Message: err.Error(),
				Hint:    "path to a PEM certificate bundle",
			})
		}
	}
	for i, d := range c.TLS.TrustedDomains {
		if strings.TrimSpace(d) == "" || strings.Contains(d, "/") || strings.Contains(d, ":") {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("tls.trusted_domains[%d]", i),
				Message: fmt.Sprintf("invalid host %q", d),
				Hint:    "use a bare host or *.domain, without scheme or port",
			})
		}
	}
	return errs
}
