package client

import (
	"time"

	"github.com/deividlukks/Fayol-sub007/pkg/cache"
	"github.com/deividlukks/Fayol-sub007/pkg/retry"
	"github.com/deividlukks/Fayol-sub007/pkg/transport"
)

// Config represents configuration for the API client
type Config struct {
	BaseURL       string        `json:"base_url"` // e.g. "http://localhost:3000/api"
	Timeout       time.Duration `json:"timeout"`  // per attempt
	CacheEnabled  bool          `json:"cache_enabled"`
	CacheTTL      time.Duration `json:"cache_ttl"`      // default for WithCache(0)
	SweepInterval time.Duration `json:"sweep_interval"` // expired entry purge period
	Retry         retry.Config  `json:"retry"`
	SOCKS5Addr    string        `json:"socks5_addr"` // optional proxy for non-local targets
	ProxyLocal    bool          `json:"proxy_local"` // proxy local targets too
	CACertPath    string        `json:"ca_cert_path"`
	TrustedHosts  []string      `json:"trusted_hosts"` // skip TLS verification (development)
	QuietMode     bool          `json:"quiet_mode"`    // Suppress debug/info logs
}

// DefaultConfig returns a default client configuration
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		Timeout:       transport.DefaultTimeout,
		CacheEnabled:  true,
		CacheTTL:      cache.DefaultTTL,
		SweepInterval: cache.DefaultSweepInterval,
		Retry:         retry.DefaultConfig(),
		QuietMode:     false,
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = transport.DefaultTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = cache.DefaultSweepInterval
	}
	return c
}
