package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/deividlukks/Fayol-sub007/pkg/cache"
	"github.com/deividlukks/Fayol-sub007/pkg/client"
	"github.com/deividlukks/Fayol-sub007/pkg/config/validate"
	"github.com/deividlukks/Fayol-sub007/pkg/logging"
	"github.com/deividlukks/Fayol-sub007/pkg/retry"
	"github.com/deividlukks/Fayol-sub007/pkg/storage"
	"github.com/deividlukks/Fayol-sub007/pkg/transport"
)

// Environment overrides applied by Load.
const (
	EnvAPIURL     = "FAYOL_API_URL"
	EnvPassphrase = "FAYOL_STORAGE_PASSPHRASE"
	EnvLogLevel   = "FAYOL_LOG_LEVEL"
)

// DefaultBaseURL is the local development API.
const DefaultBaseURL = "http://localhost:3333/api"

// Config represents the full client configuration
type Config struct {
	Client  ClientConfig  `yaml:"client"`
	Retry   retry.Config  `yaml:"retry"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Proxy   ProxyConfig   `yaml:"proxy"`
	TLS     TLSConfig     `yaml:"tls"`
}

// ClientConfig contains API endpoint settings
type ClientConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`    // per attempt
	QuietMode bool          `yaml:"quiet_mode"` // warn and above only
}

// CacheConfig contains response cache settings
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// StorageConfig selects where tokens and the user snapshot are kept
type StorageConfig struct {
	Variant string `yaml:"variant"` // web, mobile, memory, none
	Dir     string `yaml:"dir"`     // Empty for ~/.fayol

	// Passphrase seals the mobile secret store. Prefer the
	// FAYOL_STORAGE_PASSPHRASE environment variable.
	Passphrase string `yaml:"passphrase"`

	KV         string              `yaml:"kv"` // sqlite, rqlite, olric, memory
	SQLitePath string              `yaml:"sqlite_path"`
	RQLiteDSN  string              `yaml:"rqlite_dsn"`
	Olric      storage.OlricConfig `yaml:"olric"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json, console
	OutputFile string `yaml:"output_file"` // Empty for stdout
	Colors     bool   `yaml:"colors"`
}

// ProxyConfig routes non-local API traffic through a SOCKS5 proxy
type ProxyConfig struct {
	SOCKS5Addr string `yaml:"socks5_addr"` // host:port, empty to disable
	Local      bool   `yaml:"local"`       // also proxy loopback and private targets
}

// TLSConfig adjusts certificate verification for HTTPS APIs
type TLSConfig struct {
	CACert         string   `yaml:"ca_cert"`         // PEM bundle of extra trusted roots
	TrustedDomains []string `yaml:"trusted_domains"` // "*.example.com" or exact hosts; skips verification
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			BaseURL: DefaultBaseURL,
			Timeout: transport.DefaultTimeout,
		},
		Retry: retry.DefaultConfig(),
		Cache: CacheConfig{
			Enabled:       true,
			TTL:           cache.DefaultTTL,
			SweepInterval: cache.DefaultSweepInterval,
		},
		Storage: StorageConfig{
			Variant: storage.VariantWeb,
			KV:      storage.KVSQLite,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
			Colors: true,
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := DecodeStrict(f, cfg); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to open config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && strings.TrimSpace(v) != "" {
		c.Client.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPassphrase); ok && v != "" {
		c.Storage.Passphrase = v
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.Logging.Level = strings.TrimSpace(v)
	}
}

// ClientConfig maps the file settings onto the API client configuration.
func (c *Config) ClientConfig() client.Config {
	caCert := c.TLS.CACert
	if expanded, err := validate.ExpandHome(caCert); err == nil {
		caCert = expanded
	}
	return client.Config{
		BaseURL:       c.Client.BaseURL,
		Timeout:       c.Client.Timeout,
		CacheEnabled:  c.Cache.Enabled,
		CacheTTL:      c.Cache.TTL,
		SweepInterval: c.Cache.SweepInterval,
		Retry:         c.Retry,
		SOCKS5Addr:    c.Proxy.SOCKS5Addr,
		ProxyLocal:    c.Proxy.Local,
		CACertPath:    caCert,
		TrustedHosts:  c.TLS.TrustedDomains,
		QuietMode:     c.Client.QuietMode,
	}
}

// StorageOptions maps the file settings onto storage.Open options.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Variant:    c.Storage.Variant,
		Dir:        c.Storage.Dir,
		Passphrase: c.Storage.Passphrase,
		KV:         c.Storage.KV,
		SQLitePath: c.Storage.SQLitePath,
		RQLiteDSN:  c.Storage.RQLiteDSN,
		Olric:      c.Storage.Olric,
	}
}

// LoggingOptions maps the file settings onto logging.New options.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		OutputFile: c.Logging.OutputFile,
		Colors:     c.Logging.Colors,
	}
}
