// Package transport builds the *http.Client the API client dispatches with.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	goproxy "golang.org/x/net/proxy"
)

// DefaultTimeout is the per-attempt timeout applied when none is set.
const DefaultTimeout = 30 * time.Second

// Config configures the HTTP client.
type Config struct {
	// Timeout bounds a single attempt, connection to body read.
	Timeout time.Duration

	// SOCKS5Addr routes connections through a SOCKS5 proxy (host:port) when set.
	SOCKS5Addr string

	// ProxyLocal also routes loopback and private addresses through the
	// proxy. By default they are dialed directly.
	ProxyLocal bool

	// CACertPath adds a PEM bundle as the trusted roots, for APIs behind a
	// private CA.
	CACertPath string

	// TrustedDomains skip certificate verification. Development only.
	TrustedDomains []string
}

// NewHTTPClient returns an *http.Client honouring cfg.
func NewHTTPClient(cfg Config) (*http.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = timeout

	tc, err := tlsConfig(cfg.CACertPath)
	if err != nil {
		return nil, err
	}
	tr.TLSClientConfig = tc

	if cfg.SOCKS5Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.SOCKS5Addr); err != nil {
			return nil, fmt.Errorf("invalid SOCKS5 address %q: %w", cfg.SOCKS5Addr, err)
		}
		d := &socksContextDialer{addr: cfg.SOCKS5Addr, proxyLocal: cfg.ProxyLocal}
		tr.Proxy = nil
		tr.DialContext = d.DialContext
	}

	return &http.Client{Transport: withTrustedDomains(tr, cfg.TrustedDomains), Timeout: timeout}, nil
}

// socksContextDialer dials through a SOCKS5 proxy, bypassing it for local
// targets unless proxyLocal is set.
type socksContextDialer struct {
	addr       string
	proxyLocal bool
}

func (d *socksContextDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if !d.proxyLocal && IsLocalAddress(address) {
		direct := &net.Dialer{}
		return direct.DialContext(ctx, network, address)
	}

	// Derive timeout from context deadline if present
	var timeout time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	base := &net.Dialer{Timeout: timeout}
	socksDialer, err := goproxy.SOCKS5("tcp", d.addr, nil, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	if cd, ok := socksDialer.(goproxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}
	return socksDialer.Dial(network, address)
}

// IsLocalAddress reports whether a host or host:port names a loopback,
// private or link-local target.
func IsLocalAddress(address string) bool {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// ProxyReachable reports whether a SOCKS5 proxy accepts TCP connections at addr.
func ProxyReachable(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// JoinURL resolves path against base, keeping base's own path prefix:
// JoinURL("http://api/v1", "/accounts") is "http://api/v1/accounts".
func JoinURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing scheme or host", base)
	}
	return u.JoinPath(path).String(), nil
}
