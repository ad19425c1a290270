// internal/network/httpclient.go
package network

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Defaults tuned for a single, usually local, backend.
const (
	DefaultDialTimeout           = 5 * time.Second
	DefaultKeepAliveInterval     = 15 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultMaxIdleConns          = 16
	DefaultMaxIdleConnsPerHost   = 8
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultExpectContinueTimeout = time.Second
)

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	IgnoreTLSErrors bool

	DialTimeout         time.Duration
	KeepAliveInterval   time.Duration
	TLSHandshakeTimeout time.Duration

	// ResponseHeaderTimeout is left at zero by default: the scan trigger holds
	// the response until the whole scan finishes. Per-call deadlines come from
	// the caller's context instead.
	ResponseHeaderTimeout time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// ForceHTTP2 only matters for https backends; plain http stays on HTTP/1.1.
	ForceHTTP2 bool

	Logger *zap.Logger
}

// NewDefaultClientConfig creates a configuration suitable for the backend API.
func NewDefaultClientConfig(logger *zap.Logger) *ClientConfig {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientConfig{
		DialTimeout:         DefaultDialTimeout,
		KeepAliveInterval:   DefaultKeepAliveInterval,
		TLSHandshakeTimeout: DefaultTLSHandshakeTimeout,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		ForceHTTP2:          true,
		Logger:              logger.Named("httpclient"),
	}
}

// NewHTTPTransport creates and configures an http.Transport based on the provided configuration.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig(nil)
	}

	dialer := &net.Dialer{
		Timeout:       config.DialTimeout,
		KeepAlive:     config.KeepAliveInterval,
		FallbackDelay: 300 * time.Millisecond,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: config.IgnoreTLSErrors},
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		ExpectContinueTimeout: DefaultExpectContinueTimeout,
		ForceAttemptHTTP2:     config.ForceHTTP2,
	}

	if config.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			// Graceful fallback to HTTP/1.1.
			config.Logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	}

	return transport
}

// NewClient creates an http.Client using the configured transport. The client
// carries no overall timeout; callers bound each request with a context.
func NewClient(config *ClientConfig) *http.Client {
	return &http.Client{Transport: NewHTTPTransport(config)}
}
