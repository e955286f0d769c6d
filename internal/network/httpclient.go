// File: internal/network/httpclient.go
package network

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Defaults for the API client. A run makes a handful of requests to a
// single host, so the pool stays small.
const (
	DefaultDialTimeout           = 5 * time.Second
	DefaultKeepAliveInterval     = 15 * time.Second
	DefaultTLSHandshakeTimeout   = 5 * time.Second
	DefaultResponseHeaderTimeout = 10 * time.Second
	DefaultRequestTimeout        = 30 * time.Second
	DefaultMaxIdleConnsPerHost   = 2
	DefaultIdleConnTimeout       = 30 * time.Second
)

// ClientConfig holds the configuration for the HTTP client and transport layers.
type ClientConfig struct {
	RequestTimeout        time.Duration
	DialTimeout           time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	IdleConnTimeout       time.Duration
	MaxIdleConnsPerHost   int

	// TLSConfig is cloned before use. Nil selects the secure defaults.
	TLSConfig  *tls.Config
	ForceHTTP2 bool

	Logger *zap.Logger
}

// NewDefaultClientConfig returns the configuration used for GitHub API calls.
// A non-positive timeout keeps DefaultRequestTimeout.
func NewDefaultClientConfig(timeout time.Duration, logger *zap.Logger) *ClientConfig {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientConfig{
		RequestTimeout:        timeout,
		DialTimeout:           DefaultDialTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		ForceHTTP2:            true,
		Logger:                logger.Named("httpclient"),
	}
}

// NewHTTPTransport creates an http.Transport from config. Proxies are taken
// from the HTTPS_PROXY family of environment variables.
func NewHTTPTransport(config *ClientConfig) *http.Transport {
	if config == nil {
		config = NewDefaultClientConfig(0, nil)
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := &net.Dialer{
		Timeout:   config.DialTimeout,
		KeepAlive: DefaultKeepAliveInterval,
	}
	tlsConfig := configureTLS(config)

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		ForceAttemptHTTP2:     config.ForceHTTP2,
	}

	if config.ForceHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn("Failed to configure HTTP/2 transport, falling back to HTTP/1.1", zap.Error(err))
		}
	} else if len(tlsConfig.NextProtos) == 0 {
		tlsConfig.NextProtos = []string{"http/1.1"}
	}

	return transport
}

// NewClient creates an HTTP client using the configured transport. Redirects
// are followed, which the API relies on for renamed repositories.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = NewDefaultClientConfig(0, nil)
	}
	return &http.Client{
		Transport: NewHTTPTransport(config),
		Timeout:   config.RequestTimeout,
	}
}

// configureTLS clones config.TLSConfig or builds the default: TLS 1.2 minimum,
// forward secret suites and a session cache.
func configureTLS(config *ClientConfig) *tls.Config {
	if config.TLSConfig != nil {
		return config.TLSConfig.Clone()
	}
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		},
		ClientSessionCache: tls.NewLRUClientSessionCache(16),
	}
}
