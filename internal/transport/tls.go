// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport builds the hardened TLS listener configuration the
// server accepts connections under.
package transport

import (
	"crypto/tls"
	"fmt"
)

const (
	// MinVersion is the lowest TLS version the server will negotiate.
	MinVersion = tls.VersionTLS12

	// MaxVersion is the preferred, highest TLS version.
	MaxVersion = tls.VersionTLS13
)

// ApprovedCipherSuites lists the TLS 1.2 cipher suites the server will
// negotiate. TLS 1.3 ignores this list and always uses its own
// AEAD-only suite set. Weak ciphers (RC4, 3DES, CBC-mode) are never
// included here.
var ApprovedCipherSuites = []uint16{
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
}

// Config is a functional option applied while building the server's TLS
// configuration.
type Config func(*tls.Config)

// WithClientAuth sets the server's client-certificate policy to mode.
func WithClientAuth(mode tls.ClientAuthType) Config {
	return func(c *tls.Config) { c.ClientAuth = mode }
}

// ServerTLSConfig loads a certificate/key pair from PEM files and returns a
// hardened tls.Config suitable for the shell listener.
func ServerTLSConfig(certPath, keyPath string, opts ...Config) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("load TLS certificate: %w", err)
	}

	cfg := &tls.Config{
		Certificates:             []tls.Certificate{cert},
		MinVersion:               MinVersion,
		MaxVersion:               MaxVersion,
		CipherSuites:             ApprovedCipherSuites,
		PreferServerCipherSuites: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}
