// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"
)

const (
	// DefaultLDAPSPort is the conventional port for LDAP over TLS.
	DefaultLDAPSPort = 636

	// DefaultLDAPPort is the conventional plaintext LDAP port used for
	// STARTTLS upgrades.
	DefaultLDAPPort = 389

	// DefaultTimeout bounds connect and handshake for a single attempt.
	DefaultTimeout = 10 * time.Second
)

// ErrEmptyChain indicates the TLS handshake succeeded but the server
// presented no certificates. Fatal and never retried; distinct from a
// handshake failure.
var ErrEmptyChain = errors.New("x509chain: server presented no certificates")

// ConnectionError is a network-level failure before TLS negotiation: DNS
// resolution, TCP refusal, or timeout. Never retried.
type ConnectionError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("x509chain: failed to connect to %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TLSHandshakeError is a protocol-level failure negotiating TLS (or the
// STARTTLS upgrade) after the TCP connection was established.
type TLSHandshakeError struct {
	Host string
	Port int
	Err  error
}

func (e *TLSHandshakeError) Error() string {
	return fmt.Sprintf("x509chain: TLS handshake with %s:%d failed: %v", e.Host, e.Port, e.Err)
}

func (e *TLSHandshakeError) Unwrap() error { return e.Err }

// FetchOptions configure a single chain-capture attempt.
type FetchOptions struct {
	// Host is the directory server hostname or IP. Required.
	Host string

	// Port is the server port. Zero selects 636, or 389 with UseStartTLS.
	Port int

	// Timeout bounds connect and handshake. Zero selects DefaultTimeout.
	Timeout time.Duration

	// UseStartTLS connects on the plaintext LDAP port and upgrades the
	// session in-band instead of dialing a TLS-dedicated port.
	UseStartTLS bool

	// VerifyPeer enables standard peer certificate verification. It is
	// false for this tool's normal operation: the point is to capture
	// chains, including untrusted and self-signed ones, not to enforce
	// trust. The zero value makes that bypass an explicit, visible choice
	// rather than ambient state.
	VerifyPeer bool
}

// withDefaults fills in the default port and timeout.
func (o FetchOptions) withDefaults() FetchOptions {
	if o.Port == 0 {
		if o.UseStartTLS {
			o.Port = DefaultLDAPPort
		} else {
			o.Port = DefaultLDAPSPort
		}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// tlsConfig builds the client TLS configuration, sending SNI for the
// target host.
func (o FetchOptions) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         o.Host,
		InsecureSkipVerify: !o.VerifyPeer,
	}
}

// FetchRemoteChain opens a single connection to the directory server,
// performs the TLS handshake (directly or via STARTTLS), and returns a
// Chain holding every certificate the peer transmitted, in transmission
// order. The connection is closed before returning on every path; no
// retries are performed. The returned chain is unordered until
// [Chain.Order] is called.
func FetchRemoteChain(ctx context.Context, opts FetchOptions) (*Chain, error) {
	opts = opts.withDefaults()
	if opts.Host == "" {
		return nil, &ConnectionError{Host: opts.Host, Port: opts.Port, Err: errors.New("empty host")}
	}

	if opts.UseStartTLS {
		return fetchStartTLS(ctx, opts)
	}
	return fetchDirect(ctx, opts)
}

// fetchDirect dials the TLS-dedicated port and captures the handshake
// certificates. TCP dialing and TLS negotiation are separate steps so the
// two failure classes stay distinguishable.
func fetchDirect(ctx context.Context, opts FetchOptions) (*Chain, error) {
	addr := net.JoinHostPort(opts.Host, fmt.Sprintf("%d", opts.Port))

	dialer := &net.Dialer{Timeout: opts.Timeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Host: opts.Host, Port: opts.Port, Err: err}
	}
	defer rawConn.Close()

	// Bound the handshake as well as the dial.
	handshakeCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	conn := tls.Client(rawConn, opts.tlsConfig())
	if err := conn.HandshakeContext(handshakeCtx); err != nil {
		return nil, &TLSHandshakeError{Host: opts.Host, Port: opts.Port, Err: err}
	}

	return chainFromState(conn.ConnectionState())
}

// fetchStartTLS connects on the plaintext LDAP port and upgrades the
// session with the LDAP StartTLS extended operation, delegating the
// protocol exchange to the LDAP client library.
func fetchStartTLS(ctx context.Context, opts FetchOptions) (*Chain, error) {
	addr := net.JoinHostPort(opts.Host, fmt.Sprintf("%d", opts.Port))

	conn, err := ldap.DialURL(
		fmt.Sprintf("ldap://%s", addr),
		ldap.DialWithDialer(&net.Dialer{Timeout: opts.Timeout}),
	)
	if err != nil {
		return nil, &ConnectionError{Host: opts.Host, Port: opts.Port, Err: err}
	}
	defer conn.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	conn.SetTimeout(opts.Timeout)
	if err := conn.StartTLS(opts.tlsConfig()); err != nil {
		return nil, &TLSHandshakeError{Host: opts.Host, Port: opts.Port, Err: err}
	}

	state, ok := conn.TLSConnectionState()
	if !ok {
		return nil, &TLSHandshakeError{
			Host: opts.Host,
			Port: opts.Port,
			Err:  errors.New("connection did not negotiate TLS"),
		}
	}

	return chainFromState(state)
}

// chainFromState extracts the peer certificates captured during the
// handshake, preserving transmission order.
func chainFromState(state tls.ConnectionState) (*Chain, error) {
	peerCerts := state.PeerCertificates
	if len(peerCerts) == 0 {
		return nil, ErrEmptyChain
	}
	return New(peerCerts), nil
}
