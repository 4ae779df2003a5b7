// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package diag_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldapskit/ldaps-cert-retriever/src/diag"
	x509chain "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/chain"
	"github.com/ldapskit/ldaps-cert-retriever/src/logger"
)

// startTestServer serves TLS handshakes on a loopback port with a freshly
// generated self-signed certificate.
func startTestServer(t *testing.T) diag.Endpoint {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "ldap.test.internal"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		DNSNames:              []string{"ldap.test.internal"},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	cfg := &tls.Config{Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}}}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				tlsConn := tls.Server(c, cfg)
				_ = tlsConn.Handshake()
				tlsConn.Close()
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return diag.Endpoint{Host: "127.0.0.1", Port: addr.Port}
}

// closedEndpoint returns an endpoint nothing is listening on.
func closedEndpoint(t *testing.T) diag.Endpoint {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())
	return diag.Endpoint{Host: "127.0.0.1", Port: addr.Port}
}

func TestHarness_Run(t *testing.T) {
	good := startTestServer(t)
	bad := closedEndpoint(t)

	h := diag.New([]diag.Endpoint{bad, good}, 3*time.Second, logger.NewCLILogger())
	reports := h.Run(context.Background())
	require.Len(t, reports, 2, "one report per endpoint")

	// A failing endpoint never aborts the run.
	assert.Error(t, reports[0].Err)
	assert.False(t, reports[0].OK())

	require.NoError(t, reports[1].Err)
	assert.True(t, reports[1].OK())
	assert.Equal(t, x509chain.Complete, reports[1].Status)
	assert.Equal(t, 1, reports[1].ChainLen)
	assert.Equal(t, "CN=ldap.test.internal", reports[1].LeafSubject)
	assert.Greater(t, reports[1].Elapsed, time.Duration(0))
}

func TestHarness_RunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := diag.New([]diag.Endpoint{{Host: "127.0.0.1", Port: 636}}, time.Second, nil)
	reports := h.Run(ctx)
	require.Len(t, reports, 1)
	assert.ErrorIs(t, reports[0].Err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	good := startTestServer(t)
	bad := closedEndpoint(t)

	h := diag.New([]diag.Endpoint{good, bad}, 3*time.Second, nil)
	reports := h.Run(context.Background())

	summary := diag.Summarize(reports)
	assert.Contains(t, summary, "PASS "+good.String())
	assert.Contains(t, summary, "FAIL "+bad.String())
	assert.Contains(t, summary, "1/2 endpoint(s) passed")
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected diag.Endpoint
		wantErr  bool
	}{
		{
			name:     "Host And Port",
			input:    "ldap.example.com:636",
			expected: diag.Endpoint{Host: "ldap.example.com", Port: 636},
		},
		{
			name:     "Bare Host Defaults To LDAPS Port",
			input:    "ldap.example.com",
			expected: diag.Endpoint{Host: "ldap.example.com", Port: 636},
		},
		{
			name:     "Bare IPv6 Literal Defaults To LDAPS Port",
			input:    "::1",
			expected: diag.Endpoint{Host: "::1", Port: 636},
		},
		{
			name:     "Bracketed IPv6 Literal With Port",
			input:    "[::1]:3636",
			expected: diag.Endpoint{Host: "::1", Port: 3636},
		},
		{
			name:    "Bracketed IPv6 Literal Without Port",
			input:   "[::1]",
			wantErr: true,
		},
		{
			name:    "Invalid Port",
			input:   "ldap.example.com:notaport",
			wantErr: true,
		},
		{
			name:    "Out Of Range Port",
			input:   "ldap.example.com:70000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := diag.ParseEndpoint(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ep)
		})
	}
}

func TestEndpointString(t *testing.T) {
	ep := diag.Endpoint{Host: "ldap.example.com", Port: 636}
	assert.Equal(t, "ldap.example.com:636", ep.String())

	ep = diag.Endpoint{Host: "::1", Port: 636}
	assert.Equal(t, "[::1]:636", ep.String(), "IPv6 hosts are bracketed")
}
