// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509certs "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/certs"
)

// newTestCA generates a self-signed certificate with its key.
func newTestCA(t *testing.T, cn string) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert, key
}

func callToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content result")
	return content.Text
}

func TestCreateTools(t *testing.T) {
	tools := createTools()
	require.Len(t, tools, 2)

	names := make(map[string]string, len(tools))
	for _, def := range tools {
		require.NotNil(t, def.Handler, "tool %s needs a handler", def.Tool.Name)
		names[def.Tool.Name] = def.Role
	}

	assert.Equal(t, "chainFetcher", names["fetch_ldaps_chain"])
	assert.Equal(t, "chainValidator", names["validate_cert_chain"])
}

func TestHandleValidateCertChain(t *testing.T) {
	cert, _ := newTestCA(t, "Test Root CA")
	certBase64 := base64.StdEncoding.EncodeToString(x509certs.New().EncodePEM(cert))

	req := callToolRequest("validate_cert_chain", map[string]any{
		"certificates": certBase64,
	})

	result, err := handleValidateCertChain(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError, "validation of a self-signed certificate should succeed")

	text := resultText(t, result)
	assert.Contains(t, text, "Chain classification: complete")
	assert.Contains(t, text, "Test Root CA")
}

func TestHandleValidateCertChain_MissingParam(t *testing.T) {
	req := callToolRequest("validate_cert_chain", map[string]any{})

	result, err := handleValidateCertChain(context.Background(), req)
	require.NoError(t, err, "parameter errors are tool results, not handler errors")
	assert.True(t, result.IsError)
}

func TestHandleValidateCertChain_BadInput(t *testing.T) {
	req := callToolRequest("validate_cert_chain", map[string]any{
		"certificates": "!!! neither a path nor base64 !!!",
	})

	result, err := handleValidateCertChain(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleFetchLDAPSChain(t *testing.T) {
	cert, key := newTestCA(t, "ldap.test.internal")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	cfg := &tls.Config{Certificates: []tls.Certificate{{Certificate: [][]byte{cert.Raw}, PrivateKey: key}}}
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

	req := callToolRequest("fetch_ldaps_chain", map[string]any{
		"server":          "127.0.0.1",
		"port":            float64(ln.Addr().(*net.TCPAddr).Port),
		"timeout_seconds": float64(5),
	})

	result, err := handleFetchLDAPSChain(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError, "fetch against a live listener should succeed")

	text := resultText(t, result)
	assert.Contains(t, text, "-----BEGIN CERTIFICATE-----")
	assert.Contains(t, text, "ldap.test.internal")
}

func TestHandleFetchLDAPSChain_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	req := callToolRequest("fetch_ldaps_chain", map[string]any{
		"server":          "127.0.0.1",
		"port":            float64(port),
		"timeout_seconds": float64(2),
	})

	result, err := handleFetchLDAPSChain(context.Background(), req)
	require.NoError(t, err, "fetch failures are tool results, not handler errors")
	assert.True(t, result.IsError)
}
