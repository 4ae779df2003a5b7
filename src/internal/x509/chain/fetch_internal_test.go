// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainFromState is unexported, so the empty-chain guard is tested here
// directly: crypto/tls servers always present a certificate, leaving no way
// to provoke a certificate-free handshake over a real connection.
func TestChainFromState(t *testing.T) {
	_, err := chainFromState(tls.ConnectionState{})
	require.ErrorIs(t, err, ErrEmptyChain, "a handshake without peer certificates is fatal")

	cert := &x509.Certificate{Subject: pkix.Name{CommonName: "ldap.test.internal"}}
	ch, err := chainFromState(tls.ConnectionState{
		PeerCertificates: []*x509.Certificate{cert},
	})
	require.NoError(t, err)
	require.Len(t, ch.Certs, 1)
	assert.True(t, ch.Certs[0].Equal(cert))
}
