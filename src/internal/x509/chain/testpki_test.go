// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testPKI is a freshly generated three-tier hierarchy used across the chain
// tests: a self-signed root, an intermediate, and a server leaf.
type testPKI struct {
	Root, Inter, Leaf          *x509.Certificate
	RootKey, InterKey, LeafKey *ecdsa.PrivateKey
}

func newTestKey(tb testing.TB) *ecdsa.PrivateKey {
	tb.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(tb, err, "failed to generate key")
	return key
}

// newTestCert issues a certificate for cn. A nil parent makes it
// self-signed with its own key.
func newTestCert(tb testing.TB, cn string, isCA bool, notBefore, notAfter time.Time,
	key *ecdsa.PrivateKey, parent *x509.Certificate, parentKey *ecdsa.PrivateKey) *x509.Certificate {
	tb.Helper()

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	require.NoError(tb, err, "failed to generate serial")

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		IsCA:                  isCA,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageDigitalSignature,
	}
	if isCA {
		template.KeyUsage |= x509.KeyUsageCertSign
	} else {
		template.DNSNames = []string{cn}
		template.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	}

	if parent == nil {
		parent = template
		parentKey = key
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, parentKey)
	require.NoError(tb, err, "failed to create certificate")

	cert, err := x509.ParseCertificate(der)
	require.NoError(tb, err, "failed to parse created certificate")
	return cert
}

// newTestPKI generates a root, intermediate, and leaf with a validity
// window around now.
func newTestPKI(tb testing.TB) *testPKI {
	tb.Helper()

	now := time.Now()
	notBefore := now.Add(-time.Hour)
	notAfter := now.Add(24 * time.Hour)

	rootKey := newTestKey(tb)
	interKey := newTestKey(tb)
	leafKey := newTestKey(tb)

	root := newTestCert(tb, "Test Root CA", true, notBefore, notAfter, rootKey, nil, nil)
	inter := newTestCert(tb, "Test Intermediate CA", true, notBefore, notAfter, interKey, root, rootKey)
	leaf := newTestCert(tb, "ldap.test.internal", false, notBefore, notAfter, leafKey, inter, interKey)

	return &testPKI{
		Root: root, Inter: inter, Leaf: leaf,
		RootKey: rootKey, InterKey: interKey, LeafKey: leafKey,
	}
}
