// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"crypto/x509"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509chain "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/chain"
)

func TestSummary(t *testing.T) {
	pki := newTestPKI(t)

	chain := x509chain.New([]*x509.Certificate{pki.Leaf, pki.Inter, pki.Root})
	chain.Order(time.Now())

	summary := chain.Summary()
	assert.Contains(t, summary, "3 certificate(s)")
	assert.Contains(t, summary, "CN=ldap.test.internal")
	assert.Contains(t, summary, "CN=Test Root CA")
	assert.Contains(t, summary, "complete")

	empty := x509chain.New(nil)
	assert.Equal(t, "no certificates captured", empty.Summary())
}

func TestRenderTable(t *testing.T) {
	pki := newTestPKI(t)

	chain := x509chain.New([]*x509.Certificate{pki.Leaf, pki.Inter, pki.Root})
	chain.Order(time.Now())

	table := chain.RenderTable()
	assert.Contains(t, table, "Role")
	assert.Contains(t, table, "Subject")
	assert.Contains(t, table, "ldap.test.internal")
	assert.Contains(t, table, "Test Intermediate CA")
	assert.Contains(t, table, "Test Root CA")
	assert.Contains(t, table, "leaf")
	assert.Contains(t, table, "root")

	empty := x509chain.New(nil)
	assert.Equal(t, "No certificates to display", empty.RenderTable())
}

func TestToReportJSON(t *testing.T) {
	pki := newTestPKI(t)

	chain := x509chain.New([]*x509.Certificate{pki.Leaf, pki.Inter, pki.Root})
	chain.Order(time.Now())

	data, err := chain.ToReportJSON()
	require.NoError(t, err, "ToReportJSON() error")

	var report struct {
		Status       string `json:"status"`
		BreakAt      int    `json:"breakAt"`
		ChainLength  int    `json:"chainLength"`
		Ignored      int    `json:"ignored"`
		Certificates []struct {
			Role       string `json:"role"`
			Subject    string `json:"subject"`
			SelfSigned bool   `json:"selfSigned"`
		} `json:"certificates"`
	}
	require.NoError(t, json.Unmarshal(data, &report), "report should be valid JSON")

	assert.Equal(t, "complete", report.Status)
	assert.Equal(t, -1, report.BreakAt)
	assert.Equal(t, 3, report.ChainLength)
	assert.Equal(t, 0, report.Ignored)

	require.Len(t, report.Certificates, 3)
	assert.Equal(t, "leaf", report.Certificates[0].Role)
	assert.False(t, report.Certificates[0].SelfSigned)
	assert.Equal(t, "root", report.Certificates[2].Role)
	assert.True(t, report.Certificates[2].SelfSigned)
}
