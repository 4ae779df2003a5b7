// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509certs "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/certs"
)

// Summary returns a one-line description of the ordered chain for
// diagnostic output: length, leaf and terminal subjects, and status.
func (ch *Chain) Summary() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "no certificates captured"
	}

	leaf := ch.Certs[0]
	last := ch.Certs[len(ch.Certs)-1]
	return fmt.Sprintf("%d certificate(s): leaf %s, terminal %s [%s]",
		len(ch.Certs),
		x509certs.SubjectSummary(leaf),
		x509certs.SubjectSummary(last),
		ch.Result.Status)
}

// RenderTable renders the ordered chain as a markdown table with
// per-certificate details, in the format administrators use to verify the
// right certificates were captured.
func (ch *Chain) RenderTable() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Role", "Subject", "Issuer", "Not Before", "Not After", "Serial"})

	var rows [][]string
	for i, cert := range ch.Certs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ch.role(i),
			cert.Subject.CommonName,
			cert.Issuer.CommonName,
			cert.NotBefore.Format("2006-01-02"),
			cert.NotAfter.Format("2006-01-02"),
			cert.SerialNumber.String(),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToReportJSON converts the ordered chain and its validation result to
// structured JSON for external tooling.
func (ch *Chain) ToReportJSON() ([]byte, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	type certReport struct {
		Index              int       `json:"index"`
		Role               string    `json:"role"`
		Subject            string    `json:"subject"`
		Issuer             string    `json:"issuer"`
		SerialNumber       string    `json:"serialNumber"`
		SignatureAlgorithm string    `json:"signatureAlgorithm"`
		NotBefore          time.Time `json:"notBefore"`
		NotAfter           time.Time `json:"notAfter"`
		SelfSigned         bool      `json:"selfSigned"`
	}

	type chainReport struct {
		Timestamp    string       `json:"timestamp"`
		Status       string       `json:"status"`
		BreakAt      int          `json:"breakAt"`
		ChainLength  int          `json:"chainLength"`
		Ignored      int          `json:"ignored"`
		Ambiguous    []int        `json:"ambiguous,omitempty"`
		Certificates []certReport `json:"certificates"`
	}

	report := chainReport{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Status:       ch.Result.Status.String(),
		BreakAt:      ch.Result.BreakAt,
		ChainLength:  len(ch.Certs),
		Ignored:      len(ch.Result.Ignored),
		Ambiguous:    ch.Result.Ambiguous,
		Certificates: make([]certReport, len(ch.Certs)),
	}

	for i, cert := range ch.Certs {
		report.Certificates[i] = certReport{
			Index:              i,
			Role:               ch.role(i),
			Subject:            cert.Subject.String(),
			Issuer:             cert.Issuer.String(),
			SerialNumber:       cert.SerialNumber.String(),
			SignatureAlgorithm: cert.SignatureAlgorithm.String(),
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			SelfSigned:         ch.IsSelfSigned(cert),
		}
	}

	return json.MarshalIndent(report, "", "  ")
}
