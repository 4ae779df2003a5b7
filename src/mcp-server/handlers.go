// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	x509certs "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/certs"
	x509chain "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/chain"
)

// handleFetchLDAPSChain captures the certificate chain a directory server
// presents during the TLS handshake, orders it, and returns it in the
// requested format together with a per-certificate summary.
func handleFetchLDAPSChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host, err := request.RequireString("server")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("server parameter required: %v", err)), nil
	}

	port := request.GetInt("port", x509chain.DefaultLDAPSPort)
	useStartTLS := request.GetBool("starttls", false)
	format := request.GetString("format", "pem")
	timeoutSeconds := request.GetInt("timeout_seconds", 10)

	if useStartTLS && port == x509chain.DefaultLDAPSPort {
		port = x509chain.DefaultLDAPPort
	}

	chain, err := x509chain.FetchRemoteChain(ctx, x509chain.FetchOptions{
		Host:        host,
		Port:        port,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
		UseStartTLS: useStartTLS,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch certificate chain: %v", err)), nil
	}

	chain.Order(time.Now())
	return chainResult(chain, format)
}

// handleValidateCertChain orders and cross-checks a certificate set given
// as a file path or base64-encoded data and reports the classification.
func handleValidateCertChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	certInput, err := request.RequireString("certificates")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("certificates parameter required: %v", err)), nil
	}

	certData, err := readCertInput(certInput)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	certs, err := x509certs.New().DecodeMultiple(certData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode certificates: %v", err)), nil
	}

	chain := x509chain.New(certs)
	result := chain.Order(time.Now())

	report := fmt.Sprintf("Chain classification: %s\n", result.Status)
	switch result.Status {
	case x509chain.Invalid:
		report += fmt.Sprintf("Signature check failed at position %d.\n", result.BreakAt)
	case x509chain.PartialMissingRoot:
		report += "The root CA is not part of the presented set.\n"
	}
	if len(result.Ignored) > 0 {
		report += fmt.Sprintf("%d certificate(s) not part of the chain were ignored.\n", len(result.Ignored))
	}
	report += "\n" + chain.RenderTable()

	return mcp.NewToolResultText(report), nil
}

// chainResult formats an ordered chain for tool output: a summary header
// followed by the bundle in the requested format.
func chainResult(chain *x509chain.Chain, format string) (*mcp.CallToolResult, error) {
	var output string
	switch format {
	case "der":
		output = base64.StdEncoding.EncodeToString(chain.EncodeDERBundle())
	case "json":
		data, err := chain.ToReportJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to build JSON report: %v", err)), nil
		}
		output = string(data)
	default: // pem
		output = string(chain.EncodePEMBundle())
	}

	info := chain.Summary() + "\n"
	for i, cert := range chain.Certs {
		info += fmt.Sprintf("%d: %s (%s)\n", i+1, cert.Subject.CommonName, chain.Role(i))
	}

	return mcp.NewToolResultText(info + "\n" + output), nil
}

// readCertInput reads certificate bytes from a file path, falling back to
// base64 decoding when the path does not resolve.
func readCertInput(input string) ([]byte, error) {
	if fileData, err := os.ReadFile(input); err == nil {
		return fileData, nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(input); err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("failed to read certificates: not a valid file path or base64 data")
}
