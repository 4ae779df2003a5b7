// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolDefinition pairs an MCP tool with its handler and a short role name
// used in logs.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
	Role    string
}

// createTools creates the MCP tool definitions exposed by this server:
//   - fetch_ldaps_chain: captures and orders the certificate chain a
//     directory server presents during the TLS handshake
//   - validate_cert_chain: orders and cross-checks a certificate set given
//     as a file path or base64 data
func createTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("fetch_ldaps_chain",
				mcp.WithDescription("Fetch the X509 certificate chain presented by an LDAPS (or STARTTLS LDAP) server"),
				mcp.WithString("server",
					mcp.Required(),
					mcp.Description("Directory server hostname or IP"),
				),
				mcp.WithNumber("port",
					mcp.Description("Server port (default: 636, or 389 with starttls)"),
					mcp.DefaultNumber(636),
				),
				mcp.WithBoolean("starttls",
					mcp.Description("Connect in plaintext and upgrade via LDAP STARTTLS (default: false)"),
					mcp.DefaultBool(false),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'pem', 'der' (base64), or 'json' (default: pem)"),
					mcp.DefaultString("pem"),
				),
				mcp.WithNumber("timeout_seconds",
					mcp.Description("Connect and handshake timeout in seconds (default: 10)"),
					mcp.DefaultNumber(10),
				),
			),
			Handler: handleFetchLDAPSChain,
			Role:    "chainFetcher",
		},
		{
			Tool: mcp.NewTool("validate_cert_chain",
				mcp.WithDescription("Order and cross-check a X509 certificate chain, reporting its classification"),
				mcp.WithString("certificates",
					mcp.Required(),
					mcp.Description("Certificate file path or base64-encoded certificate data (PEM, DER, or PKCS7)"),
				),
			),
			Handler: handleValidateCertChain,
			Role:    "chainValidator",
		},
	}
}
