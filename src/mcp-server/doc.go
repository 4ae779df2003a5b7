// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver implements a Model Context Protocol server exposing the
// LDAPS certificate chain retriever over stdio. Two tools are registered:
//
//   - fetch_ldaps_chain: capture and order the chain a directory server
//     presents during the TLS handshake (direct TLS or STARTTLS)
//   - validate_cert_chain: order and cross-check a certificate set given as
//     a file path or base64 data
//
// The server is built on [mcp-go] and shuts down cleanly on SIGINT/SIGTERM.
//
// [mcp-go]: https://github.com/mark3labs/mcp-go
package mcpserver
