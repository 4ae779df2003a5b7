// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ldapskit/ldaps-cert-retriever/src/version"
)

var appVersion = version.Version // default version

// GetVersion returns the version the server was started with.
func GetVersion() string {
	return appVersion
}

// Run starts the MCP server exposing the LDAPS chain retrieval tools over
// stdio. It registers the fetch_ldaps_chain and validate_cert_chain tools,
// handles SIGINT/SIGTERM for graceful shutdown, and blocks until the client
// disconnects or a signal arrives.
func Run(ver string) error {
	appVersion = ver

	s := server.NewMCPServer(
		"ldaps-cert-retriever",
		ver,
		server.WithToolCapabilities(true),
	)

	for _, def := range createTools() {
		s.AddTool(def.Tool, def.Handler)
	}

	// Cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	stdioServer := server.NewStdioServer(s)

	errChan := make(chan error, 1)
	go func() {
		errChan <- stdioServer.Listen(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("server shutdown: %w", ctx.Err())
	}
}
