// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli implements the command-line interface for the LDAPS
// certificate chain retriever. It wires flag parsing ([cobra]), chain
// capture and ordering, the diagnostic harness, and bundle output into the
// root command.
//
// [cobra]: https://github.com/spf13/cobra
package cli
