// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides abstraction and implementation for logging operations.
// It defines the Logger interface and provides two implementations: CLILogger for
// plain human-readable command-line output and ColorLogger for ANSI-colored
// leveled diagnostics in debug mode. Both write to stderr so the bundle emitted
// on stdout remains clean, and both are safe for concurrent use.
package logger
