// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package diag implements the diagnostic harness behind the --test flag. It
// probes a list of known-good LDAPS endpoints sequentially, capturing and
// ordering each server's certificate chain, and renders an aggregate
// pass/fail summary. Individual endpoint failures are recorded, never fatal.
package diag
