// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads retriever configuration from an optional JSON or YAML
// file named by the LDAPS_RETRIEVER_CONFIG_FILE environment variable. When no
// file is configured, built-in defaults apply: a 10 second per-attempt
// timeout, PEM output, and the public reference LDAPS endpoints used by the
// diagnostic harness.
package config
