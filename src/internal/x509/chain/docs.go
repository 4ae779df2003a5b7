// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain implements [X.509] certificate chain capture and validation
// for LDAPS directory servers. It provides capabilities to:
//   - Capture the certificate chain a server presents during a TLS handshake,
//     either on a TLS-dedicated port or via an LDAP [STARTTLS] upgrade.
//   - Reconstruct the issuance order (leaf, intermediates, root) from a raw
//     certificate set by subject/issuer lookup and per-link signature checks.
//   - Classify chains as complete, partial (missing root), or invalid.
//   - Render diagnostic summaries, tables, and JSON reports.
//
// All network operations honor context cancellation and a per-attempt
// timeout; a single attempt either captures a chain or fails with a typed
// error.
//
// [X.509]: https://grokipedia.com/page/X.509
// [STARTTLS]: https://grokipedia.com/page/Opportunistic_TLS
package x509chain
