// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// ldaps-cert-retriever is a command-line tool for retrieving, validating,
// and bundling the X.509 certificate chain an LDAPS directory server
// presents during the TLS handshake.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/ldapskit/ldaps-cert-retriever/cmd/ldaps-cert-retriever@latest
//
// # Usage
//
//	ldaps-cert-retriever -s SERVER [FLAGS]
//
// # Flags
//
//	-s, --server   Directory server hostname or IP
//	-p, --port     Server port (default: 636, or 389 with --starttls)
//	    --starttls Connect in plaintext and upgrade via LDAP STARTTLS
//	    --format   Bundle format: pem or der (default: pem)
//	    --pkcs7    Emit a degenerate PKCS7 SignedData certificate set
//	-o, --output   Destination file (default: stdout)
//	    --timeout  Connect and handshake timeout (default: 10s)
//	-d, --debug    Print per-certificate details and the chain table
//	-t, --test     Probe the known-good endpoint list and report
//	    --force    Emit the bundle even when the chain is invalid
//
// # Examples
//
// Capture a directory server's chain into a PEM trust-anchor bundle:
//
//	ldaps-cert-retriever -s ldap.example.com -o ldap-chain.pem
//
// Capture via STARTTLS on the plaintext LDAP port:
//
//	ldaps-cert-retriever -s ldap.example.com --starttls > ldap-chain.pem
//
// Probe the known-good reference endpoints:
//
//	ldaps-cert-retriever --test
//
// Verify the output with OpenSSL:
//
//	openssl verify -CAfile ldap-chain.pem ldap-chain.pem
package main
