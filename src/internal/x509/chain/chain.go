// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"github.com/ldapskit/ldaps-cert-retriever/src/internal/helper/gc"
	x509certs "github.com/ldapskit/ldaps-cert-retriever/src/internal/x509/certs"
)

// Status classifies the outcome of ordering and cross-checking a chain.
type Status int

const (
	// Complete means the chain ends in a self-signed root whose
	// self-signature verifies.
	Complete Status = iota

	// PartialMissingRoot means every presented link verified but the final
	// certificate's issuer was not presented by the server. Many LDAP
	// clients only need the chain up to a locally trusted root, so a
	// partial chain is still emittable with a warning.
	PartialMissingRoot

	// Invalid means an issuer was found for a link but its signature did
	// not verify against the issuer's public key.
	Invalid
)

// String returns the status name used in diagnostics and JSON reports.
func (s Status) String() string {
	switch s {
	case Complete:
		return "complete"
	case PartialMissingRoot:
		return "partial-missing-root"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result describes how a chain build went.
type Result struct {
	// Status is the structural classification of the ordered chain.
	Status Status

	// BreakAt is the chain position of the certificate whose signature
	// failed to verify when Status is Invalid, and -1 otherwise.
	BreakAt int

	// Ignored holds input certificates not consumed by the chain walk,
	// e.g. unrelated or duplicate certificates sent by the server.
	Ignored []*x509.Certificate

	// Ambiguous holds chain positions where more than one candidate issuer
	// matched and the validity-window rule did not single one out, so the
	// first certificate in input order was used.
	Ambiguous []int
}

// Chain manages an ordered [X.509] certificate chain, leaf first.
//
// [X.509]: https://grokipedia.com/page/X.509
type Chain struct {
	mu sync.RWMutex

	// Certs is the certificate sequence. Before Order it holds the raw
	// certificates in server transmission order; after Order it holds the
	// reconstructed leaf-to-root chain.
	Certs []*x509.Certificate
	*x509certs.Certificate

	// Result is populated by Order.
	Result Result
}

// New creates a new Chain from certificates in server transmission order.
func New(certs []*x509.Certificate) *Chain {
	return &Chain{
		Certs:       certs,
		Certificate: x509certs.New(),
		Result:      Result{BreakAt: -1},
	}
}

// IsSelfSigned checks if a certificate is self-signed: its issuer equals
// its own subject and the signature verifies against its own public key.
func (ch *Chain) IsSelfSigned(cert *x509.Certificate) bool {
	if !bytes.Equal(cert.RawSubject, cert.RawIssuer) {
		return false
	}
	return cert.CheckSignatureFrom(cert) == nil
}

// Complete reports whether the last Order call classified the chain as
// ending in a verified self-signed root.
func (ch *Chain) Complete() bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.Result.Status == Complete
}

// FilterIntermediates returns the certificates between the leaf and the
// final entry, or nil when the chain has two or fewer certificates.
func (ch *Chain) FilterIntermediates() []*x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) <= 2 {
		return nil
	}
	return ch.Certs[1 : len(ch.Certs)-1]
}

// Order reconstructs the issuance chain from the raw certificate set and
// verifies every link, replacing Certs with the ordered leaf-to-root
// sequence and recording the classification in Result.
//
// The walk is an explicit directed-edge lookup keyed by subject: the leaf
// is the certificate no other certificate claims as its issuer, and the
// chain is extended by resolving each tail's issuer against the subject
// index and checking the tail's signature with the candidate's public key.
// When several candidates share the required subject (rotated CAs), the
// one whose validity window contains now is preferred; with zero or more
// than one in-window candidate the first in input order wins and the
// position is flagged in Result.Ambiguous.
func (ch *Chain) Order(now time.Time) Result {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	input := ch.Certs
	result := Result{BreakAt: -1}

	if len(input) == 0 {
		result.Status = PartialMissingRoot
		ch.Result = result
		return result
	}

	// Subject index: directed edges from issuer name to candidate issuers.
	bySubject := make(map[string][]int, len(input))
	for i, cert := range input {
		key := string(cert.RawSubject)
		bySubject[key] = append(bySubject[key], i)
	}

	// Issuer claims: which certificates name a given subject as their
	// issuer. A self-reference does not disqualify a certificate from
	// being the leaf (a lone self-signed certificate is its own issuer).
	claimants := make(map[string][]int, len(input))
	for i, cert := range input {
		key := string(cert.RawIssuer)
		claimants[key] = append(claimants[key], i)
	}
	isLeaf := func(i int) bool {
		for _, j := range claimants[string(input[i].RawSubject)] {
			if j != i {
				return false
			}
		}
		return true
	}

	// The leaf is the first certificate, in input order, that nothing else
	// claims to have been issued by. Servers conventionally transmit the
	// leaf first, so this is usually a consistency check rather than
	// discovery.
	leaf := 0
	for i := range input {
		if isLeaf(i) {
			leaf = i
			break
		}
	}

	used := make([]bool, len(input))
	used[leaf] = true
	ordered := []*x509.Certificate{input[leaf]}

	for {
		tail := ordered[len(ordered)-1]

		if bytes.Equal(tail.RawSubject, tail.RawIssuer) {
			if tail.CheckSignatureFrom(tail) == nil {
				result.Status = Complete
			} else {
				result.Status = Invalid
				result.BreakAt = len(ordered) - 1
			}
			break
		}

		var candidates []int
		for _, j := range bySubject[string(tail.RawIssuer)] {
			if !used[j] {
				candidates = append(candidates, j)
			}
		}

		if len(candidates) == 0 {
			result.Status = PartialMissingRoot
			break
		}

		pick := selectIssuer(input, candidates, now)
		if pick < 0 {
			pick = candidates[0]
			if len(candidates) > 1 {
				result.Ambiguous = append(result.Ambiguous, len(ordered))
			}
		}

		if err := tail.CheckSignatureFrom(input[pick]); err != nil {
			result.Status = Invalid
			result.BreakAt = len(ordered) - 1
			break
		}

		used[pick] = true
		ordered = append(ordered, input[pick])
	}

	for i, cert := range input {
		if !used[i] {
			result.Ignored = append(result.Ignored, cert)
		}
	}

	ch.Certs = ordered
	ch.Result = result
	return result
}

// selectIssuer applies the validity-window tie-break: it returns the single
// candidate whose NotBefore/NotAfter interval contains now, or -1 when zero
// or several qualify.
func selectIssuer(certs []*x509.Certificate, candidates []int, now time.Time) int {
	pick := -1
	for _, j := range candidates {
		cert := certs[j]
		if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
			continue
		}
		if pick >= 0 {
			return -1
		}
		pick = j
	}
	return pick
}

// Role names a certificate's position in the chain: "leaf",
// "intermediate N", or "root" for a verified self-signed terminal entry.
func (ch *Chain) Role(index int) string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.role(index)
}

func (ch *Chain) role(index int) string {
	last := len(ch.Certs) - 1
	switch {
	case index == last && ch.Result.Status == Complete:
		if index == 0 {
			return "self-signed leaf"
		}
		return "root"
	case index == 0:
		return "leaf"
	default:
		return fmt.Sprintf("intermediate %d", index)
	}
}

// EncodePEMBundle serializes the ordered chain as concatenated PEM, each
// certificate preceded by a comment line stating its role, subject, and
// issuer. Comment lines sit outside the BEGIN/END delimiters and do not
// affect standard loaders.
func (ch *Chain) EncodePEMBundle() []byte {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	for i, cert := range ch.Certs {
		comment := fmt.Sprintf("%s: %s (issuer: %s)",
			ch.role(i), x509certs.SubjectSummary(cert), x509certs.IssuerSummary(cert))
		buf.Write(ch.EncodePEMWithComment(cert, comment))
	}

	return append([]byte(nil), buf.Bytes()...)
}

// EncodeDERBundle serializes the ordered chain as concatenated DER.
func (ch *Chain) EncodeDERBundle() []byte {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.EncodeMultipleDER(ch.Certs)
}

// EncodePKCS7Bundle serializes the ordered chain as a degenerate PKCS7
// SignedData certificate set.
func (ch *Chain) EncodePKCS7Bundle() ([]byte, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.EncodePKCS7(ch.Certs)
}
