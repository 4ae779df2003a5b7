// Copyright (c) 2025 The ldapskit Authors. All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/asn1"
	"fmt"
)

// PKCS7 object identifiers (RFC 2315).
var (
	oidData       = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	oidSignedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
)

// contentInfo is the outer PKCS7 ContentInfo structure.
type contentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,optional,tag:0"`
}

// degenerateContent is the inner ContentInfo of a certificates-only
// SignedData: the data OID with the optional content absent.
type degenerateContent struct {
	ContentType asn1.ObjectIdentifier
}

// signedData is a PKCS7 SignedData body. Only the fields needed for a
// degenerate certificate-set container are populated: the digest algorithm
// and signer info sets stay empty and the inner content carries no data.
type signedData struct {
	Version          int
	DigestAlgorithms asn1.RawValue
	ContentInfo      degenerateContent
	Certificates     asn1.RawValue `asn1:"optional,tag:0"`
	SignerInfos      asn1.RawValue
}

// emptySet is a DER-encoded empty SET OF.
var emptySet = asn1.RawValue{FullBytes: []byte{0x31, 0x00}}

// EncodePKCS7 encodes certificates into a degenerate PKCS7 SignedData
// container (a certificate set with no signers), the multi-certificate DER
// container understood by most directory-service clients.
func (c *Certificate) EncodePKCS7(certs []*x509.Certificate) ([]byte, error) {
	var rawCerts []byte
	for _, cert := range certs {
		rawCerts = append(rawCerts, cert.Raw...)
	}

	sd := signedData{
		Version:          1,
		DigestAlgorithms: emptySet,
		ContentInfo:      degenerateContent{ContentType: oidData},
		Certificates: asn1.RawValue{
			Class:      asn1.ClassContextSpecific,
			Tag:        0,
			IsCompound: true,
			Bytes:      rawCerts,
		},
		SignerInfos: emptySet,
	}

	sdBytes, err := asn1.Marshal(sd)
	if err != nil {
		return nil, fmt.Errorf("x509certs: failed to marshal PKCS7 SignedData: %w", err)
	}

	outer := contentInfo{
		ContentType: oidSignedData,
		Content:     asn1.RawValue{FullBytes: sdBytes},
	}

	data, err := asn1.Marshal(outer)
	if err != nil {
		return nil, fmt.Errorf("x509certs: failed to marshal PKCS7 ContentInfo: %w", err)
	}

	return data, nil
}
