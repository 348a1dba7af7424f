// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ct

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/transparency-dev/ctverify/errors"
)

var (
	// OIDExtensionSCTList is the embedded SignedCertificateTimestampList
	// extension (RFC6962 s3.3).
	OIDExtensionSCTList = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 2}
	// OIDExtensionCTPoison is the critical poison extension that marks a
	// precertificate (RFC6962 s3.1).
	OIDExtensionCTPoison = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 3}
)

// extensionsTag is the [3] EXPLICIT tag of TBSCertificate.extensions.
var extensionsTag = cbasn1.Tag(3).Constructed().ContextSpecific()

// RemoveExtensions returns a copy of the DER TBSCertificate tbs without the
// extensions whose OIDs are listed. All other elements are copied through
// unchanged. If no extension remains the extensions field is dropped.
func RemoveExtensions(tbs []byte, oids ...asn1.ObjectIdentifier) ([]byte, error) {
	input := cryptobyte.String(tbs)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, malformed("TBSCertificate is not a single DER SEQUENCE")
	}

	var elems [][]byte
	var exts [][]byte
	hasExts := false
	for !body.Empty() {
		var elem cryptobyte.String
		var tag cbasn1.Tag
		if !body.ReadAnyASN1Element(&elem, &tag) {
			return nil, malformed("truncated TBSCertificate element")
		}
		if tag != extensionsTag {
			if hasExts {
				return nil, malformed("TBSCertificate element after extensions")
			}
			elems = append(elems, elem)
			continue
		}
		kept, err := filterExtensions(elem, oids)
		if err != nil {
			return nil, err
		}
		hasExts, exts = true, kept
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, e := range elems {
			b.AddBytes(e)
		}
		if len(exts) == 0 {
			return
		}
		b.AddASN1(extensionsTag, func(b *cryptobyte.Builder) {
			b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
				for _, e := range exts {
					b.AddBytes(e)
				}
			})
		})
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, malformed("re-encoding TBSCertificate: %v", err)
	}
	return out, nil
}

// filterExtensions returns the raw Extension elements of the [3] field elem
// whose OID is not in oids.
func filterExtensions(elem cryptobyte.String, oids []asn1.ObjectIdentifier) ([][]byte, error) {
	var wrapper, list cryptobyte.String
	if !elem.ReadASN1(&wrapper, extensionsTag) || !wrapper.ReadASN1(&list, cbasn1.SEQUENCE) || !wrapper.Empty() {
		return nil, malformed("invalid TBSCertificate extensions")
	}
	var kept [][]byte
	for !list.Empty() {
		var ext cryptobyte.String
		if !list.ReadASN1Element(&ext, cbasn1.SEQUENCE) {
			return nil, malformed("invalid Extension")
		}
		inner := ext
		var fields cryptobyte.String
		var oid asn1.ObjectIdentifier
		if !inner.ReadASN1(&fields, cbasn1.SEQUENCE) || !fields.ReadASN1ObjectIdentifier(&oid) {
			return nil, malformed("invalid Extension id")
		}
		if !oidIn(oid, oids) {
			kept = append(kept, ext)
		}
	}
	return kept, nil
}

func oidIn(oid asn1.ObjectIdentifier, oids []asn1.ObjectIdentifier) bool {
	for _, o := range oids {
		if oid.Equal(o) {
			return true
		}
	}
	return false
}

func hasExtension(cert *x509.Certificate, oid asn1.ObjectIdentifier) bool {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oid) {
			return true
		}
	}
	return false
}

// IsPrecertificate reports whether cert carries the CT poison extension.
func IsPrecertificate(cert *x509.Certificate) bool {
	return cert != nil && hasExtension(cert, OIDExtensionCTPoison)
}

// X509SignedEntry returns the entry for a final certificate logged as-is.
func X509SignedEntry(cert *x509.Certificate) SignedEntry {
	return SignedEntry{EntryType: X509LogEntryType, X509Entry: cert.Raw}
}

// PrecertSignedEntry returns the precert entry for cert as issued by
// issuer. cert may be a precertificate (the poison is removed) or a final
// certificate with embedded SCTs (the SCT list is removed); either way the
// TBSCertificate matches what the log signed. Precertificates issued by a
// dedicated precert signing certificate are not supported.
func PrecertSignedEntry(cert, issuer *x509.Certificate) (SignedEntry, error) {
	if cert == nil {
		return SignedEntry{}, errors.New(errors.MissingInput, "nil certificate")
	}
	if issuer == nil {
		return SignedEntry{}, errors.New(errors.MissingInput, "precert entry needs the issuer certificate")
	}
	tbs, err := RemoveExtensions(cert.RawTBSCertificate, OIDExtensionSCTList, OIDExtensionCTPoison)
	if err != nil {
		return SignedEntry{}, err
	}
	return SignedEntry{
		EntryType: PrecertLogEntryType,
		PrecertEntry: &PreCert{
			IssuerKeyHash:  sha256.Sum256(issuer.RawSubjectPublicKeyInfo),
			TBSCertificate: tbs,
		},
	}, nil
}

// SignedEntryForChain picks the entry an SCT for chain[0] was issued over.
// Precertificates and certificates carrying embedded SCTs map to precert
// entries and need chain[1] as the issuer; other certificates are X.509
// entries.
func SignedEntryForChain(chain []*x509.Certificate) (SignedEntry, error) {
	if len(chain) == 0 || chain[0] == nil {
		return SignedEntry{}, errors.New(errors.MissingInput, "empty chain")
	}
	leaf := chain[0]
	if !IsPrecertificate(leaf) && !hasExtension(leaf, OIDExtensionSCTList) {
		return X509SignedEntry(leaf), nil
	}
	var issuer *x509.Certificate
	if len(chain) > 1 {
		issuer = chain[1]
	}
	return PrecertSignedEntry(leaf, issuer)
}
