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
	"crypto/x509"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// ParseSCTList decodes a SignedCertificateTimestampList: a 2-byte length
// prefixed list of 2-byte length prefixed serialized SCTs.
func ParseSCTList(data []byte) ([]*SignedCertificateTimestamp, error) {
	s := cryptobyte.String(data)
	var list cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&list) || !s.Empty() {
		return nil, malformed("invalid SignedCertificateTimestampList")
	}
	var scts []*SignedCertificateTimestamp
	for !list.Empty() {
		var raw cryptobyte.String
		if !list.ReadUint16LengthPrefixed(&raw) {
			return nil, malformed("truncated SerializedSCT")
		}
		sct, err := ParseSCT(raw)
		if err != nil {
			return nil, err
		}
		scts = append(scts, sct)
	}
	return scts, nil
}

// MarshalSCTList encodes scts as a SignedCertificateTimestampList.
func MarshalSCTList(scts []*SignedCertificateTimestamp) ([]byte, error) {
	var b cryptobyte.Builder
	var err error
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, sct := range scts {
			b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
				if e := sct.Marshal(b); e != nil && err == nil {
					err = e
				}
			})
		}
	})
	if err != nil {
		return nil, err
	}
	out, bErr := b.Bytes()
	if bErr != nil {
		return nil, malformed("%v", bErr)
	}
	return out, nil
}

// EmbeddedSCTs returns the SCTs carried in cert's SCT list extension, or nil
// if it has none. The extension value is an OCTET STRING wrapping the TLS
// encoded list.
func EmbeddedSCTs(cert *x509.Certificate) ([]*SignedCertificateTimestamp, error) {
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(OIDExtensionSCTList) {
			continue
		}
		v := cryptobyte.String(ext.Value)
		var list cryptobyte.String
		if !v.ReadASN1(&list, cbasn1.OCTET_STRING) || !v.Empty() {
			return nil, malformed("SCT list extension is not an OCTET STRING")
		}
		return ParseSCTList(list)
	}
	return nil, nil
}
