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
	"golang.org/x/crypto/cryptobyte"

	"github.com/transparency-dev/ctverify/errors"
)

// Length prefix limits of the variable-length fields.
const (
	maxUint16Len = 1<<16 - 1
	maxUint24Len = 1<<24 - 1
)

func malformed(format string, a ...interface{}) error {
	return errors.Errorf(errors.MalformedEncoding, format, a...)
}

// marshal runs v through a fresh builder. Builder failures can only come from
// a payload that does not fit its length prefix.
func marshal(v cryptobyte.MarshalingValue) ([]byte, error) {
	var b cryptobyte.Builder
	if err := v.Marshal(&b); err != nil {
		return nil, err
	}
	out, err := b.Bytes()
	if err != nil {
		return nil, malformed("%v", err)
	}
	return out, nil
}

// unmarshaler is implemented by the wire types of this package.
type unmarshaler interface {
	Unmarshal(s *cryptobyte.String) error
}

func unmarshalAll(data []byte, v unmarshaler, what string) error {
	s := cryptobyte.String(data)
	if err := v.Unmarshal(&s); err != nil {
		return err
	}
	if !s.Empty() {
		return malformed("%d trailing bytes after %s", len(s), what)
	}
	return nil
}

func checkLen(what string, n, max int) error {
	if n > max {
		return malformed("%s: length %d exceeds %d", what, n, max)
	}
	return nil
}

// copyBytes detaches a decoded field from the input buffer. Empty fields
// come back as nil.
func copyBytes(s cryptobyte.String) []byte {
	if len(s) == 0 {
		return nil
	}
	return append([]byte(nil), s...)
}

// Marshal implements cryptobyte.MarshalingValue.
func (d *DigitallySigned) Marshal(b *cryptobyte.Builder) error {
	if err := checkLen("signature", len(d.Signature), maxUint16Len); err != nil {
		return err
	}
	b.AddUint8(uint8(d.Hash))
	b.AddUint8(uint8(d.Algorithm))
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(d.Signature)
	})
	return nil
}

// Unmarshal reads a DigitallySigned from s.
func (d *DigitallySigned) Unmarshal(s *cryptobyte.String) error {
	var hash, alg uint8
	var sig cryptobyte.String
	if !s.ReadUint8(&hash) || !s.ReadUint8(&alg) {
		return malformed("truncated DigitallySigned header")
	}
	if !s.ReadUint16LengthPrefixed(&sig) {
		return malformed("truncated DigitallySigned signature")
	}
	d.Hash = HashAlgorithm(hash)
	d.Algorithm = SignatureAlgorithm(alg)
	d.Signature = copyBytes(sig)
	return nil
}

// MarshalBinary returns the canonical encoding of d.
func (d *DigitallySigned) MarshalBinary() ([]byte, error) {
	return marshal(d)
}

// UnmarshalBinary decodes data, which must hold exactly one DigitallySigned.
func (d *DigitallySigned) UnmarshalBinary(data []byte) error {
	return unmarshalAll(data, d, "DigitallySigned")
}

// Marshal implements cryptobyte.MarshalingValue.
func (p *PreCert) Marshal(b *cryptobyte.Builder) error {
	if err := checkLen("tbs_certificate", len(p.TBSCertificate), maxUint24Len); err != nil {
		return err
	}
	b.AddBytes(p.IssuerKeyHash[:])
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(p.TBSCertificate)
	})
	return nil
}

// Unmarshal reads a PreCert from s.
func (p *PreCert) Unmarshal(s *cryptobyte.String) error {
	var tbs cryptobyte.String
	if !s.CopyBytes(p.IssuerKeyHash[:]) {
		return malformed("truncated PreCert issuer_key_hash")
	}
	if !s.ReadUint24LengthPrefixed(&tbs) {
		return malformed("truncated PreCert tbs_certificate")
	}
	p.TBSCertificate = copyBytes(tbs)
	return nil
}

// MarshalBinary returns the canonical encoding of p.
func (p *PreCert) MarshalBinary() ([]byte, error) {
	return marshal(p)
}

// UnmarshalBinary decodes data, which must hold exactly one PreCert.
func (p *PreCert) UnmarshalBinary(data []byte) error {
	return unmarshalAll(data, p, "PreCert")
}

// Marshal implements cryptobyte.MarshalingValue. X.509 entries carry a
// 3-byte length before the certificate; precertificate entries embed the
// PreCert directly.
func (e *TimestampedEntry) Marshal(b *cryptobyte.Builder) error {
	if err := checkLen("extensions", len(e.Extensions), maxUint16Len); err != nil {
		return err
	}
	b.AddUint64(e.Timestamp)
	b.AddUint16(uint16(e.EntryType))
	switch e.EntryType {
	case X509LogEntryType:
		if err := checkLen("x509 entry", len(e.X509Entry), maxUint24Len); err != nil {
			return err
		}
		b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(e.X509Entry)
		})
	case PrecertLogEntryType:
		if e.PrecertEntry == nil {
			return errors.New(errors.MissingInput, "precert entry without PreCert")
		}
		if err := e.PrecertEntry.Marshal(b); err != nil {
			return err
		}
	default:
		return malformed("unknown entry type %d", e.EntryType)
	}
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(e.Extensions)
	})
	return nil
}

// Unmarshal reads a TimestampedEntry from s. An unknown entry type is
// malformed since the layout of what follows depends on it.
func (e *TimestampedEntry) Unmarshal(s *cryptobyte.String) error {
	var entryType uint16
	if !s.ReadUint64(&e.Timestamp) || !s.ReadUint16(&entryType) {
		return malformed("truncated TimestampedEntry header")
	}
	e.EntryType = LogEntryType(entryType)
	e.X509Entry, e.PrecertEntry = nil, nil
	switch e.EntryType {
	case X509LogEntryType:
		var cert cryptobyte.String
		if !s.ReadUint24LengthPrefixed(&cert) {
			return malformed("truncated x509 entry")
		}
		e.X509Entry = copyBytes(cert)
	case PrecertLogEntryType:
		var pc PreCert
		if err := pc.Unmarshal(s); err != nil {
			return err
		}
		e.PrecertEntry = &pc
	default:
		return malformed("unknown entry type %d", entryType)
	}
	var ext cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&ext) {
		return malformed("truncated TimestampedEntry extensions")
	}
	e.Extensions = copyBytes(ext)
	return nil
}

// MarshalBinary returns the canonical encoding of e.
func (e *TimestampedEntry) MarshalBinary() ([]byte, error) {
	return marshal(e)
}

// UnmarshalBinary decodes data, which must hold exactly one TimestampedEntry.
func (e *TimestampedEntry) UnmarshalBinary(data []byte) error {
	return unmarshalAll(data, e, "TimestampedEntry")
}

// Marshal implements cryptobyte.MarshalingValue.
func (l *MerkleTreeLeaf) Marshal(b *cryptobyte.Builder) error {
	if l.LeafType != TimestampedEntryLeafType {
		return malformed("unknown leaf type %d", l.LeafType)
	}
	if l.TimestampedEntry == nil {
		return errors.New(errors.MissingInput, "MerkleTreeLeaf without TimestampedEntry")
	}
	b.AddUint8(uint8(l.Version))
	b.AddUint8(uint8(l.LeafType))
	return l.TimestampedEntry.Marshal(b)
}

// Unmarshal reads a MerkleTreeLeaf from s. The version is passed through
// uninterpreted; ParseMerkleTreeLeaf rejects versions other than V1.
func (l *MerkleTreeLeaf) Unmarshal(s *cryptobyte.String) error {
	var version, leafType uint8
	if !s.ReadUint8(&version) || !s.ReadUint8(&leafType) {
		return malformed("truncated MerkleTreeLeaf header")
	}
	l.Version = Version(version)
	l.LeafType = MerkleLeafType(leafType)
	if l.LeafType != TimestampedEntryLeafType {
		return malformed("unknown leaf type %d", leafType)
	}
	var te TimestampedEntry
	if err := te.Unmarshal(s); err != nil {
		return err
	}
	l.TimestampedEntry = &te
	return nil
}

// MarshalBinary returns the canonical encoding of l.
func (l *MerkleTreeLeaf) MarshalBinary() ([]byte, error) {
	return marshal(l)
}

// UnmarshalBinary decodes data, which must hold exactly one MerkleTreeLeaf.
func (l *MerkleTreeLeaf) UnmarshalBinary(data []byte) error {
	return unmarshalAll(data, l, "MerkleTreeLeaf")
}

// Marshal implements cryptobyte.MarshalingValue.
func (sct *SignedCertificateTimestamp) Marshal(b *cryptobyte.Builder) error {
	if err := checkLen("extensions", len(sct.Extensions), maxUint16Len); err != nil {
		return err
	}
	b.AddUint8(uint8(sct.SCTVersion))
	b.AddBytes(sct.LogID[:])
	b.AddUint64(sct.Timestamp)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(sct.Extensions)
	})
	return sct.Signature.Marshal(b)
}

// Unmarshal reads an SCT from s, without interpreting its version.
func (sct *SignedCertificateTimestamp) Unmarshal(s *cryptobyte.String) error {
	var version uint8
	var ext cryptobyte.String
	if !s.ReadUint8(&version) {
		return malformed("truncated SCT version")
	}
	if !s.CopyBytes(sct.LogID[:]) {
		return malformed("truncated SCT log id")
	}
	if !s.ReadUint64(&sct.Timestamp) {
		return malformed("truncated SCT timestamp")
	}
	if !s.ReadUint16LengthPrefixed(&ext) {
		return malformed("truncated SCT extensions")
	}
	sct.SCTVersion = Version(version)
	sct.Extensions = copyBytes(ext)
	return sct.Signature.Unmarshal(s)
}

// MarshalBinary returns the canonical encoding of sct.
func (sct *SignedCertificateTimestamp) MarshalBinary() ([]byte, error) {
	return marshal(sct)
}

// UnmarshalBinary decodes data, which must hold exactly one SCT.
func (sct *SignedCertificateTimestamp) UnmarshalBinary(data []byte) error {
	return unmarshalAll(data, sct, "SignedCertificateTimestamp")
}

// Marshal implements cryptobyte.MarshalingValue. RFC6962 only defines the
// JSON form of an STH and its signature input; this binary form is the one
// used to persist tree heads: version, timestamp, tree size, root hash and
// signature.
func (sth *SignedTreeHead) Marshal(b *cryptobyte.Builder) error {
	b.AddUint8(uint8(sth.Version))
	b.AddUint64(sth.Timestamp)
	b.AddUint64(sth.TreeSize)
	b.AddBytes(sth.SHA256RootHash[:])
	return sth.TreeHeadSignature.Marshal(b)
}

// Unmarshal reads an STH from s, without interpreting its version.
func (sth *SignedTreeHead) Unmarshal(s *cryptobyte.String) error {
	var version uint8
	if !s.ReadUint8(&version) || !s.ReadUint64(&sth.Timestamp) || !s.ReadUint64(&sth.TreeSize) {
		return malformed("truncated SignedTreeHead header")
	}
	if !s.CopyBytes(sth.SHA256RootHash[:]) {
		return malformed("truncated SignedTreeHead root hash")
	}
	sth.Version = Version(version)
	return sth.TreeHeadSignature.Unmarshal(s)
}

// MarshalBinary returns the binary encoding of sth.
func (sth *SignedTreeHead) MarshalBinary() ([]byte, error) {
	return marshal(sth)
}

// UnmarshalBinary decodes data, which must hold exactly one SignedTreeHead.
func (sth *SignedTreeHead) UnmarshalBinary(data []byte) error {
	return unmarshalAll(data, sth, "SignedTreeHead")
}

func checkVersion(what string, v Version) error {
	if v != V1 {
		return errors.Errorf(errors.UnsupportedVersion, "%s: unsupported version %v", what, v)
	}
	return nil
}

// ParseSCT decodes a V1 SCT.
func ParseSCT(data []byte) (*SignedCertificateTimestamp, error) {
	var sct SignedCertificateTimestamp
	if err := sct.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	if err := checkVersion("SCT", sct.SCTVersion); err != nil {
		return nil, err
	}
	return &sct, nil
}

// ParseSTH decodes a V1 STH in the binary form written by MarshalBinary.
func ParseSTH(data []byte) (*SignedTreeHead, error) {
	var sth SignedTreeHead
	if err := sth.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	if err := checkVersion("STH", sth.Version); err != nil {
		return nil, err
	}
	return &sth, nil
}

// ParseMerkleTreeLeaf decodes a V1 MerkleTreeLeaf, as returned in the
// leaf_input field of get-entries.
func ParseMerkleTreeLeaf(data []byte) (*MerkleTreeLeaf, error) {
	var leaf MerkleTreeLeaf
	if err := leaf.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	if err := checkVersion("MerkleTreeLeaf", leaf.Version); err != nil {
		return nil, err
	}
	return &leaf, nil
}
