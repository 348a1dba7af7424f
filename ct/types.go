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

// Package ct holds the RFC6962 data structures and their canonical binary
// encoding.
package ct

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

// Version is the CT protocol version. V1 is encoded as 0 on the wire.
type Version uint8

// CT protocol versions.
const (
	V1 Version = 0
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	default:
		return fmt.Sprintf("UnknownVersion(%d)", uint8(v))
	}
}

// SignatureType differentiates the structures a log signs.
type SignatureType uint8

// Signature types from RFC6962 s3.2.
const (
	CertificateTimestampSignatureType SignatureType = 0
	TreeHashSignatureType             SignatureType = 1
)

// LogEntryType distinguishes certificates from precertificates.
type LogEntryType uint16

// Log entry types from RFC6962 s3.1.
const (
	X509LogEntryType    LogEntryType = 0
	PrecertLogEntryType LogEntryType = 1
)

func (e LogEntryType) String() string {
	switch e {
	case X509LogEntryType:
		return "X509LogEntryType"
	case PrecertLogEntryType:
		return "PrecertLogEntryType"
	default:
		return fmt.Sprintf("UnknownEntryType(%d)", uint16(e))
	}
}

// MerkleLeafType is the type of a MerkleTreeLeaf.
type MerkleLeafType uint8

// TimestampedEntryLeafType is the only leaf type defined by RFC6962.
const TimestampedEntryLeafType MerkleLeafType = 0

// HashAlgorithm is the TLS HashAlgorithm enum (RFC5246 s7.4.1.4.1).
type HashAlgorithm uint8

// SHA256 is the only hash algorithm used by RFC6962 logs.
const SHA256 HashAlgorithm = 4

func (h HashAlgorithm) String() string {
	if h == SHA256 {
		return "SHA256"
	}
	return fmt.Sprintf("UnknownHashAlgorithm(%d)", uint8(h))
}

// SignatureAlgorithm is the TLS SignatureAlgorithm enum (RFC5246 s7.4.1.4.1).
type SignatureAlgorithm uint8

// Signature algorithms.
const (
	Anonymous SignatureAlgorithm = 0
	RSA       SignatureAlgorithm = 1
	DSA       SignatureAlgorithm = 2
	ECDSA     SignatureAlgorithm = 3
)

func (s SignatureAlgorithm) String() string {
	switch s {
	case Anonymous:
		return "Anonymous"
	case RSA:
		return "RSA"
	case DSA:
		return "DSA"
	case ECDSA:
		return "ECDSA"
	default:
		return fmt.Sprintf("UnknownSignatureAlgorithm(%d)", uint8(s))
	}
}

// DigitallySigned is the TLS digitally-signed struct: a 2-byte algorithm
// header followed by a 2-byte length-prefixed signature.
type DigitallySigned struct {
	Hash      HashAlgorithm
	Algorithm SignatureAlgorithm
	Signature []byte
}

// LogID is the SHA-256 hash of a log's DER-encoded SubjectPublicKeyInfo.
type LogID [sha256.Size]byte

func (id LogID) String() string {
	return base64.StdEncoding.EncodeToString(id[:])
}

// SHA256Hash is a SHA-256 digest, used for root hashes.
type SHA256Hash [sha256.Size]byte

// Base64String returns the standard base64 encoding of the hash.
func (h SHA256Hash) Base64String() string {
	return base64.StdEncoding.EncodeToString(h[:])
}

func (h SHA256Hash) String() string {
	return hex.EncodeToString(h[:])
}

// PreCert is the signed_entry of a precertificate log entry.
type PreCert struct {
	// IssuerKeyHash is the SHA-256 of the issuer's SubjectPublicKeyInfo.
	IssuerKeyHash [sha256.Size]byte
	// TBSCertificate is the DER TBSCertificate without the poison and SCT
	// list extensions.
	TBSCertificate []byte
}

// SignedEntry is the part of a TimestampedEntry that depends on the entry
// type. It travels next to an SCT, because an SCT alone does not say what was
// signed.
type SignedEntry struct {
	EntryType    LogEntryType
	X509Entry    []byte   // DER certificate, set for X509LogEntryType.
	PrecertEntry *PreCert // Set for PrecertLogEntryType.
}

// TimestampedEntry is the structure a log both signs (inside an SCT) and
// places in its Merkle tree (inside a MerkleTreeLeaf).
type TimestampedEntry struct {
	Timestamp    uint64
	EntryType    LogEntryType
	X509Entry    []byte
	PrecertEntry *PreCert
	Extensions   []byte
}

// SignedEntry returns the entry-type dependent part of e.
func (e *TimestampedEntry) SignedEntry() SignedEntry {
	return SignedEntry{EntryType: e.EntryType, X509Entry: e.X509Entry, PrecertEntry: e.PrecertEntry}
}

// MerkleTreeLeaf is the unit hashed into a log's Merkle tree.
type MerkleTreeLeaf struct {
	Version          Version
	LeafType         MerkleLeafType
	TimestampedEntry *TimestampedEntry
}

// SignedCertificateTimestamp is a log's promise to incorporate an entry.
type SignedCertificateTimestamp struct {
	SCTVersion Version
	LogID      LogID
	Timestamp  uint64 // Milliseconds since the epoch.
	Extensions []byte
	Signature  DigitallySigned
}

// TimestampTime returns the SCT timestamp as a time.Time.
func (s *SignedCertificateTimestamp) TimestampTime() time.Time {
	return time.UnixMilli(int64(s.Timestamp))
}

func (s *SignedCertificateTimestamp) String() string {
	return fmt.Sprintf("{Version:%v LogId:%v Timestamp:%d Extensions:%x Signature:{%v %v %x}}",
		s.SCTVersion, s.LogID, s.Timestamp, s.Extensions, s.Signature.Hash, s.Signature.Algorithm, s.Signature.Signature)
}

// SignedTreeHead is a log's signed statement about its tree.
type SignedTreeHead struct {
	Version           Version
	TreeSize          uint64
	Timestamp         uint64 // Milliseconds since the epoch.
	SHA256RootHash    SHA256Hash
	TreeHeadSignature DigitallySigned
}

// TimestampTime returns the STH timestamp as a time.Time.
func (s *SignedTreeHead) TimestampTime() time.Time {
	return time.UnixMilli(int64(s.Timestamp))
}

// Same reports whether s and other describe the same tree head, ignoring
// the signature bytes.
func (s *SignedTreeHead) Same(other *SignedTreeHead) bool {
	return s.TreeSize == other.TreeSize && s.Timestamp == other.Timestamp && s.SHA256RootHash == other.SHA256RootHash
}

func (s *SignedTreeHead) String() string {
	return fmt.Sprintf("{TreeSize:%d Timestamp:%d SHA256RootHash:%q}", s.TreeSize, s.Timestamp, s.SHA256RootHash.Base64String())
}

// AuditProof is an inclusion proof: sibling hashes from the leaf up.
type AuditProof struct {
	LeafIndex uint64
	AuditPath [][]byte
}

// ConsistencyProof is the list of hashes proving one tree is a prefix of
// another.
type ConsistencyProof [][]byte

func decodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
