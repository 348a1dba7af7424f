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

// STHSignatureInputSize is the length of a serialized TreeHeadSignature.
const STHSignatureInputSize = 1 + 1 + 8 + 8 + 32

// timestampedEntryFor pairs an SCT with the entry it was issued for.
func timestampedEntryFor(timestamp uint64, entry SignedEntry, extensions []byte) (*TimestampedEntry, error) {
	switch entry.EntryType {
	case X509LogEntryType:
		if len(entry.X509Entry) == 0 {
			return nil, errors.New(errors.MissingInput, "x509 entry without certificate")
		}
	case PrecertLogEntryType:
		if entry.PrecertEntry == nil {
			return nil, errors.New(errors.MissingInput, "precert entry without PreCert")
		}
	default:
		return nil, malformed("unknown entry type %d", entry.EntryType)
	}
	return &TimestampedEntry{
		Timestamp:    timestamp,
		EntryType:    entry.EntryType,
		X509Entry:    entry.X509Entry,
		PrecertEntry: entry.PrecertEntry,
		Extensions:   extensions,
	}, nil
}

// SerializeSCTSignatureInput returns the bytes a log signs when it issues sct
// for entry:
//
//	version ‖ signature_type(0) ‖ timestamp ‖ entry_type ‖ signed_entry ‖ extensions
//
// which is the version and signature type followed by the TimestampedEntry.
func SerializeSCTSignatureInput(sct *SignedCertificateTimestamp, entry SignedEntry) ([]byte, error) {
	if sct == nil {
		return nil, errors.New(errors.MissingInput, "nil SCT")
	}
	if err := checkVersion("SCT", sct.SCTVersion); err != nil {
		return nil, err
	}
	te, err := timestampedEntryFor(sct.Timestamp, entry, sct.Extensions)
	if err != nil {
		return nil, err
	}
	var b cryptobyte.Builder
	b.AddUint8(uint8(sct.SCTVersion))
	b.AddUint8(uint8(CertificateTimestampSignatureType))
	if err := te.Marshal(&b); err != nil {
		return nil, err
	}
	out, err := b.Bytes()
	if err != nil {
		return nil, malformed("%v", err)
	}
	return out, nil
}

// SerializeSTHSignatureInput returns the 50 bytes a log signs for a tree head:
//
//	version ‖ signature_type(1) ‖ timestamp ‖ tree_size ‖ root_hash
func SerializeSTHSignatureInput(sth *SignedTreeHead) ([]byte, error) {
	if sth == nil {
		return nil, errors.New(errors.MissingInput, "nil STH")
	}
	if err := checkVersion("STH", sth.Version); err != nil {
		return nil, err
	}
	b := cryptobyte.NewFixedBuilder(make([]byte, 0, STHSignatureInputSize))
	b.AddUint8(uint8(sth.Version))
	b.AddUint8(uint8(TreeHashSignatureType))
	b.AddUint64(sth.Timestamp)
	b.AddUint64(sth.TreeSize)
	b.AddBytes(sth.SHA256RootHash[:])
	return b.BytesOrPanic(), nil
}

// MerkleTreeLeafForSCT builds the leaf a log adds to its tree for an entry
// it issued sct for.
func MerkleTreeLeafForSCT(sct *SignedCertificateTimestamp, entry SignedEntry) (*MerkleTreeLeaf, error) {
	if sct == nil {
		return nil, errors.New(errors.MissingInput, "nil SCT")
	}
	if err := checkVersion("SCT", sct.SCTVersion); err != nil {
		return nil, err
	}
	te, err := timestampedEntryFor(sct.Timestamp, entry, sct.Extensions)
	if err != nil {
		return nil, err
	}
	return &MerkleTreeLeaf{
		Version:          V1,
		LeafType:         TimestampedEntryLeafType,
		TimestampedEntry: te,
	}, nil
}
