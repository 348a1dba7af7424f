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

	"github.com/transparency-dev/ctverify/errors"
)

// URI paths of the RFC6962 s4 API, relative to a log's base URL.
const (
	AddChainPath          = "/ct/v1/add-chain"
	AddPreChainPath       = "/ct/v1/add-pre-chain"
	GetSTHPath            = "/ct/v1/get-sth"
	GetEntriesPath        = "/ct/v1/get-entries"
	GetProofByHashPath    = "/ct/v1/get-proof-by-hash"
	GetSTHConsistencyPath = "/ct/v1/get-sth-consistency"
	GetRootsPath          = "/ct/v1/get-roots"
)

// Binary fields of the JSON messages are []byte, which encoding/json carries
// as standard base64.

// AddChainRequest is the body of add-chain and add-pre-chain.
type AddChainRequest struct {
	Chain [][]byte `json:"chain"`
}

// AddChainResponse is the SCT returned by add-chain and add-pre-chain.
type AddChainResponse struct {
	SCTVersion Version `json:"sct_version"`
	ID         []byte  `json:"id"`
	Timestamp  uint64  `json:"timestamp"`
	Extensions string  `json:"extensions"`
	Signature  []byte  `json:"signature"`
}

// ToSignedCertificateTimestamp converts r into a V1 SCT.
func (r *AddChainResponse) ToSignedCertificateTimestamp() (*SignedCertificateTimestamp, error) {
	if err := checkVersion("add-chain SCT", r.SCTVersion); err != nil {
		return nil, err
	}
	if len(r.ID) != sha256.Size {
		return nil, malformed("log id has %d bytes, want %d", len(r.ID), sha256.Size)
	}
	ext, err := decodeBase64(r.Extensions)
	if err != nil {
		return nil, malformed("invalid extensions: %v", err)
	}
	sct := &SignedCertificateTimestamp{
		SCTVersion: r.SCTVersion,
		Timestamp:  r.Timestamp,
		Extensions: ext,
	}
	copy(sct.LogID[:], r.ID)
	if err := sct.Signature.UnmarshalBinary(r.Signature); err != nil {
		return nil, err
	}
	return sct, nil
}

// GetSTHResponse is the body returned by get-sth.
type GetSTHResponse struct {
	TreeSize          uint64 `json:"tree_size"`
	Timestamp         uint64 `json:"timestamp"`
	SHA256RootHash    []byte `json:"sha256_root_hash"`
	TreeHeadSignature []byte `json:"tree_head_signature"`
}

// ToSignedTreeHead converts r into a V1 STH. A missing root hash or
// signature is an error rather than a zero value.
func (r *GetSTHResponse) ToSignedTreeHead() (*SignedTreeHead, error) {
	if len(r.SHA256RootHash) == 0 {
		return nil, errors.New(errors.MissingInput, "get-sth: missing sha256_root_hash")
	}
	if len(r.SHA256RootHash) != sha256.Size {
		return nil, malformed("get-sth: root hash has %d bytes, want %d", len(r.SHA256RootHash), sha256.Size)
	}
	if len(r.TreeHeadSignature) == 0 {
		return nil, errors.New(errors.MissingInput, "get-sth: missing tree_head_signature")
	}
	sth := &SignedTreeHead{
		Version:   V1,
		TreeSize:  r.TreeSize,
		Timestamp: r.Timestamp,
	}
	copy(sth.SHA256RootHash[:], r.SHA256RootHash)
	if err := sth.TreeHeadSignature.UnmarshalBinary(r.TreeHeadSignature); err != nil {
		return nil, err
	}
	return sth, nil
}

// GetSTHConsistencyResponse is the body returned by get-sth-consistency.
type GetSTHConsistencyResponse struct {
	Consistency [][]byte `json:"consistency"`
}

// GetProofByHashResponse is the body returned by get-proof-by-hash.
type GetProofByHashResponse struct {
	LeafIndex uint64   `json:"leaf_index"`
	AuditPath [][]byte `json:"audit_path"`
}

// LeafEntry is one entry of a get-entries response.
type LeafEntry struct {
	// LeafInput is a serialized MerkleTreeLeaf.
	LeafInput []byte `json:"leaf_input"`
	// ExtraData holds the chain, which depends on the entry type.
	ExtraData []byte `json:"extra_data"`
}

// GetEntriesResponse is the body returned by get-entries.
type GetEntriesResponse struct {
	Entries []LeafEntry `json:"entries"`
}

// GetRootsResponse is the body returned by get-roots.
type GetRootsResponse struct {
	Certificates [][]byte `json:"certificates"`
}
