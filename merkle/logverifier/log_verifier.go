// Copyright 2017 Google LLC. All Rights Reserved.
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

// Package logverifier verifies inclusion and consistency proofs for RFC6962
// logs.
//
// Verification methods return (false, nil) when a well-formed proof does not
// reproduce the expected root, and an error when the inputs themselves are
// malformed: a missing hash, an out of range index, sizes out of order, or a
// proof with the wrong number of hashes.
package logverifier

import (
	"bytes"
	"math/bits"

	"github.com/transparency-dev/merkle"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

// LogVerifier verifies inclusion and consistency proofs for append only logs.
type LogVerifier struct {
	hasher merkle.LogHasher
}

// New returns a new LogVerifier for a tree.
func New(hasher merkle.LogHasher) LogVerifier {
	return LogVerifier{hasher: hasher}
}

// InclusionProofSize returns the number of hashes in an audit path for
// leafIndex in a tree of treeSize leaves. Requires leafIndex < treeSize.
func InclusionProofSize(leafIndex, treeSize uint64) int {
	size := 0
	for node, lastNode := leafIndex, treeSize-1; lastNode > 0; node, lastNode = node>>1, lastNode>>1 {
		if node&1 == 1 || node < lastNode {
			size++
		}
	}
	return size
}

// ConsistencyProofSize returns the number of hashes in a consistency proof
// between trees of size1 and size2 leaves. Requires 0 < size1 <= size2.
func ConsistencyProofSize(size1, size2 uint64) int {
	m, n := size1, size2
	size, b := 0, 0
	for m != n {
		k := uint64(1) << (bits.Len64(n-1) - 1)
		if m <= k {
			n = k
		} else {
			m, n, b = m-k, n-k, 1
		}
		size++
	}
	return size + b
}

// VerifyInclusionByHash checks that the leaf with the given Merkle leaf hash
// is at leafIndex in the tree described by sth.
func (v LogVerifier) VerifyInclusionByHash(sth *ct.SignedTreeHead, leafIndex uint64, auditPath [][]byte, leafHash []byte) (bool, error) {
	if sth == nil {
		return false, errors.New(errors.MissingInput, "missing STH")
	}
	return v.VerifyInclusionProof(leafIndex, sth.TreeSize, auditPath, sth.SHA256RootHash[:], leafHash)
}

// VerifyInclusion hashes leaf, the serialized leaf data, and checks its
// inclusion as VerifyInclusionByHash does.
func (v LogVerifier) VerifyInclusion(leaf []byte, sth *ct.SignedTreeHead, leafIndex uint64, auditPath [][]byte) (bool, error) {
	return v.VerifyInclusionByHash(sth, leafIndex, auditPath, v.hasher.HashLeaf(leaf))
}

// VerifyMerkleTreeLeafInclusion checks the inclusion of a decoded leaf.
func (v LogVerifier) VerifyMerkleTreeLeafInclusion(leaf *ct.MerkleTreeLeaf, sth *ct.SignedTreeHead, leafIndex uint64, auditPath [][]byte) (bool, error) {
	if leaf == nil {
		return false, errors.New(errors.MissingInput, "missing leaf")
	}
	data, err := leaf.MarshalBinary()
	if err != nil {
		return false, err
	}
	return v.VerifyInclusion(data, sth, leafIndex, auditPath)
}

// VerifyInclusionProof verifies the correctness of the proof given the passed
// in information about the tree and leaf.
func (v LogVerifier) VerifyInclusionProof(leafIndex, treeSize uint64, proof [][]byte, root, leafHash []byte) (bool, error) {
	if len(root) == 0 {
		return false, errors.New(errors.MissingInput, "missing root hash")
	}
	calcRoot, err := v.RootFromInclusionProof(leafIndex, treeSize, proof, leafHash)
	if err != nil {
		return false, err
	}
	return bytes.Equal(calcRoot, root), nil
}

// RootFromInclusionProof calculates the expected tree root given the proof
// and leaf hash. leafIndex starts at 0. treeSize starts at 1.
func (v LogVerifier) RootFromInclusionProof(leafIndex, treeSize uint64, proof [][]byte, leafHash []byte) ([]byte, error) {
	if leafIndex >= treeSize {
		return nil, errors.Errorf(errors.IndexOutOfRange, "leafIndex %d >= treeSize %d", leafIndex, treeSize)
	}
	if len(leafHash) == 0 {
		return nil, errors.New(errors.MissingInput, "missing leaf hash")
	}
	if got, want := len(proof), InclusionProofSize(leafIndex, treeSize); got != want {
		return nil, errors.Errorf(errors.ProofSizeMismatch, "audit path has %d hashes, want %d for leaf %d in tree of size %d", got, want, leafIndex, treeSize)
	}

	nodeHash := leafHash
	proofIndex := 0
	for node, lastNode := leafIndex, treeSize-1; lastNode > 0; node, lastNode = node>>1, lastNode>>1 {
		if node&1 == 1 {
			nodeHash = v.hasher.HashChildren(proof[proofIndex], nodeHash)
			proofIndex++
		} else if node < lastNode {
			nodeHash = v.hasher.HashChildren(nodeHash, proof[proofIndex])
			proofIndex++
		}
		// Otherwise the sibling does not exist and the parent is a dummy copy.
	}
	return nodeHash, nil
}

// VerifyConsistency checks that second describes an append-only extension of
// the tree described by first.
func (v LogVerifier) VerifyConsistency(first, second *ct.SignedTreeHead, proof [][]byte) (bool, error) {
	if first == nil || second == nil {
		return false, errors.New(errors.MissingInput, "missing STH")
	}
	if second.Timestamp < first.Timestamp {
		return false, errors.Errorf(errors.InconsistentOrdering, "second STH timestamp %d < first %d", second.Timestamp, first.Timestamp)
	}
	return v.VerifyConsistencyProof(first.TreeSize, second.TreeSize, first.SHA256RootHash[:], second.SHA256RootHash[:], proof)
}

// VerifyConsistencyProof checks that the passed in consistency proof is valid
// between the passed in tree sizes.
func (v LogVerifier) VerifyConsistencyProof(size1, size2 uint64, root1, root2 []byte, proof [][]byte) (bool, error) {
	if size2 < size1 {
		return false, errors.Errorf(errors.InconsistentOrdering, "size2 (%d) < size1 (%d)", size2, size1)
	}
	if size1 == 0 {
		// Any tree is consistent with the empty tree.
		if len(proof) > 0 {
			return false, errors.Errorf(errors.ProofSizeMismatch, "expected empty proof, but provided proof has %d components", len(proof))
		}
		return true, nil
	}
	if len(root1) == 0 || len(root2) == 0 {
		return false, errors.New(errors.MissingInput, "missing root hash")
	}
	if size1 == size2 {
		if len(proof) > 0 {
			return false, errors.Errorf(errors.ProofSizeMismatch, "sizes match, but proof has %d components", len(proof))
		}
		return bytes.Equal(root1, root2), nil
	}
	if got, want := len(proof), ConsistencyProofSize(size1, size2); got != want {
		return false, errors.Errorf(errors.ProofSizeMismatch, "consistency proof has %d hashes, want %d for sizes %d and %d", got, want, size1, size2)
	}

	node := size1 - 1
	lastNode := size2 - 1
	proofIndex := 0

	for node&1 == 1 {
		node >>= 1
		lastNode >>= 1
	}

	var node1Hash, node2Hash []byte
	if node > 0 {
		node1Hash = proof[proofIndex]
		node2Hash = proof[proofIndex]
		proofIndex++
	} else {
		// The tree at size1 was balanced, nothing to verify for root1.
		node1Hash = root1
		node2Hash = root1
	}

	for ; node > 0; node, lastNode = node>>1, lastNode>>1 {
		if node&1 == 1 {
			node1Hash = v.hasher.HashChildren(proof[proofIndex], node1Hash)
			node2Hash = v.hasher.HashChildren(proof[proofIndex], node2Hash)
			proofIndex++
		} else if node < lastNode {
			// The sibling only exists in the later tree. The parent in the size1
			// tree is a dummy copy.
			node2Hash = v.hasher.HashChildren(node2Hash, proof[proofIndex])
			proofIndex++
		}
	}
	if !bytes.Equal(node1Hash, root1) {
		return false, nil
	}

	for ; lastNode > 0; lastNode >>= 1 {
		node2Hash = v.hasher.HashChildren(node2Hash, proof[proofIndex])
		proofIndex++
	}
	return bytes.Equal(node2Hash, root2), nil
}
