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

package client

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/transparency-dev/ctverify/crypto"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
	"github.com/transparency-dev/ctverify/merkle/compact"
	"github.com/transparency-dev/ctverify/merkle/logverifier"
	"github.com/transparency-dev/ctverify/merkle/rfc6962"
)

// Verification failures. They are wrapped with detail, so test with
// errors.Is from the standard library.
var (
	ErrInvalidSignature  = stderrors.New("signature verification failed")
	ErrInconsistentRoots = stderrors.New("consistency proof does not verify")
	ErrNotIncluded       = stderrors.New("inclusion proof does not verify")
	ErrRootMismatch      = stderrors.New("rebuilt tree root does not match STH")
)

// LogVerifier contains state needed to verify output from one CT log.
type LogVerifier struct {
	hasher *rfc6962.Hasher
	sv     *crypto.SignatureVerifier
	v      logverifier.LogVerifier
}

// NewLogVerifier returns an object that can verify output from the log
// whose signatures sv checks.
func NewLogVerifier(hasher *rfc6962.Hasher, sv *crypto.SignatureVerifier) *LogVerifier {
	return &LogVerifier{
		hasher: hasher,
		sv:     sv,
		v:      logverifier.New(hasher),
	}
}

// NewLogVerifierFromDER creates a LogVerifier for an RFC6962 log with the
// given DER SubjectPublicKeyInfo.
func NewLogVerifierFromDER(spki []byte) (*LogVerifier, error) {
	sv, err := crypto.NewSignatureVerifierFromDER(spki)
	if err != nil {
		return nil, fmt.Errorf("client: NewLogVerifierFromDER(): %w", err)
	}
	return NewLogVerifier(rfc6962.DefaultHasher, sv), nil
}

// LogID returns the ID of the log this verifier is for.
func (c *LogVerifier) LogID() ct.LogID {
	return c.sv.LogID
}

// Hasher returns the hasher the log builds its tree with.
func (c *LogVerifier) Hasher() *rfc6962.Hasher {
	return c.hasher
}

// SignatureVerifier returns the log's signature verifier.
func (c *LogVerifier) SignatureVerifier() *crypto.SignatureVerifier {
	return c.sv
}

// VerifySTH checks the log's signature on sth.
func (c *LogVerifier) VerifySTH(sth *ct.SignedTreeHead) error {
	ok, err := c.sv.VerifySTH(sth)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("STH %v: %w", sth, ErrInvalidSignature)
	}
	return nil
}

// VerifySCT checks the log's signature on sct over entry.
func (c *LogVerifier) VerifySCT(sct *ct.SignedCertificateTimestamp, entry ct.SignedEntry) error {
	if sct != nil && sct.LogID != c.sv.LogID {
		return errors.Errorf(errors.UnknownKeyType, "SCT is from log %v, verifier is for %v", sct.LogID, c.sv.LogID)
	}
	ok, err := c.sv.VerifySCT(sct, entry)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("SCT %v: %w", sct, ErrInvalidSignature)
	}
	return nil
}

// VerifyRoot verifies that newSTH is correctly signed and is a valid
// append-only extension of trusted. If trusted.TreeSize is zero, a
// consistency proof is not needed.
func (c *LogVerifier) VerifyRoot(trusted, newSTH *ct.SignedTreeHead, consistency [][]byte) error {
	if trusted == nil {
		return errors.New(errors.MissingInput, "VerifyRoot() error: trusted == nil")
	}
	if newSTH == nil {
		return errors.New(errors.MissingInput, "VerifyRoot() error: newSTH == nil")
	}

	if err := c.VerifySTH(newSTH); err != nil {
		return err
	}

	// Implicitly trust the first root we get.
	if trusted.TreeSize == 0 {
		return nil
	}
	ok, err := c.v.VerifyConsistency(trusted, newSTH, consistency)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%d -> %d: %w", trusted.TreeSize, newSTH.TreeSize, ErrInconsistentRoots)
	}
	return nil
}

// VerifyInclusionByHash verifies that the leaf with hash leafHash is in the
// tree described by trusted.
func (c *LogVerifier) VerifyInclusionByHash(trusted *ct.SignedTreeHead, leafHash []byte, proof *ct.AuditProof) error {
	if trusted == nil {
		return errors.New(errors.MissingInput, "VerifyInclusionByHash() error: trusted == nil")
	}
	if proof == nil {
		return errors.New(errors.MissingInput, "VerifyInclusionByHash() error: proof == nil")
	}
	ok, err := c.v.VerifyInclusionByHash(trusted, proof.LeafIndex, proof.AuditPath, leafHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("leaf %d of %d: %w", proof.LeafIndex, trusted.TreeSize, ErrNotIncluded)
	}
	return nil
}

// Leaf is a log entry in its three forms.
type Leaf struct {
	MerkleTreeLeaf *ct.MerkleTreeLeaf
	// LeafInput is the serialized MerkleTreeLeaf, as get-entries returns it.
	LeafInput      []byte
	MerkleLeafHash []byte
}

// BuildLeaf builds the leaf the log added for entry when it issued sct.
func (c *LogVerifier) BuildLeaf(sct *ct.SignedCertificateTimestamp, entry ct.SignedEntry) (*Leaf, error) {
	mtl, err := ct.MerkleTreeLeafForSCT(sct, entry)
	if err != nil {
		return nil, err
	}
	input, err := mtl.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &Leaf{
		MerkleTreeLeaf: mtl,
		LeafInput:      input,
		MerkleLeafHash: c.hasher.HashLeaf(input),
	}, nil
}

// VerifyFullTree fetches every entry in trusted from src and checks that
// they hash to its root.
func (c *LogVerifier) VerifyFullTree(ctx context.Context, trusted *ct.SignedTreeHead, src logverifier.EntriesSource, batchSize uint64) error {
	ok, err := c.v.VerifyFullTree(ctx, trusted, src, batchSize)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("tree size %d: %w", trusted.TreeSize, ErrRootMismatch)
	}
	return nil
}

// VerifyExtension appends the entries of trusted beyond tree.Size(), fetched
// from src, to tree and checks that they hash to the root of trusted.
func (c *LogVerifier) VerifyExtension(ctx context.Context, tree *compact.Tree, trusted *ct.SignedTreeHead, src logverifier.EntriesSource, batchSize uint64) error {
	ok, err := c.v.VerifyExtension(ctx, tree, trusted, src, batchSize)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("extending to tree size %d: %w", trusted.TreeSize, ErrRootMismatch)
	}
	return nil
}
