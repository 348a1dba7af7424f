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
	"testing"

	"github.com/transparency-dev/ctverify/crypto"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
	"github.com/transparency-dev/ctverify/merkle/rfc6962"
	"github.com/transparency-dev/ctverify/testonly"
)

func mustSigVerifier(t *testing.T, l *testonly.SigningLog) *crypto.SignatureVerifier {
	t.Helper()
	sv, err := crypto.NewSignatureVerifierFromDER(l.PublicKeyDER)
	if err != nil {
		t.Fatalf("NewSignatureVerifierFromDER(): %v", err)
	}
	return sv
}

func TestNewLogVerifierFromDER(t *testing.T) {
	l := testonly.NewRSALog(t)
	lv, err := NewLogVerifierFromDER(l.PublicKeyDER)
	if err != nil {
		t.Fatalf("NewLogVerifierFromDER(): %v", err)
	}
	if lv.LogID() != l.ID {
		t.Errorf("LogID()=%v, want %v", lv.LogID(), l.ID)
	}
	if lv.SignatureVerifier().Algorithm() != ct.RSA {
		t.Errorf("Algorithm()=%v, want RSA", lv.SignatureVerifier().Algorithm())
	}
	if _, err := NewLogVerifierFromDER([]byte("junk")); !errors.Is(err, errors.MalformedEncoding) {
		t.Errorf("NewLogVerifierFromDER(junk)=%v, want MalformedEncoding", err)
	}
}

func TestVerifyRoot(t *testing.T) {
	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	lv := NewLogVerifier(rfc6962.DefaultHasher, mustSigVerifier(t, f.SigningLog))
	c := newTestClient(t, f.URL())
	ctx := context.Background()

	f.AddEntries(5)
	sth5 := f.Publish()
	f.AddEntries(6)
	sth11 := f.Publish()
	proof, err := c.GetSTHConsistency(ctx, 5, 11)
	if err != nil {
		t.Fatalf("GetSTHConsistency(): %v", err)
	}

	empty := &ct.SignedTreeHead{}
	forged := *sth11
	forged.TreeHeadSignature = sth5.TreeHeadSignature
	wrongRoot := f.STH(t, 11, sth11.Timestamp, sth5.SHA256RootHash[:])
	older := f.STH(t, 11, sth5.Timestamp-1, sth11.SHA256RootHash[:])

	for _, test := range []struct {
		desc     string
		trusted  *ct.SignedTreeHead
		newSTH   *ct.SignedTreeHead
		proof    [][]byte
		wantErr  error
		wantCode errors.Code
	}{
		{desc: "first root", trusted: empty, newSTH: sth5},
		{desc: "growth", trusted: sth5, newSTH: sth11, proof: proof},
		{desc: "same", trusted: sth11, newSTH: sth11},
		{desc: "bad signature", trusted: sth5, newSTH: &forged, proof: proof, wantErr: ErrInvalidSignature},
		{desc: "bad signature on first root", trusted: empty, newSTH: &forged, wantErr: ErrInvalidSignature},
		{desc: "wrong root", trusted: sth5, newSTH: wrongRoot, proof: proof, wantErr: ErrInconsistentRoots},
		{desc: "short proof", trusted: sth5, newSTH: sth11, proof: proof[1:], wantCode: errors.ProofSizeMismatch},
		{desc: "shrinking", trusted: sth11, newSTH: sth5, wantCode: errors.InconsistentOrdering},
		{desc: "time travel", trusted: sth5, newSTH: older, proof: proof, wantCode: errors.InconsistentOrdering},
		{desc: "nil trusted", newSTH: sth5, wantCode: errors.MissingInput},
		{desc: "nil new", trusted: sth5, wantCode: errors.MissingInput},
	} {
		t.Run(test.desc, func(t *testing.T) {
			err := lv.VerifyRoot(test.trusted, test.newSTH, test.proof)
			if test.wantErr != nil {
				if !stderrors.Is(err, test.wantErr) {
					t.Errorf("VerifyRoot()=%v, want %v", err, test.wantErr)
				}
				return
			}
			if got := errors.ErrorCode(err); got != test.wantCode {
				t.Errorf("VerifyRoot()=%v, want code %v", err, test.wantCode)
			}
		})
	}
}

func TestVerifySCTWrongLog(t *testing.T) {
	l1, l2 := testonly.NewECDSALog(t), testonly.NewECDSALog(t)
	lv := NewLogVerifier(rfc6962.DefaultHasher, mustSigVerifier(t, l1))
	entry := ct.SignedEntry{EntryType: ct.X509LogEntryType, X509Entry: []byte("cert")}

	if err := lv.VerifySCT(l1.SCT(t, entry, 10, nil), entry); err != nil {
		t.Errorf("VerifySCT(own SCT)=%v", err)
	}
	if err := lv.VerifySCT(l2.SCT(t, entry, 10, nil), entry); !errors.Is(err, errors.UnknownKeyType) {
		t.Errorf("VerifySCT(other log's SCT)=%v, want UnknownKeyType", err)
	}
	bad := l1.SCT(t, entry, 10, nil)
	bad.Timestamp++
	if err := lv.VerifySCT(bad, entry); !stderrors.Is(err, ErrInvalidSignature) {
		t.Errorf("VerifySCT(timestamp+1)=%v, want ErrInvalidSignature", err)
	}
}

func TestLogVerifierInclusionAndFullTree(t *testing.T) {
	ctx := context.Background()
	f, c := newFakeLog(t, 0)
	lv := NewLogVerifier(rfc6962.DefaultHasher, mustSigVerifier(t, f.SigningLog))

	entry := ct.SignedEntry{EntryType: ct.X509LogEntryType, X509Entry: []byte("the one")}
	f.AddEntries(6)
	sct := f.AddEntry(entry)
	f.AddEntries(30)
	sth := f.Publish()

	leaf, err := lv.BuildLeaf(sct, entry)
	if err != nil {
		t.Fatalf("BuildLeaf(): %v", err)
	}
	if got, want := leaf.LeafInput, f.LeafInputs()[6]; string(got) != string(want) {
		t.Errorf("BuildLeaf().LeafInput=%x, want %x", got, want)
	}
	proof, err := c.GetProofByHash(ctx, leaf.MerkleLeafHash, sth.TreeSize)
	if err != nil {
		t.Fatalf("GetProofByHash(): %v", err)
	}
	if err := lv.VerifyInclusionByHash(sth, leaf.MerkleLeafHash, proof); err != nil {
		t.Errorf("VerifyInclusionByHash(): %v", err)
	}
	bad := &ct.AuditProof{LeafIndex: proof.LeafIndex + 1, AuditPath: proof.AuditPath}
	if err := lv.VerifyInclusionByHash(sth, leaf.MerkleLeafHash, bad); !stderrors.Is(err, ErrNotIncluded) {
		t.Errorf("VerifyInclusionByHash(wrong index)=%v, want ErrNotIncluded", err)
	}
	if err := lv.VerifyInclusionByHash(sth, leaf.MerkleLeafHash, nil); !errors.Is(err, errors.MissingInput) {
		t.Errorf("VerifyInclusionByHash(nil proof)=%v, want MissingInput", err)
	}

	if err := lv.VerifyFullTree(ctx, sth, c, 8); err != nil {
		t.Errorf("VerifyFullTree(): %v", err)
	}
	lie := f.STH(t, sth.TreeSize, sth.Timestamp, leaf.MerkleLeafHash)
	if err := lv.VerifyFullTree(ctx, lie, c, 8); !stderrors.Is(err, ErrRootMismatch) {
		t.Errorf("VerifyFullTree(wrong root)=%v, want ErrRootMismatch", err)
	}
}
