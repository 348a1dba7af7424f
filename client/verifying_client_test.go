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
	"time"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
	"github.com/transparency-dev/ctverify/merkle/rfc6962"
	"github.com/transparency-dev/ctverify/testonly"
)

func newVerifyingClient(t *testing.T, f *testonly.FakeLog, trusted *ct.SignedTreeHead) *VerifyingClient {
	t.Helper()
	lv := NewLogVerifier(rfc6962.DefaultHasher, mustSigVerifier(t, f.SigningLog))
	return NewVerifyingClient(newTestClient(t, f.URL()), lv, trusted)
}

func TestUpdateRoot(t *testing.T) {
	ctx := context.Background()
	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	f.AddEntries(3)
	first := f.Publish()

	c := newVerifyingClient(t, f, nil)
	if got := c.Root(); got.TreeSize != 0 {
		t.Fatalf("Root() before UpdateRoot has size %d", got.TreeSize)
	}
	if err := c.UpdateRoot(ctx); err != nil {
		t.Fatalf("UpdateRoot(): %v", err)
	}
	if got := c.Root(); !got.Same(first) {
		t.Errorf("Root()=%v, want %v", &got, first)
	}

	for _, n := range []int{1, 0, 20, 7} {
		f.AddEntries(n)
		want := f.Publish()
		if err := c.UpdateRoot(ctx); err != nil {
			t.Fatalf("UpdateRoot() after %d more entries: %v", n, err)
		}
		if got := c.Root(); !got.Same(want) {
			t.Errorf("Root()=%v, want %v", &got, want)
		}
	}
}

func TestUpdateRootDetectsFork(t *testing.T) {
	ctx := context.Background()
	l := testonly.NewECDSALog(t)
	honest := testonly.NewFakeLog(t, l)
	fork := testonly.NewFakeLog(t, l)

	honest.AddEntries(10)
	fork.AddEntries(10)
	trusted := honest.Publish()

	honest.AddEntries(10)
	fork.AddEntry(ct.SignedEntry{EntryType: ct.X509LogEntryType, X509Entry: []byte("split view")})
	fork.AddEntries(9)
	honest.Publish()
	forked := fork.Publish()

	// The log serves a tree head from the other view, but proves
	// consistency from its own tree.
	c := newVerifyingClient(t, honest, trusted)
	honest.SetSTH(forked)
	if err := c.UpdateRoot(ctx); !stderrors.Is(err, ErrInconsistentRoots) {
		t.Errorf("UpdateRoot(forked)=%v, want ErrInconsistentRoots", err)
	}
	if got := c.Root(); !got.Same(trusted) {
		t.Errorf("Root() moved to %v after a failed update", &got)
	}

	// Same size, different root.
	c = newVerifyingClient(t, fork, forked)
	fork.SetSTH(l.STH(t, forked.TreeSize, forked.Timestamp+1, trusted.SHA256RootHash[:]))
	if err := c.UpdateRoot(ctx); !stderrors.Is(err, ErrInconsistentRoots) {
		t.Errorf("UpdateRoot(same size, new root)=%v, want ErrInconsistentRoots", err)
	}

	// Shrinking.
	fork.SetSTH(trusted)
	if err := c.UpdateRoot(ctx); !errors.Is(err, errors.InconsistentOrdering) {
		t.Errorf("UpdateRoot(smaller tree)=%v, want InconsistentOrdering", err)
	}
}

func TestVerifyInclusion(t *testing.T) {
	ctx := context.Background()
	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	f.AddEntries(9)
	entry := ct.SignedEntry{EntryType: ct.X509LogEntryType, X509Entry: []byte("mine")}
	sct := f.AddEntry(entry)
	f.AddEntries(4)
	f.Publish()

	c := newVerifyingClient(t, f, nil)
	if err := c.VerifyInclusion(ctx, sct, entry); err != nil {
		t.Errorf("VerifyInclusion(): %v", err)
	}

	other := ct.SignedEntry{EntryType: ct.X509LogEntryType, X509Entry: []byte("not mine")}
	if err := c.VerifyInclusion(ctx, sct, other); !stderrors.Is(err, ErrInvalidSignature) {
		t.Errorf("VerifyInclusion(wrong entry)=%v, want ErrInvalidSignature", err)
	}

	if err := c.AuditFullTree(ctx, 3); err != nil {
		t.Errorf("AuditFullTree(): %v", err)
	}
}

func TestWaitForInclusion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	f.AddEntries(2)
	f.Publish()
	entry := ct.SignedEntry{EntryType: ct.X509LogEntryType, X509Entry: []byte("pending")}
	sct := f.AddEntry(entry)

	go func() {
		time.Sleep(50 * time.Millisecond)
		f.Publish()
	}()

	c := newVerifyingClient(t, f, nil)
	if err := c.WaitForInclusion(ctx, sct, entry); err != nil {
		t.Errorf("WaitForInclusion(): %v", err)
	}
	if got := c.Root().TreeSize; got != 3 {
		t.Errorf("Root().TreeSize=%d, want 3", got)
	}
}

func TestWaitForInclusionTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	f.AddEntries(2)
	f.Publish()
	entry := ct.SignedEntry{EntryType: ct.X509LogEntryType, X509Entry: []byte("never merged")}
	sct := f.AddEntry(entry)

	c := newVerifyingClient(t, f, nil)
	if err := c.WaitForInclusion(ctx, sct, entry); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForInclusion()=%v, want %v", err, context.DeadlineExceeded)
	}
}

func TestAuditFullTreeNeedsRoot(t *testing.T) {
	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	c := newVerifyingClient(t, f, nil)
	if err := c.AuditFullTree(context.Background(), 0); !errors.Is(err, errors.MissingInput) {
		t.Errorf("AuditFullTree()=%v, want MissingInput", err)
	}
}
