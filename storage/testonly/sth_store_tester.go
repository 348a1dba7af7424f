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


// Package testonly holds a conformance suite shared by the STHStore
// implementations.
package testonly

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
	"github.com/transparency-dev/ctverify/storage"
)

// LogID returns a stable log ID derived from name.
func LogID(name string) ct.LogID {
	return ct.LogID(sha256.Sum256([]byte(name)))
}

// STH returns a syntactically valid STH with the given size and timestamp.
// The root hash and signature are derived from both, so STHs built from
// different arguments never compare equal.
func STH(size, timestamp uint64) *ct.SignedTreeHead {
	seed := []byte(fmt.Sprintf("%d/%d", size, timestamp))
	return &ct.SignedTreeHead{
		Version:        ct.V1,
		TreeSize:       size,
		Timestamp:      timestamp,
		SHA256RootHash: ct.SHA256Hash(sha256.Sum256(seed)),
		TreeHeadSignature: ct.DigitallySigned{
			Hash:      ct.SHA256,
			Algorithm: ct.ECDSA,
			Signature: append([]byte("sig:"), seed...),
		},
	}
}

// STHStoreTester runs a suite of tests against STHStore implementations.
type STHStoreTester struct {
	// NewStore returns an empty store. Resources it holds should be
	// released with t.Cleanup.
	NewStore func(t *testing.T) storage.STHStore
}

// RunAllTests runs all STHStore tests.
func (tester *STHStoreTester) RunAllTests(t *testing.T) {
	t.Run("TestGetUnknown", tester.TestGetUnknown)
	t.Run("TestSetGet", tester.TestSetGet)
	t.Run("TestRegression", tester.TestRegression)
	t.Run("TestSetSame", tester.TestSetSame)
	t.Run("TestLogsIndependent", tester.TestLogsIndependent)
	t.Run("TestConcurrentSet", tester.TestConcurrentSet)
}

func mustGet(ctx context.Context, t *testing.T, s storage.STHStore, id ct.LogID) *ct.SignedTreeHead {
	t.Helper()
	sth, err := s.GetTrustedSTH(ctx, id)
	if err != nil {
		t.Fatalf("GetTrustedSTH(%v): %v", id, err)
	}
	return sth
}

func mustSet(ctx context.Context, t *testing.T, s storage.STHStore, id ct.LogID, sth *ct.SignedTreeHead) {
	t.Helper()
	if err := s.SetTrustedSTH(ctx, id, sth); err != nil {
		t.Fatalf("SetTrustedSTH(%v, %v): %v", id, sth, err)
	}
}

// TestGetUnknown checks that an unknown log has no trusted STH.
func (tester *STHStoreTester) TestGetUnknown(t *testing.T) {
	s := tester.NewStore(t)
	if got := mustGet(context.Background(), t, s, LogID("unknown")); got != nil {
		t.Errorf("GetTrustedSTH(unknown)=%v, want nil", got)
	}
}

// TestSetGet checks that the latest stored STH is returned.
func (tester *STHStoreTester) TestSetGet(t *testing.T) {
	ctx := context.Background()
	s := tester.NewStore(t)
	id := LogID("argon")
	for _, sth := range []*ct.SignedTreeHead{STH(0, 100), STH(5, 200), STH(5, 300), STH(17, 400)} {
		mustSet(ctx, t, s, id, sth)
		if diff := cmp.Diff(sth, mustGet(ctx, t, s, id)); diff != "" {
			t.Errorf("GetTrustedSTH() after Set(%v) diff (-want +got):\n%s", sth, diff)
		}
	}
}

// TestRegression checks that the store refuses to move a log backwards.
func (tester *STHStoreTester) TestRegression(t *testing.T) {
	ctx := context.Background()
	s := tester.NewStore(t)
	id := LogID("argon")
	current := STH(10, 1000)
	mustSet(ctx, t, s, id, current)

	fork := *current
	fork.SHA256RootHash[0] ^= 1
	for _, sth := range []*ct.SignedTreeHead{STH(9, 2000), STH(11, 999), &fork} {
		if err := s.SetTrustedSTH(ctx, id, sth); !errors.Is(err, errors.InconsistentOrdering) {
			t.Errorf("SetTrustedSTH(%v)=%v, want InconsistentOrdering", sth, err)
		}
	}
	if err := s.SetTrustedSTH(ctx, id, nil); !errors.Is(err, errors.MissingInput) {
		t.Errorf("SetTrustedSTH(nil)=%v, want MissingInput", err)
	}
	if diff := cmp.Diff(current, mustGet(ctx, t, s, id)); diff != "" {
		t.Errorf("trusted STH changed by rejected updates (-want +got):\n%s", diff)
	}
}

// TestSetSame checks that re-storing the current STH succeeds.
func (tester *STHStoreTester) TestSetSame(t *testing.T) {
	ctx := context.Background()
	s := tester.NewStore(t)
	id := LogID("argon")
	mustSet(ctx, t, s, id, STH(3, 30))
	mustSet(ctx, t, s, id, STH(3, 30))
	if diff := cmp.Diff(STH(3, 30), mustGet(ctx, t, s, id)); diff != "" {
		t.Errorf("GetTrustedSTH() diff (-want +got):\n%s", diff)
	}
}

// TestLogsIndependent checks that logs do not see each other's STHs.
func (tester *STHStoreTester) TestLogsIndependent(t *testing.T) {
	ctx := context.Background()
	s := tester.NewStore(t)
	a, b := LogID("argon"), LogID("xenon")
	mustSet(ctx, t, s, a, STH(100, 1000))
	// A smaller tree for another log is not a regression.
	mustSet(ctx, t, s, b, STH(1, 10))
	if got := mustGet(ctx, t, s, a); got.TreeSize != 100 {
		t.Errorf("GetTrustedSTH(a).TreeSize=%d, want 100", got.TreeSize)
	}
	if got := mustGet(ctx, t, s, b); got.TreeSize != 1 {
		t.Errorf("GetTrustedSTH(b).TreeSize=%d, want 1", got.TreeSize)
	}
}

// TestConcurrentSet checks that concurrent growing updates leave the largest
// STH in place.
func (tester *STHStoreTester) TestConcurrentSet(t *testing.T) {
	ctx := context.Background()
	s := tester.NewStore(t)
	id := LogID("argon")
	const n = 16
	var wg sync.WaitGroup
	for i := uint64(1); i <= n; i++ {
		wg.Add(1)
		go func(i uint64) {
			defer wg.Done()
			// Losing the race to a larger STH is expected.
			if err := s.SetTrustedSTH(ctx, id, STH(i, i)); err != nil && !errors.Is(err, errors.InconsistentOrdering) {
				t.Errorf("SetTrustedSTH(%d): %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	if diff := cmp.Diff(STH(n, n), mustGet(ctx, t, s, id)); diff != "" {
		t.Errorf("GetTrustedSTH() diff (-want +got):\n%s", diff)
	}
}
