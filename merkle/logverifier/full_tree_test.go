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

package logverifier

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"sync"
	"testing"

	inmemory "github.com/transparency-dev/merkle/testonly"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
	"github.com/transparency-dev/ctverify/merkle/compact"
	"github.com/transparency-dev/ctverify/merkle/rfc6962"
)

// fakeSource serves leaves from memory, at most maxBatch at a time.
type fakeSource struct {
	leaves   [][]byte
	maxBatch uint64
	err      error

	mu     sync.Mutex
	calls  int
	starts []uint64
	// onCall runs before each fetch.
	onCall func(call int)
}

func (f *fakeSource) GetLeafInputs(ctx context.Context, start, end uint64) ([][]byte, error) {
	f.mu.Lock()
	f.calls++
	f.starts = append(f.starts, start)
	call := f.calls
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(call)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if end < start {
		return nil, fmt.Errorf("end %d < start %d", end, start)
	}
	if start >= uint64(len(f.leaves)) {
		return nil, nil
	}
	end = min(end+1, uint64(len(f.leaves)))
	if f.maxBatch > 0 {
		end = min(end, start+f.maxBatch)
	}
	return f.leaves[start:end], nil
}

func buildLog(t *testing.T, size int) ([][]byte, *ct.SignedTreeHead) {
	t.Helper()
	tree := inmemory.New(rfc6962.DefaultHasher)
	var leaves [][]byte
	for i := 0; i < size; i++ {
		leaf := []byte(fmt.Sprintf("leaf %d", i))
		leaves = append(leaves, leaf)
		tree.AppendData(leaf)
	}
	sth := &ct.SignedTreeHead{Version: ct.V1, TreeSize: uint64(size), Timestamp: 1}
	copy(sth.SHA256RootHash[:], tree.Hash())
	return leaves, sth
}

func TestVerifyFullTree(t *testing.T) {
	v := New(rfc6962.DefaultHasher)
	leaves, sth := buildLog(t, 97)

	for _, tc := range []struct {
		desc      string
		batchSize uint64
		maxBatch  uint64
	}{
		{desc: "default batch", batchSize: 0},
		{desc: "one batch", batchSize: 200},
		{desc: "small batches", batchSize: 10},
		{desc: "single entries", batchSize: 1},
		{desc: "short reads", batchSize: 50, maxBatch: 7},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			src := &fakeSource{leaves: leaves, maxBatch: tc.maxBatch}
			ok, err := v.VerifyFullTree(context.Background(), sth, src, tc.batchSize)
			if !verified(ok, err) {
				t.Errorf("VerifyFullTree()=%v, %v; want true, nil", ok, err)
			}
		})
	}

	// The log claims more entries than it serves.
	src := &fakeSource{leaves: leaves}
	short := *sth
	short.TreeSize = 120
	if _, err := v.VerifyFullTree(context.Background(), &short, src, 50); !errors.Is(err, errors.MissingInput) {
		t.Errorf("VerifyFullTree(truncated log)=%v, want MissingInput", err)
	}

	// An entry was tampered with.
	tampered := append([][]byte(nil), leaves...)
	tampered[42] = []byte("evil")
	if ok, err := v.VerifyFullTree(context.Background(), sth, &fakeSource{leaves: tampered}, 10); ok || err != nil {
		t.Errorf("VerifyFullTree(tampered)=%v, %v; want false, nil", ok, err)
	}
}

func TestVerifyFullTreeEmpty(t *testing.T) {
	v := New(rfc6962.DefaultHasher)
	_, sth := buildLog(t, 0)
	if ok, err := v.VerifyFullTree(context.Background(), sth, &fakeSource{}, 0); !verified(ok, err) {
		t.Errorf("VerifyFullTree(empty)=%v, %v; want true, nil", ok, err)
	}
}

func TestVerifyFullTreeErrors(t *testing.T) {
	v := New(rfc6962.DefaultHasher)
	leaves, sth := buildLog(t, 20)

	boom := stderrors.New("boom")
	if _, err := v.VerifyFullTree(context.Background(), sth, &fakeSource{leaves: leaves, err: boom}, 5); !stderrors.Is(err, boom) {
		t.Errorf("VerifyFullTree(failing source)=%v, want %v", err, boom)
	}
	if _, err := v.VerifyFullTree(context.Background(), nil, &fakeSource{}, 5); !errors.Is(err, errors.MissingInput) {
		t.Errorf("VerifyFullTree(nil STH)=%v, want MissingInput", err)
	}
	if _, err := v.VerifyFullTree(context.Background(), sth, nil, 5); !errors.Is(err, errors.MissingInput) {
		t.Errorf("VerifyFullTree(nil source)=%v, want MissingInput", err)
	}
}

func TestVerifyFullTreeCancel(t *testing.T) {
	v := New(rfc6962.DefaultHasher)
	leaves, sth := buildLog(t, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &fakeSource{leaves: leaves, onCall: func(call int) {
		if call == 3 {
			cancel()
		}
	}}
	if _, err := v.VerifyFullTree(ctx, sth, src, 10); !stderrors.Is(err, context.Canceled) {
		t.Errorf("VerifyFullTree(cancelled)=%v, want %v", err, context.Canceled)
	}
	if src.calls > 4 {
		t.Errorf("source called %d times after cancellation", src.calls)
	}
}

func TestVerifyExtension(t *testing.T) {
	v := New(rfc6962.DefaultHasher)
	leaves, sth := buildLog(t, 97)
	ref := inmemory.New(rfc6962.DefaultHasher)
	for _, l := range leaves {
		ref.AppendData(l)
	}

	for _, from := range []uint64{1, 2, 40, 64, 96, 97} {
		t.Run(fmt.Sprintf("from %d", from), func(t *testing.T) {
			path, err := ref.InclusionProof(from-1, from)
			if err != nil {
				t.Fatalf("InclusionProof(): %v", err)
			}
			tree := compact.NewTree(rfc6962.DefaultHasher)
			if ok, err := tree.InitWithLeafHash(ref.HashAt(from), path, ref.LeafHash(from-1), from); !verified(ok, err) {
				t.Fatalf("InitWithLeafHash()=%v, %v", ok, err)
			}
			src := &fakeSource{leaves: leaves}
			if ok, err := v.VerifyExtension(context.Background(), tree, sth, src, 16); !verified(ok, err) {
				t.Errorf("VerifyExtension()=%v, %v; want true, nil", ok, err)
			}
			for _, start := range src.starts {
				if start < from {
					t.Errorf("fetched from %d, want >= %d", start, from)
				}
			}
			if from == sth.TreeSize && src.calls != 0 {
				t.Errorf("source called %d times for an up to date tree", src.calls)
			}
		})
	}

	// A tree that is not a prefix of the log.
	bogus := compact.NewTree(rfc6962.DefaultHasher)
	bogus.AddLeaf([]byte("not in the log"))
	if ok, err := v.VerifyExtension(context.Background(), bogus, sth, &fakeSource{leaves: leaves}, 16); ok || err != nil {
		t.Errorf("VerifyExtension(bogus prefix)=%v, %v; want false, nil", ok, err)
	}

	// A tree larger than the STH.
	small := *sth
	small.TreeSize = 10
	big := compact.NewTree(rfc6962.DefaultHasher)
	for _, l := range leaves {
		big.AddLeaf(l)
	}
	if _, err := v.VerifyExtension(context.Background(), big, &small, &fakeSource{leaves: leaves}, 16); !errors.Is(err, errors.InconsistentOrdering) {
		t.Errorf("VerifyExtension(shrinking)=%v, want InconsistentOrdering", err)
	}
	if _, err := v.VerifyExtension(context.Background(), nil, sth, &fakeSource{}, 16); !errors.Is(err, errors.MissingInput) {
		t.Errorf("VerifyExtension(nil tree)=%v, want MissingInput", err)
	}
}

func TestVerifyExtensionLargeBatch(t *testing.T) {
	v := New(rfc6962.DefaultHasher)
	leaves, sth := buildLog(t, 4)
	for _, from := range []int{0, 2, 3} {
		t.Run(fmt.Sprintf("from %d", from), func(t *testing.T) {
			tree := compact.NewTree(rfc6962.DefaultHasher)
			for _, l := range leaves[:from] {
				if _, _, err := tree.AddLeaf(l); err != nil {
					t.Fatalf("AddLeaf(): %v", err)
				}
			}
			src := &fakeSource{leaves: leaves}
			if ok, err := v.VerifyExtension(context.Background(), tree, sth, src, math.MaxUint64); !verified(ok, err) {
				t.Errorf("VerifyExtension(batch %d)=%v, %v; want true, nil", uint64(math.MaxUint64), ok, err)
			}
			if src.calls != 1 {
				t.Errorf("source called %d times, want 1", src.calls)
			}
		})
	}
}
