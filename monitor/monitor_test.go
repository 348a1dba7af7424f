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


package monitor

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	inmemory "github.com/transparency-dev/merkle/testonly"

	"github.com/transparency-dev/ctverify/client"
	"github.com/transparency-dev/ctverify/client/backoff"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/merkle/rfc6962"
	"github.com/transparency-dev/ctverify/monitoring"
	mtestonly "github.com/transparency-dev/ctverify/monitoring/testonly"
	"github.com/transparency-dev/ctverify/storage"
	"github.com/transparency-dev/ctverify/storage/memory"
	"github.com/transparency-dev/ctverify/testonly"
	"github.com/transparency-dev/ctverify/util/clock"
)

func newLogVerifier(t *testing.T, l *testonly.SigningLog) *client.LogVerifier {
	t.Helper()
	lv, err := client.NewLogVerifierFromDER(l.PublicKeyDER)
	if err != nil {
		t.Fatalf("NewLogVerifierFromDER(): %v", err)
	}
	return lv
}

func newLogClient(t *testing.T, f *testonly.FakeLog) *client.LogClient {
	t.Helper()
	lc, err := client.New(f.URL(), nil, client.Options{
		Backoff: backoff.Backoff{Min: time.Millisecond, Max: time.Millisecond, Factor: 1, MaxAttempts: 2},
	})
	if err != nil {
		t.Fatalf("client.New(): %v", err)
	}
	return lc
}

func mustGet(t *testing.T, s storage.STHStore, id ct.LogID) *ct.SignedTreeHead {
	t.Helper()
	sth, err := s.GetTrustedSTH(context.Background(), id)
	if err != nil {
		t.Fatalf("GetTrustedSTH(): %v", err)
	}
	return sth
}

func TestPollFakeLog(t *testing.T) {
	for _, verifyEntries := range []bool{false, true} {
		t.Run(fmt.Sprintf("verify entries %v", verifyEntries), func(t *testing.T) {
			ctx := context.Background()
			f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
			lv := newLogVerifier(t, f.SigningLog)
			store := memory.New()
			metrics := NewMetrics(monitoring.InertMetricFactory{})
			m := New(newLogClient(t, f), lv, store, Options{Name: "argon", VerifyEntries: verifyEntries, BatchSize: 4, Metrics: metrics})

			var wantReplayed float64
			for _, n := range []int{10, 0, 25, 1} {
				f.AddEntries(n)
				want := f.Publish()
				if err := m.Poll(ctx); err != nil {
					t.Fatalf("Poll() after adding %d entries: %v", n, err)
				}
				if got := mustGet(t, store, lv.LogID()); got == nil || !got.Same(want) {
					t.Fatalf("trusted STH=%v, want %v", got, want)
				}
				if verifyEntries {
					wantReplayed += float64(n)
				}
				if got := metrics.entriesReplayed.Value("argon"); got != wantReplayed {
					t.Errorf("entries_replayed=%v, want %v", got, wantReplayed)
				}
				if got, want := metrics.trustedTreeSize.Value("argon"), float64(want.TreeSize); got != want {
					t.Errorf("trusted_tree_size=%v, want %v", got, want)
				}
			}
			if got, want := metrics.sthFetched.Value("argon"), 4.0; got != want {
				t.Errorf("sth_fetched=%v, want %v", got, want)
			}
			if got := len(store.History(lv.LogID())); got != 4 {
				t.Errorf("len(History())=%d, want 4", got)
			}
		})
	}
}

func TestPollUnchangedSTH(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	f.AddEntries(3)
	sth := f.Publish()
	lv := newLogVerifier(t, f.SigningLog)

	store := storage.NewMockSTHStore(ctrl)
	store.EXPECT().GetTrustedSTH(gomock.Any(), lv.LogID()).Return(nil, nil)
	store.EXPECT().SetTrustedSTH(gomock.Any(), lv.LogID(), testonly.STHEq(sth)).Return(nil)
	store.EXPECT().GetTrustedSTH(gomock.Any(), lv.LogID()).Return(sth, nil)

	m := New(newLogClient(t, f), lv, store, Options{Name: "argon"})
	for i := 0; i < 2; i++ {
		if err := m.Poll(ctx); err != nil {
			t.Fatalf("Poll() #%d: %v", i, err)
		}
	}
}

// testLog builds trees and signed heads for a log served through a mock.
type testLog struct {
	*testonly.SigningLog
	tree   *inmemory.Tree
	leaves [][]byte
}

func newTestLog(t *testing.T, name string, size int) *testLog {
	l := &testLog{SigningLog: testonly.NewECDSALog(t), tree: inmemory.New(rfc6962.DefaultHasher)}
	for i := 0; i < size; i++ {
		leaf := []byte(fmt.Sprintf("%s leaf %d", name, i))
		l.leaves = append(l.leaves, leaf)
		l.tree.AppendData(leaf)
	}
	return l
}

func (l *testLog) sth(t *testing.T, size, timestamp uint64) *ct.SignedTreeHead {
	t.Helper()
	return l.STH(t, size, timestamp, l.tree.HashAt(size))
}

func (l *testLog) consistency(t *testing.T, size1, size2 uint64) [][]byte {
	t.Helper()
	proof, err := l.tree.ConsistencyProof(size1, size2)
	if err != nil {
		t.Fatalf("ConsistencyProof(%d, %d): %v", size1, size2, err)
	}
	return proof
}

func (l *testLog) serveEntries(entries [][]byte) func(context.Context, uint64, uint64) ([][]byte, error) {
	return func(_ context.Context, start, end uint64) ([][]byte, error) {
		return entries[start : end+1], nil
	}
}

func (l *testLog) serveProofByHash(t *testing.T) func(context.Context, []byte, uint64) (*ct.AuditProof, error) {
	return func(_ context.Context, hash []byte, size uint64) (*ct.AuditProof, error) {
		for i := uint64(0); i < size; i++ {
			if string(l.tree.LeafHash(i)) == string(hash) {
				path, err := l.tree.InclusionProof(i, size)
				if err != nil {
					t.Fatalf("InclusionProof(%d, %d): %v", i, size, err)
				}
				return &ct.AuditProof{LeafIndex: i, AuditPath: path}, nil
			}
		}
		return nil, stderrors.New("not found")
	}
}

func TestPollFailures(t *testing.T) {
	const trustedSize, newSize = 8, 12
	l := newTestLog(t, "argon", newSize)
	other := newTestLog(t, "xenon", newSize)
	trusted := l.sth(t, trustedSize, 1000)

	forked := l.STH(t, trustedSize, 2000, other.tree.HashAt(trustedSize))
	tampered := append([][]byte(nil), l.leaves...)
	tampered[10] = []byte("evil")

	for _, tc := range []struct {
		desc       string
		setup      func(lc *MockLogClient)
		wantReason Reason
	}{
		{
			desc: "bad-signature",
			setup: func(lc *MockLogClient) {
				lc.EXPECT().GetSTH(gomock.Any()).Return(other.sth(t, newSize, 2000), nil)
			},
			wantReason: ReasonBadSignature,
		},
		{
			desc: "shrunk",
			setup: func(lc *MockLogClient) {
				lc.EXPECT().GetSTH(gomock.Any()).Return(l.sth(t, trustedSize-1, 2000), nil)
			},
			wantReason: ReasonTreeShrunk,
		},
		{
			desc: "forked",
			setup: func(lc *MockLogClient) {
				lc.EXPECT().GetSTH(gomock.Any()).Return(forked, nil)
			},
			wantReason: ReasonForked,
		},
		{
			desc: "timestamp-regression",
			setup: func(lc *MockLogClient) {
				lc.EXPECT().GetSTH(gomock.Any()).Return(l.sth(t, newSize, 999), nil)
			},
			wantReason: ReasonTimestampRegression,
		},
		{
			desc: "inconsistent",
			setup: func(lc *MockLogClient) {
				lc.EXPECT().GetSTH(gomock.Any()).Return(l.sth(t, newSize, 2000), nil)
				lc.EXPECT().GetSTHConsistency(gomock.Any(), uint64(trustedSize), uint64(newSize)).Return(other.consistency(t, trustedSize, newSize), nil)
			},
			wantReason: ReasonInconsistent,
		},
		{
			desc: "short-proof",
			setup: func(lc *MockLogClient) {
				lc.EXPECT().GetSTH(gomock.Any()).Return(l.sth(t, newSize, 2000), nil)
				lc.EXPECT().GetSTHConsistency(gomock.Any(), uint64(trustedSize), uint64(newSize)).Return(l.consistency(t, trustedSize, newSize)[1:], nil)
			},
			wantReason: ReasonInconsistent,
		},
		{
			desc: "entries-mismatch",
			setup: func(lc *MockLogClient) {
				lc.EXPECT().GetSTH(gomock.Any()).Return(l.sth(t, newSize, 2000), nil)
				lc.EXPECT().GetSTHConsistency(gomock.Any(), uint64(trustedSize), uint64(newSize)).Return(l.consistency(t, trustedSize, newSize), nil)
				lc.EXPECT().GetProofByHash(gomock.Any(), gomock.Any(), uint64(trustedSize)).DoAndReturn(l.serveProofByHash(t))
				lc.EXPECT().GetLeafInputs(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(l.serveEntries(tampered)).AnyTimes()
			},
			wantReason: ReasonEntriesMismatch,
		},
		{
			desc: "transport",
			setup: func(lc *MockLogClient) {
				lc.EXPECT().GetSTH(gomock.Any()).Return(nil, stderrors.New("connection refused"))
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			ctx := context.Background()
			ctrl := gomock.NewController(t)
			lc := NewMockLogClient(ctrl)
			tc.setup(lc)

			lv := newLogVerifier(t, l.SigningLog)
			store := memory.New()
			if err := store.SetTrustedSTH(ctx, lv.LogID(), trusted); err != nil {
				t.Fatalf("SetTrustedSTH(): %v", err)
			}
			metrics := NewMetrics(monitoring.InertMetricFactory{})
			failures := mtestonly.NewCounterSnapshot(metrics.verificationFailures)
			failures.Record("argon", string(tc.wantReason))

			m := New(lc, lv, store, Options{Name: "argon", VerifyEntries: true, Metrics: metrics})
			err := m.Poll(ctx)
			if err == nil {
				t.Fatal("Poll() succeeded, want error")
			}
			var verr *VerificationError
			isVerr := stderrors.As(err, &verr)
			if tc.wantReason == "" {
				if isVerr {
					t.Errorf("Poll()=%v, want a non-verification error", err)
				}
			} else {
				if !isVerr || verr.Reason != tc.wantReason {
					t.Errorf("Poll()=%v, want VerificationError with reason %s", err, tc.wantReason)
				}
				if got := failures.Delta("argon", string(tc.wantReason)); got != 1 {
					t.Errorf("sth_verification_failures delta=%v, want 1", got)
				}
			}
			if diff := cmp.Diff(trusted, mustGet(t, store, lv.LogID())); diff != "" {
				t.Errorf("trusted STH changed after failed poll (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPollReplaysOnlyNewEntries(t *testing.T) {
	const trustedSize, newSize = 13, 29
	ctx := context.Background()
	l := newTestLog(t, "argon", newSize)
	ctrl := gomock.NewController(t)
	lc := NewMockLogClient(ctrl)
	lc.EXPECT().GetSTH(gomock.Any()).Return(l.sth(t, newSize, 2000), nil)
	lc.EXPECT().GetSTHConsistency(gomock.Any(), uint64(trustedSize), uint64(newSize)).Return(l.consistency(t, trustedSize, newSize), nil)
	lc.EXPECT().GetProofByHash(gomock.Any(), l.tree.LeafHash(trustedSize-1), uint64(trustedSize)).DoAndReturn(l.serveProofByHash(t))
	lc.EXPECT().GetLeafInputs(gomock.Any(), uint64(trustedSize-1), uint64(trustedSize-1)).DoAndReturn(l.serveEntries(l.leaves))
	lc.EXPECT().GetLeafInputs(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, start, end uint64) ([][]byte, error) {
			if start < trustedSize {
				t.Errorf("GetLeafInputs(%d, %d) re-fetched trusted entries", start, end)
			}
			return l.leaves[start : end+1], nil
		}).MinTimes(1)

	lv := newLogVerifier(t, l.SigningLog)
	store := memory.New()
	if err := store.SetTrustedSTH(ctx, lv.LogID(), l.sth(t, trustedSize, 1000)); err != nil {
		t.Fatalf("SetTrustedSTH(): %v", err)
	}
	metrics := NewMetrics(nil)
	m := New(lc, lv, store, Options{Name: "argon", VerifyEntries: true, BatchSize: 8, Metrics: metrics})
	if err := m.Poll(ctx); err != nil {
		t.Fatalf("Poll(): %v", err)
	}
	if got, want := metrics.entriesReplayed.Value("argon"), float64(newSize-trustedSize); got != want {
		t.Errorf("entries_replayed=%v, want %v", got, want)
	}
}

func TestPollReplaysAllWhenLastEntryIsDuplicated(t *testing.T) {
	const trustedSize, newSize = 13, 20
	ctx := context.Background()
	l := newTestLog(t, "argon", newSize)
	ctrl := gomock.NewController(t)
	lc := NewMockLogClient(ctrl)
	lc.EXPECT().GetSTH(gomock.Any()).Return(l.sth(t, newSize, 2000), nil)
	lc.EXPECT().GetSTHConsistency(gomock.Any(), uint64(trustedSize), uint64(newSize)).Return(l.consistency(t, trustedSize, newSize), nil)
	lc.EXPECT().GetLeafInputs(gomock.Any(), uint64(trustedSize-1), uint64(trustedSize-1)).DoAndReturn(l.serveEntries(l.leaves))
	// The log answers for an earlier copy of the same entry.
	earlier, err := l.tree.InclusionProof(5, trustedSize)
	if err != nil {
		t.Fatalf("InclusionProof(): %v", err)
	}
	lc.EXPECT().GetProofByHash(gomock.Any(), l.tree.LeafHash(trustedSize-1), uint64(trustedSize)).Return(&ct.AuditProof{LeafIndex: 5, AuditPath: earlier}, nil)
	var starts []uint64
	lc.EXPECT().GetLeafInputs(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, start, end uint64) ([][]byte, error) {
			starts = append(starts, start)
			return l.leaves[start : end+1], nil
		}).MinTimes(1)

	lv := newLogVerifier(t, l.SigningLog)
	store := memory.New()
	if err := store.SetTrustedSTH(ctx, lv.LogID(), l.sth(t, trustedSize, 1000)); err != nil {
		t.Fatalf("SetTrustedSTH(): %v", err)
	}
	metrics := NewMetrics(nil)
	m := New(lc, lv, store, Options{Name: "argon", VerifyEntries: true, BatchSize: 8, Metrics: metrics})
	if err := m.Poll(ctx); err != nil {
		t.Fatalf("Poll(): %v", err)
	}
	if len(starts) == 0 || starts[0] != 0 {
		t.Errorf("GetLeafInputs starts=%v, want the replay to begin at 0", starts)
	}
	if got, want := metrics.entriesReplayed.Value("argon"), float64(newSize); got != want {
		t.Errorf("entries_replayed=%v, want %v", got, want)
	}
	if got := mustGet(t, store, lv.LogID()); got == nil || got.TreeSize != newSize {
		t.Errorf("trusted STH=%v, want size %d", got, newSize)
	}
}

func TestPollStoreErrors(t *testing.T) {
	ctx := context.Background()
	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	f.AddEntries(3)
	f.Publish()
	lv := newLogVerifier(t, f.SigningLog)

	for _, tc := range []struct {
		desc  string
		setup func(s *storage.MockSTHStore)
		want  string
	}{
		{
			desc: "get",
			setup: func(s *storage.MockSTHStore) {
				s.EXPECT().GetTrustedSTH(gomock.Any(), lv.LogID()).Return(nil, stderrors.New("connection reset"))
			},
			want: "GetTrustedSTH(): connection reset",
		},
		{
			desc: "set",
			setup: func(s *storage.MockSTHStore) {
				s.EXPECT().GetTrustedSTH(gomock.Any(), lv.LogID()).Return(nil, nil)
				s.EXPECT().SetTrustedSTH(gomock.Any(), lv.LogID(), testonly.STHWithSize(3)).Return(stderrors.New("disk full"))
			},
			want: "SetTrustedSTH(): disk full",
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := storage.NewMockSTHStore(ctrl)
			tc.setup(store)
			metrics := NewMetrics(nil)
			m := New(newLogClient(t, f), lv, store, Options{Name: "argon", Metrics: metrics})
			err := m.Poll(ctx)
			testonly.EnsureErrorContains(t, err, tc.want)
			var verr *VerificationError
			if stderrors.As(err, &verr) {
				t.Errorf("Poll()=%v, want a non-verification error", err)
			}
			if got := metrics.trustedTreeSize.Value("argon"); got != 0 {
				t.Errorf("trusted_tree_size=%v after a failed store, want 0", got)
			}
		})
	}
}

func TestRun(t *testing.T) {
	f := testonly.NewFakeLog(t, testonly.NewECDSALog(t))
	f.AddEntries(5)
	f.Publish()
	lv := newLogVerifier(t, f.SigningLog)
	store := memory.New()
	ts := clock.NewFake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	m := New(newLogClient(t, f), lv, store, Options{Name: "argon", PollInterval: time.Minute, VerifyEntries: true, TimeSource: ts})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// The first poll happens straight away.
	ts.WaitForTimers(1)
	if got := mustGet(t, store, lv.LogID()); got == nil || got.TreeSize != 5 {
		t.Fatalf("trusted STH after first poll=%v, want size 5", got)
	}

	// A failing poll does not stop the loop.
	f.FailNext(ct.GetSTHPath, 500, 500)
	ts.Advance(time.Minute)
	ts.WaitForTimers(1)

	f.AddEntries(7)
	want := f.Publish()
	ts.Advance(time.Minute)
	ts.WaitForTimers(1)
	if got := mustGet(t, store, lv.LogID()); got == nil || !got.Same(want) {
		t.Errorf("trusted STH after third poll=%v, want %v", got, want)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run()=%v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestNewDefaults(t *testing.T) {
	l := testonly.NewECDSALog(t)
	lv := newLogVerifier(t, l)
	m := New(nil, lv, memory.New(), Options{})
	if m.opts.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval=%v, want %v", m.opts.PollInterval, DefaultPollInterval)
	}
	if m.opts.Name != lv.LogID().String() {
		t.Errorf("Name=%q, want the log ID", m.opts.Name)
	}
	if m.opts.TimeSource != clock.System {
		t.Error("TimeSource is not the system clock")
	}
}

func TestVerificationError(t *testing.T) {
	inner := client.ErrInconsistentRoots
	err := error(&VerificationError{Log: "argon", Reason: ReasonInconsistent, Err: inner})
	if !stderrors.Is(err, inner) {
		t.Errorf("errors.Is(%v, %v)=false", err, inner)
	}
	if got, want := err.Error(), "log argon: inconsistent: consistency proof does not verify"; got != want {
		t.Errorf("Error()=%q, want %q", got, want)
	}
}
