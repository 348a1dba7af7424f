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


package memory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/storage"
	"github.com/transparency-dev/ctverify/storage/testonly"
)

func TestSTHStore(t *testing.T) {
	tester := &testonly.STHStoreTester{
		NewStore: func(t *testing.T) storage.STHStore { return New() },
	}
	tester.RunAllTests(t)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, b := testonly.LogID("argon"), testonly.LogID("xenon")
	want := []*ct.SignedTreeHead{testonly.STH(0, 1), testonly.STH(4, 2), testonly.STH(4, 3), testonly.STH(9, 4)}
	for i, sth := range want {
		if err := s.SetTrustedSTH(ctx, a, sth); err != nil {
			t.Fatalf("SetTrustedSTH(%d): %v", i, err)
		}
		// Interleave another log to check the key ranges do not mix.
		if err := s.SetTrustedSTH(ctx, b, testonly.STH(uint64(i), uint64(i))); err != nil {
			t.Fatalf("SetTrustedSTH(b, %d): %v", i, err)
		}
	}
	// Same STH again does not add a history entry.
	if err := s.SetTrustedSTH(ctx, a, testonly.STH(9, 4)); err != nil {
		t.Fatalf("SetTrustedSTH(repeat): %v", err)
	}
	if diff := cmp.Diff(want, s.History(a)); diff != "" {
		t.Errorf("History(a) diff (-want +got):\n%s", diff)
	}
	if got := len(s.History(b)); got != len(want) {
		t.Errorf("len(History(b))=%d, want %d", got, len(want))
	}
	if got := s.History(testonly.LogID("unknown")); got != nil {
		t.Errorf("History(unknown)=%v, want nil", got)
	}
}

func TestReturnedSTHIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := testonly.LogID("argon")
	sth := testonly.STH(3, 3)
	if err := s.SetTrustedSTH(ctx, id, sth); err != nil {
		t.Fatalf("SetTrustedSTH(): %v", err)
	}
	sth.TreeHeadSignature.Signature[0] ^= 0xff
	got, err := s.GetTrustedSTH(ctx, id)
	if err != nil {
		t.Fatalf("GetTrustedSTH(): %v", err)
	}
	got.TreeSize = 1000
	if diff := cmp.Diff(testonly.STH(3, 3), s.History(id)[0]); diff != "" {
		t.Errorf("stored STH was modified through caller's copy (-want +got):\n%s", diff)
	}
}
