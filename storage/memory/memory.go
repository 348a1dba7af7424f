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


// Package memory provides an in-memory STHStore which also keeps the full
// history of trusted tree heads for each log.
package memory

import (
	"bytes"
	"context"
	"math"
	"sync"

	"github.com/google/btree"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/storage"
	"k8s.io/klog/v2"
)

const degree = 8

// entry is a btree item ordered by log, then tree size, then timestamp, so
// that the last entry for a log is its trusted STH.
type entry struct {
	logID     ct.LogID
	treeSize  uint64
	timestamp uint64
	sth       *ct.SignedTreeHead
}

func (a *entry) Less(b btree.Item) bool {
	o := b.(*entry)
	if c := bytes.Compare(a.logID[:], o.logID[:]); c != 0 {
		return c < 0
	}
	if a.treeSize != o.treeSize {
		return a.treeSize < o.treeSize
	}
	return a.timestamp < o.timestamp
}

// STHStore is an STHStore held in memory.
type STHStore struct {
	mu    sync.RWMutex
	store *btree.BTree
}

// New returns an empty store.
func New() *STHStore {
	return &STHStore{store: btree.New(degree)}
}

// latest returns the last entry for logID. Callers must hold mu.
func (s *STHStore) latest(logID ct.LogID) *entry {
	var found *entry
	pivot := &entry{logID: logID, treeSize: math.MaxUint64, timestamp: math.MaxUint64}
	s.store.DescendLessOrEqual(pivot, func(i btree.Item) bool {
		if e := i.(*entry); e.logID == logID {
			found = e
		}
		return false
	})
	return found
}

// GetTrustedSTH implements storage.STHStore.
func (s *STHStore) GetTrustedSTH(ctx context.Context, logID ct.LogID) (*ct.SignedTreeHead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.latest(logID)
	if e == nil {
		return nil, nil
	}
	sth := *e.sth
	return &sth, nil
}

// SetTrustedSTH implements storage.STHStore.
func (s *STHStore) SetTrustedSTH(ctx context.Context, logID ct.LogID, sth *ct.SignedTreeHead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev *ct.SignedTreeHead
	if e := s.latest(logID); e != nil {
		prev = e.sth
	}
	if err := storage.CheckUpdate(prev, sth); err != nil {
		return err
	}
	if prev != nil && prev.Same(sth) {
		return nil
	}
	cp := *sth
	cp.TreeHeadSignature.Signature = append([]byte(nil), sth.TreeHeadSignature.Signature...)
	s.store.ReplaceOrInsert(&entry{logID: logID, treeSize: sth.TreeSize, timestamp: sth.Timestamp, sth: &cp})
	klog.V(2).Infof("memory: log %v trusted STH now %v", logID, sth)
	return nil
}

// History returns every STH trusted for logID, oldest first.
func (s *STHStore) History(logID ct.LogID) []*ct.SignedTreeHead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ret []*ct.SignedTreeHead
	s.store.AscendGreaterOrEqual(&entry{logID: logID}, func(i btree.Item) bool {
		e := i.(*entry)
		if e.logID != logID {
			return false
		}
		sth := *e.sth
		ret = append(ret, &sth)
		return true
	})
	return ret
}
