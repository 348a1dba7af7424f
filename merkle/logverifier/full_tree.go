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
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
	"github.com/transparency-dev/ctverify/merkle/compact"
)

// DefaultBatchSize is the number of entries VerifyFullTree asks for at once.
const DefaultBatchSize = 1000

// EntriesSource supplies the leaf inputs of a log, in order.
type EntriesSource interface {
	// GetLeafInputs returns the serialized MerkleTreeLeaf of entries start
	// to end inclusive. It may return fewer entries than asked for, but
	// not zero.
	GetLeafInputs(ctx context.Context, start, end uint64) ([][]byte, error)
}

// VerifyFullTree fetches every entry of the tree described by sth, rebuilds
// the tree from scratch and compares its root with the one in sth. This is
// O(n) in hashing and in entries fetched, so use it sparingly.
//
// The next batch is fetched while the current one is hashed. The context is
// checked between batches.
func (v LogVerifier) VerifyFullTree(ctx context.Context, sth *ct.SignedTreeHead, src EntriesSource, batchSize uint64) (bool, error) {
	return v.VerifyExtension(ctx, compact.NewTree(v.hasher), sth, src, batchSize)
}

// VerifyExtension appends the entries of sth beyond tree.Size() to tree and
// compares the resulting root with the one in sth. tree must describe a
// prefix of the log, typically rebuilt from a previously trusted tree head,
// so that only the new entries are fetched. tree is modified even when
// verification fails.
func (v LogVerifier) VerifyExtension(ctx context.Context, tree *compact.Tree, sth *ct.SignedTreeHead, src EntriesSource, batchSize uint64) (bool, error) {
	if tree == nil || sth == nil {
		return false, errors.New(errors.MissingInput, "missing tree or STH")
	}
	if src == nil {
		return false, errors.New(errors.MissingInput, "missing entries source")
	}
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if tree.Size() > sth.TreeSize {
		return false, errors.Errorf(errors.InconsistentOrdering, "tree size %d is larger than STH tree size %d", tree.Size(), sth.TreeSize)
	}
	if sth.TreeSize == 0 {
		return bytes.Equal(v.hasher.EmptyRoot(), sth.SHA256RootHash[:]), nil
	}
	from := tree.Size()
	batches := make(chan [][]byte, 1)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(batches)
		for start := from; start < sth.TreeSize; {
			end := start + min(batchSize, sth.TreeSize-start) - 1
			leaves, err := src.GetLeafInputs(gctx, start, end)
			if err != nil {
				return fmt.Errorf("GetLeafInputs(%d, %d): %w", start, end, err)
			}
			if len(leaves) == 0 {
				return errors.Errorf(errors.MissingInput, "no entries returned for [%d, %d] of tree size %d", start, end, sth.TreeSize)
			}
			if want := end - start + 1; uint64(len(leaves)) > want {
				leaves = leaves[:want]
			}
			select {
			case batches <- leaves:
			case <-gctx.Done():
				return gctx.Err()
			}
			start += uint64(len(leaves))
		}
		return nil
	})

	g.Go(func() error {
		for leaves := range batches {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, leaf := range leaves {
				if _, _, err := tree.AddLeaf(leaf); err != nil {
					return err
				}
			}
			klog.V(2).Infof("VerifyExtension: hashed %d/%d entries", tree.Size(), sth.TreeSize)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return false, err
	}
	root := tree.CalculateRoot()
	if !bytes.Equal(root, sth.SHA256RootHash[:]) {
		klog.Warningf("VerifyExtension: rebuilt root %x, STH has %x at size %d", root, sth.SHA256RootHash[:], sth.TreeSize)
		return false, nil
	}
	return true, nil
}
