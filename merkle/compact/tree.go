// Copyright 2016 Google LLC. All Rights Reserved.
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

// Package compact provides a compact Merkle tree that can be extended leaf by
// leaf from a known state.
package compact

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"math/bits"

	"github.com/transparency-dev/merkle"
	"k8s.io/klog/v2"

	"github.com/transparency-dev/ctverify/errors"
)

// MaxLevels is the number of frontier slots, enough for any uint64 size.
const MaxLevels = 64

// Tree is a compact Merkle tree representation. It uses O(log(size)) nodes to
// represent the current tree.
//
// Tree is not safe for concurrent use.
type Tree struct {
	hasher merkle.LogHasher
	// The list of "dangling" left-hand nodes, where entry [0] is the leaf.
	// So: nodes[0] is the hash of a subtree of size 1 = 1<<0, if included.
	//     nodes[1] is the hash of a subtree of size 2 = 1<<1, if included.
	//     nodes[2] is the hash of a subtree of size 4 = 1<<2, if included.
	//     ....
	// Nodes are included if the tree size includes that power of two.
	// For example, a tree of size 21 is built from subtrees of sizes
	// 16 + 4 + 1, so nodes[1] == nodes[3] == nil.
	nodes [MaxLevels][]byte
	size  uint64
	// levels is the number of slots up to and including the highest
	// occupied one, bits.Len64(size).
	levels uint
}

// NewTree creates a new compact Tree with size zero.
func NewTree(hasher merkle.LogHasher) *Tree {
	return &Tree{hasher: hasher}
}

// NewTreeWithState creates a Tree of the given size from the frontier of the
// tree one leaf smaller plus the last leaf, and checks it against root. See
// Init for the meaning of the arguments.
//
// The returned bool reports whether the rebuilt root matched. The tree is
// returned either way so that callers can inspect what it computed.
func NewTreeWithState(hasher merkle.LogHasher, root []byte, leftNodes [][]byte, rightLeaf []byte, size uint64) (*Tree, bool, error) {
	t := NewTree(hasher)
	ok, err := t.Init(root, leftNodes, rightLeaf, size)
	if err != nil {
		return nil, false, err
	}
	return t, ok, nil
}

// Init resets t to a tree of the given size.
//
// leftNodes are the roots of the perfect subtrees that make up the first
// size-1 leaves, lowest level first. These are exactly the hashes of an audit
// path for leaf size-1 in a tree of the given size. rightLeaf is the data of
// that last leaf.
//
// Init returns an InvalidFrontier error if leftNodes does not match the
// shape of the tree, and false if the resulting root differs from root.
func (t *Tree) Init(root []byte, leftNodes [][]byte, rightLeaf []byte, size uint64) (bool, error) {
	return t.InitWithLeafHash(root, leftNodes, t.hasher.HashLeaf(rightLeaf), size)
}

// InitWithLeafHash is Init for callers holding the Merkle leaf hash of the
// last leaf rather than its data.
func (t *Tree) InitWithLeafHash(root []byte, leftNodes [][]byte, rightLeafHash []byte, size uint64) (bool, error) {
	if size == 0 {
		return false, errors.New(errors.InvalidFrontier, "cannot initialize a tree of size 0")
	}
	if len(root) == 0 {
		return false, errors.New(errors.MissingInput, "missing root hash")
	}
	if len(rightLeafHash) == 0 {
		return false, errors.New(errors.MissingInput, "missing right leaf hash")
	}
	if got, want := len(leftNodes), bits.OnesCount64(size-1); got != want {
		return false, errors.Errorf(errors.InvalidFrontier, "got %d left nodes for tree size %d, want %d", got, size, want)
	}

	t.nodes = [MaxLevels][]byte{}
	next := 0
	for level, rest := uint(0), size-1; rest != 0; level, rest = level+1, rest>>1 {
		if rest&1 == 0 {
			continue
		}
		if len(leftNodes[next]) == 0 {
			return false, errors.Errorf(errors.MissingInput, "empty left node %d", next)
		}
		t.nodes[level] = leftNodes[next]
		next++
	}
	t.pushBack(rightLeafHash, 0)
	t.size = size
	t.levels = uint(bits.Len64(size))

	got := t.CalculateRoot()
	if !bytes.Equal(got, root) {
		klog.Warningf("Corrupt state, expected root %x, got %x at size %d", root, got, size)
		return false, nil
	}
	klog.V(1).Infof("Resuming at size %d, with root: %s", t.size, base64.StdEncoding.EncodeToString(got))
	return true, nil
}

// pushBack stores hash at level, combining it with the occupants of level and
// the slots above like a binary counter carrying. An existing occupant is
// always the left sibling of the arriving node.
func (t *Tree) pushBack(hash []byte, level uint) {
	for ; t.nodes[level] != nil; level++ {
		hash = t.hasher.HashChildren(t.nodes[level], hash)
		t.nodes[level] = nil
	}
	t.nodes[level] = hash
}

// AddLeaf calculates the Merkle leaf hash of the given leaf data and appends
// it to the tree.
//
// Returns the index of the new leaf (equal to t.Size()-1) and the Merkle leaf
// hash for the new leaf.
func (t *Tree) AddLeaf(data []byte) (uint64, []byte, error) {
	h := t.hasher.HashLeaf(data)
	index, err := t.AddLeafHash(h)
	if err != nil {
		return 0, nil, err
	}
	return index, h, nil
}

// AddLeafHash appends the specified Merkle leaf hash to the tree and returns
// its index.
func (t *Tree) AddLeafHash(leafHash []byte) (uint64, error) {
	if len(leafHash) == 0 {
		return 0, errors.New(errors.MissingInput, "missing leaf hash")
	}
	if t.size == math.MaxUint64 {
		return 0, errors.New(errors.IndexOutOfRange, "tree is full")
	}
	index := t.size
	t.pushBack(leafHash, 0)
	t.size++
	t.levels = uint(bits.Len64(t.size))
	return index, nil
}

// CalculateRoot returns the root hash of the tree without modifying it. It
// returns nil for an empty tree.
func (t *Tree) CalculateRoot() []byte {
	var root []byte
	for level := uint(0); level < t.levels; level++ {
		switch n := t.nodes[level]; {
		case n == nil:
		case root == nil:
			root = n
		default:
			root = t.hasher.HashChildren(n, root)
		}
	}
	return root
}

// Size returns the current size of the tree.
func (t *Tree) Size() uint64 {
	return t.size
}

// Levels returns the number of frontier levels in use.
func (t *Tree) Levels() uint {
	return t.levels
}

// Frontier returns a copy of the occupied node hashes, lowest level first.
func (t *Tree) Frontier() [][]byte {
	var hashes [][]byte
	for level := uint(0); level < t.levels; level++ {
		if n := t.nodes[level]; n != nil {
			hashes = append(hashes, append([]byte(nil), n...))
		}
	}
	return hashes
}

// String describes the internal state of the compact Tree.
func (t *Tree) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Tree Nodes @ %d\n", t.size)
	for level := uint(0); level < t.levels; level++ {
		if n := t.nodes[level]; n != nil {
			fmt.Fprintf(&buf, "%d:  %s\n", level, base64.StdEncoding.EncodeToString(n))
		} else {
			fmt.Fprintf(&buf, "%d:  -\n", level)
		}
	}
	return buf.String()
}
