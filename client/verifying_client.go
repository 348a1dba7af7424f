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
	"fmt"
	"net/http"
	"sync"
	"time"

	"k8s.io/klog/v2"

	"github.com/transparency-dev/ctverify/client/backoff"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

// VerifyingClient is a LogClient that keeps a trusted tree head and only
// moves it forward when the log proves the new head is consistent with it.
type VerifyingClient struct {
	*LogClient
	verifier *LogVerifier

	mu   sync.Mutex
	root ct.SignedTreeHead
}

// NewVerifyingClient returns a VerifyingClient. trusted may be nil, in which
// case the first tree head the log serves is trusted once its signature
// verifies.
func NewVerifyingClient(lc *LogClient, verifier *LogVerifier, trusted *ct.SignedTreeHead) *VerifyingClient {
	c := &VerifyingClient{LogClient: lc, verifier: verifier}
	if trusted != nil {
		c.root = *trusted
	}
	return c
}

// Verifier returns the verifier for the log's output.
func (c *VerifyingClient) Verifier() *LogVerifier {
	return c.verifier
}

// Root returns the last valid root seen by UpdateRoot.
// Returns an empty SignedTreeHead if UpdateRoot has not been called.
func (c *VerifyingClient) Root() ct.SignedTreeHead {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}

// UpdateRoot retrieves the current STH. It verifies the signature, and the
// consistency proof if this is not the first root this client has seen.
func (c *VerifyingClient) UpdateRoot(ctx context.Context) error {
	sth, err := c.GetSTH(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.root.TreeSize > 0 && sth.TreeSize == c.root.TreeSize && sth.SHA256RootHash == c.root.SHA256RootHash {
		// Tree has not been updated.
		return nil
	}

	// Fetch a consistency proof if this isn't the first root we've seen.
	var consistency [][]byte
	if c.root.TreeSize > 0 && sth.TreeSize > c.root.TreeSize {
		consistency, err = c.GetSTHConsistency(ctx, c.root.TreeSize, sth.TreeSize)
		if err != nil {
			return err
		}
	}
	if err := c.verifier.VerifyRoot(&c.root, sth, consistency); err != nil {
		return err
	}
	klog.V(1).Infof("%s: trusted tree head now %v", c.BaseURI(), sth)
	c.root = *sth
	return nil
}

// waitForRootUpdate repeatedly fetches the root until the tree size changes
// or until ctx is done.
func (c *VerifyingClient) waitForRootUpdate(ctx context.Context) error {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2,
		Jitter: true,
	}
	start := c.Root().TreeSize
	for i := 0; ; i++ {
		if err := c.UpdateRoot(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %v", ctxErr, err)
			}
			return err
		}
		if c.Root().TreeSize > start {
			return nil
		}
		t := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w: tree size %d, want > %d after %d tries", ctx.Err(), c.Root().TreeSize, start, i+1)
		case <-t.C:
		}
	}
}

// VerifyInclusion updates the trusted root and checks that the log included
// the entry it issued sct for.
func (c *VerifyingClient) VerifyInclusion(ctx context.Context, sct *ct.SignedCertificateTimestamp, entry ct.SignedEntry) error {
	if err := c.verifier.VerifySCT(sct, entry); err != nil {
		return err
	}
	leaf, err := c.verifier.BuildLeaf(sct, entry)
	if err != nil {
		return err
	}
	if err := c.UpdateRoot(ctx); err != nil {
		return fmt.Errorf("UpdateRoot(): %w", err)
	}
	return c.getInclusionProof(ctx, leaf.MerkleLeafHash)
}

// WaitForInclusion blocks until the entry sct was issued for has been
// verified with an inclusion proof. Call it with a context that times out:
// a log that never merges the entry keeps it waiting.
func (c *VerifyingClient) WaitForInclusion(ctx context.Context, sct *ct.SignedCertificateTimestamp, entry ct.SignedEntry) error {
	if err := c.verifier.VerifySCT(sct, entry); err != nil {
		return err
	}
	leaf, err := c.verifier.BuildLeaf(sct, entry)
	if err != nil {
		return err
	}

	if err := c.UpdateRoot(ctx); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		root := c.Root()
		// It is illegal to ask for an inclusion proof with TreeSize = 0, or
		// in a tree older than the SCT.
		if root.TreeSize > 0 && root.Timestamp >= sct.Timestamp {
			err := c.getInclusionProof(ctx, leaf.MerkleLeafHash)
			switch code := StatusCode(err); {
			case err == nil:
				return nil
			case code != http.StatusNotFound && code != http.StatusBadRequest:
				return err
			}
		}
		// Wait for the tree to grow.
		if err := c.waitForRootUpdate(ctx); err != nil {
			return err
		}
	}
}

// AuditFullTree fetches every entry under the trusted root and checks they
// hash to it.
func (c *VerifyingClient) AuditFullTree(ctx context.Context, batchSize uint64) error {
	root := c.Root()
	if root.TreeSize == 0 && root.Timestamp == 0 {
		return errors.New(errors.MissingInput, "no trusted root; call UpdateRoot first")
	}
	return c.verifier.VerifyFullTree(ctx, &root, c.LogClient, batchSize)
}

func (c *VerifyingClient) getInclusionProof(ctx context.Context, leafHash []byte) error {
	root := c.Root()
	proof, err := c.GetProofByHash(ctx, leafHash, root.TreeSize)
	if err != nil {
		return err
	}
	return c.verifier.VerifyInclusionByHash(&root, leafHash, proof)
}
