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

package crypto

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

// KeyRing holds the signature verifiers of a set of known logs, by log ID.
// It is safe for concurrent use.
type KeyRing struct {
	mu        sync.RWMutex
	verifiers map[ct.LogID]*SignatureVerifier
}

// NewKeyRing returns a KeyRing holding the given verifiers.
func NewKeyRing(verifiers ...*SignatureVerifier) *KeyRing {
	k := &KeyRing{verifiers: make(map[ct.LogID]*SignatureVerifier)}
	for _, v := range verifiers {
		k.Add(v)
	}
	return k
}

// Add registers v under its log ID, replacing any previous verifier.
func (k *KeyRing) Add(v *SignatureVerifier) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.verifiers[v.LogID] = v
}

// Get returns the verifier for a log, if known.
func (k *KeyRing) Get(id ct.LogID) (*SignatureVerifier, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.verifiers[id]
	return v, ok
}

// Len returns the number of known logs.
func (k *KeyRing) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.verifiers)
}

// VerifySCTs checks every SCT over entry and returns true only if all of
// them verify. Every SCT must come from a known log; that is checked before
// any signature is, so an unknown log costs no crypto work. The signatures
// are then checked concurrently.
func (k *KeyRing) VerifySCTs(ctx context.Context, scts []*ct.SignedCertificateTimestamp, entry ct.SignedEntry) (bool, error) {
	if len(scts) == 0 {
		return false, errors.New(errors.MissingInput, "no SCTs to verify")
	}
	verifiers := make([]*SignatureVerifier, len(scts))
	for i, sct := range scts {
		if sct == nil {
			return false, errors.Errorf(errors.MissingInput, "SCT %d is missing", i)
		}
		v, ok := k.Get(sct.LogID)
		if !ok {
			return false, errors.Errorf(errors.UnknownKeyType, "SCT %d is from unknown log %v", i, sct.LogID)
		}
		verifiers[i] = v
	}

	results := make([]bool, len(scts))
	g, gctx := errgroup.WithContext(ctx)
	for i := range scts {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := verifiers[i].VerifySCT(scts[i], entry)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for i, ok := range results {
		if !ok {
			klog.V(1).Infof("SCT %d from log %v does not verify", i, scts[i].LogID)
			return false, nil
		}
	}
	return true, nil
}
