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


// Package monitor watches a CT log: it polls the log's tree head, checks its
// signature and that it is consistent with the last trusted one, and
// optionally rebuilds the new part of the tree from the log's entries.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/transparency-dev/ctverify/client"
	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/merkle/compact"
	"github.com/transparency-dev/ctverify/storage"
	"github.com/transparency-dev/ctverify/util/clock"
	"k8s.io/klog/v2"
)

// LogClient is the part of client.LogClient a Monitor uses.
type LogClient interface {
	GetSTH(ctx context.Context) (*ct.SignedTreeHead, error)
	GetSTHConsistency(ctx context.Context, first, second uint64) ([][]byte, error)
	GetProofByHash(ctx context.Context, hash []byte, treeSize uint64) (*ct.AuditProof, error)
	GetLeafInputs(ctx context.Context, start, end uint64) ([][]byte, error)
}

// DefaultPollInterval is used when Options.PollInterval is zero.
const DefaultPollInterval = time.Minute

// Options configures a Monitor.
type Options struct {
	// Name identifies the log in logs and metric labels.
	Name string
	// PollInterval is the time between the end of one poll and the start
	// of the next.
	PollInterval time.Duration
	// VerifyEntries makes each poll fetch the entries added since the
	// trusted STH and check that they hash to the new root.
	VerifyEntries bool
	// BatchSize is the number of entries requested at a time.
	BatchSize uint64
	// Metrics receives the monitor's metrics. If nil, metrics are kept in
	// memory only.
	Metrics *Metrics
	// TimeSource drives polling. Defaults to clock.System.
	TimeSource clock.TimeSource
}

// Monitor polls one log and keeps its trusted STH in a store.
type Monitor struct {
	lc     LogClient
	lv     *client.LogVerifier
	store  storage.STHStore
	opts   Options
	logID  ct.LogID
	labels []string
}

// New returns a Monitor for the log reached through lc, whose output lv
// verifies.
func New(lc LogClient, lv *client.LogVerifier, store storage.STHStore, opts Options) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.TimeSource == nil {
		opts.TimeSource = clock.System
	}
	if opts.Name == "" {
		opts.Name = lv.LogID().String()
	}
	return &Monitor{
		lc:     lc,
		lv:     lv,
		store:  store,
		opts:   opts,
		logID:  lv.LogID(),
		labels: []string{opts.Name},
	}
}

// Run polls the log until ctx is cancelled. Failed polls are logged and do
// not change the trusted STH; polling carries on after them.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if err := m.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			var verr *VerificationError
			if errors.As(err, &verr) {
				klog.Errorf("%s: verification failed: %v", m.opts.Name, err)
			} else {
				klog.Warningf("%s: poll failed: %v", m.opts.Name, err)
			}
		}
		if err := clock.Sleep(ctx, m.opts.TimeSource, m.opts.PollInterval); err != nil {
			break
		}
	}
	if err := ctx.Err(); err != context.Canceled {
		return err
	}
	return nil
}

func (m *Monitor) fail(reason Reason, err error) error {
	m.opts.Metrics.verificationFailures.Inc(m.opts.Name, string(reason))
	return &VerificationError{Log: m.opts.Name, Reason: reason, Err: err}
}

// Poll runs one monitoring cycle: it fetches the latest STH and, if it
// verifies against the trusted one, stores it as the new trusted STH.
func (m *Monitor) Poll(ctx context.Context) error {
	start := m.opts.TimeSource.Now()
	defer func() {
		m.opts.Metrics.pollLatency.Observe(clock.SecondsSince(m.opts.TimeSource, start), m.labels...)
	}()

	sth, err := m.lc.GetSTH(ctx)
	if err != nil {
		return fmt.Errorf("%s: GetSTH(): %w", m.opts.Name, err)
	}
	m.opts.Metrics.sthFetched.Inc(m.labels...)
	if err := m.lv.VerifySTH(sth); err != nil {
		return m.fail(ReasonBadSignature, err)
	}

	trusted, err := m.store.GetTrustedSTH(ctx, m.logID)
	if err != nil {
		return fmt.Errorf("%s: GetTrustedSTH(): %w", m.opts.Name, err)
	}
	if trusted == nil {
		klog.Infof("%s: no trusted STH, starting from the empty tree", m.opts.Name)
		trusted = &ct.SignedTreeHead{Version: ct.V1}
		copy(trusted.SHA256RootHash[:], m.lv.Hasher().EmptyRoot())
	}
	m.opts.Metrics.trustedTreeSize.Set(float64(trusted.TreeSize), m.labels...)

	switch {
	case sth.TreeSize < trusted.TreeSize:
		return m.fail(ReasonTreeShrunk, fmt.Errorf("got tree size %d, trusted %d", sth.TreeSize, trusted.TreeSize))
	case sth.TreeSize == trusted.TreeSize && sth.SHA256RootHash != trusted.SHA256RootHash:
		return m.fail(ReasonForked, fmt.Errorf("roots %v and %v at size %d", sth.SHA256RootHash, trusted.SHA256RootHash, sth.TreeSize))
	case sth.Timestamp < trusted.Timestamp && sth.TreeSize > trusted.TreeSize:
		return m.fail(ReasonTimestampRegression, fmt.Errorf("size %d at %d after size %d at %d", sth.TreeSize, sth.Timestamp, trusted.TreeSize, trusted.Timestamp))
	case sth.Timestamp <= trusted.Timestamp:
		klog.V(1).Infof("%s: no new STH since %v", m.opts.Name, trusted)
		return nil
	}

	if sth.TreeSize > trusted.TreeSize {
		if err := m.checkConsistency(ctx, trusted, sth); err != nil {
			return err
		}
		if m.opts.VerifyEntries {
			if err := m.replay(ctx, trusted, sth); err != nil {
				return err
			}
		}
	}

	if err := m.store.SetTrustedSTH(ctx, m.logID, sth); err != nil {
		return fmt.Errorf("%s: SetTrustedSTH(): %w", m.opts.Name, err)
	}
	m.opts.Metrics.trustedTreeSize.Set(float64(sth.TreeSize), m.labels...)
	klog.Infof("%s: trusted STH now %v", m.opts.Name, sth)
	return nil
}

func (m *Monitor) checkConsistency(ctx context.Context, trusted, sth *ct.SignedTreeHead) error {
	var proof [][]byte
	if trusted.TreeSize > 0 {
		var err error
		proof, err = m.lc.GetSTHConsistency(ctx, trusted.TreeSize, sth.TreeSize)
		if err != nil {
			return fmt.Errorf("%s: GetSTHConsistency(%d, %d): %w", m.opts.Name, trusted.TreeSize, sth.TreeSize, err)
		}
	}
	if err := m.lv.VerifyRoot(trusted, sth, proof); err != nil {
		// Transport errors were handled above, anything else is bad data.
		return m.fail(ReasonInconsistent, err)
	}
	return nil
}

// replay rebuilds the tree of sth from the frontier of trusted plus the
// entries added since.
func (m *Monitor) replay(ctx context.Context, trusted, sth *ct.SignedTreeHead) error {
	tree, err := m.seed(ctx, trusted)
	if err != nil {
		return err
	}
	from := tree.Size()
	if err := m.lv.VerifyExtension(ctx, tree, sth, m.lc, m.opts.BatchSize); err != nil {
		if errors.Is(err, client.ErrRootMismatch) {
			return m.fail(ReasonEntriesMismatch, err)
		}
		return fmt.Errorf("%s: replaying entries [%d, %d): %w", m.opts.Name, from, sth.TreeSize, err)
	}
	m.opts.Metrics.entriesReplayed.Add(float64(sth.TreeSize-from), m.labels...)
	return nil
}

// seed returns a compact tree matching trusted. The frontier comes from the
// audit path of the last trusted entry, which is exactly the set of left
// subtree roots. If the log's proof for that entry is for another index,
// as can happen when the entry is duplicated, the tree starts empty and the
// whole log is replayed.
func (m *Monitor) seed(ctx context.Context, trusted *ct.SignedTreeHead) (*compact.Tree, error) {
	tree := compact.NewTree(m.lv.Hasher())
	if trusted.TreeSize == 0 {
		return tree, nil
	}
	last := trusted.TreeSize - 1
	leaves, err := m.lc.GetLeafInputs(ctx, last, last)
	if err != nil {
		return nil, fmt.Errorf("%s: GetLeafInputs(%d, %d): %w", m.opts.Name, last, last, err)
	}
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%s: log returned no entry %d", m.opts.Name, last)
	}
	leafHash := m.lv.Hasher().HashLeaf(leaves[0])
	proof, err := m.lc.GetProofByHash(ctx, leafHash, trusted.TreeSize)
	if err != nil {
		return nil, fmt.Errorf("%s: GetProofByHash(entry %d): %w", m.opts.Name, last, err)
	}
	if proof.LeafIndex != last {
		klog.Warningf("%s: entry %d is also at index %d, replaying from the start", m.opts.Name, last, proof.LeafIndex)
		return tree, nil
	}
	ok, err := tree.InitWithLeafHash(trusted.SHA256RootHash[:], proof.AuditPath, leafHash, trusted.TreeSize)
	if err != nil {
		return nil, m.fail(ReasonEntriesMismatch, fmt.Errorf("audit path of entry %d: %w", last, err))
	}
	if !ok {
		return nil, m.fail(ReasonEntriesMismatch, fmt.Errorf("entry %d and its audit path do not match the trusted root", last))
	}
	return tree, nil
}

// Reason classifies a verification failure.
type Reason string

// Verification failure reasons, used as metric label values.
const (
	// ReasonBadSignature means the STH signature did not verify.
	ReasonBadSignature Reason = "bad_signature"
	// ReasonTreeShrunk means the log returned a smaller tree than trusted.
	ReasonTreeShrunk Reason = "tree_shrunk"
	// ReasonTimestampRegression means a larger tree with an older timestamp.
	ReasonTimestampRegression Reason = "timestamp_regression"
	// ReasonForked means two different roots for the same tree size.
	ReasonForked Reason = "forked"
	// ReasonInconsistent means the consistency proof did not verify.
	ReasonInconsistent Reason = "inconsistent"
	// ReasonEntriesMismatch means the log entries do not hash to the STH root.
	ReasonEntriesMismatch Reason = "entries_mismatch"
)

// VerificationError is returned when a log serves data that does not verify,
// as opposed to failures to reach it.
type VerificationError struct {
	Log    string
	Reason Reason
	Err    error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("log %s: %s: %v", e.Log, e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
