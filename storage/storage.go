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


// Package storage defines persistence for the tree heads a monitor has
// verified, so that consistency checking can resume across restarts.
package storage

import (
	"context"

	"github.com/transparency-dev/ctverify/ct"
	"github.com/transparency-dev/ctverify/errors"
)

// STHStore holds the latest trusted signed tree head for each log.
//
// Implementations must be safe for concurrent use.
type STHStore interface {
	// GetTrustedSTH returns the latest trusted STH for the log, or nil and
	// no error if none has been stored yet.
	GetTrustedSTH(ctx context.Context, logID ct.LogID) (*ct.SignedTreeHead, error)
	// SetTrustedSTH records sth as the latest trusted STH for the log. It
	// fails with an InconsistentOrdering error if sth would move the log
	// backwards relative to the stored STH, or if it has the same size and
	// timestamp but a different root. Storing an STH identical to the
	// current one is a no-op.
	SetTrustedSTH(ctx context.Context, logID ct.LogID, sth *ct.SignedTreeHead) error
}

// CheckUpdate returns an error if next cannot replace prev as the trusted STH.
// A nil prev accepts any next.
func CheckUpdate(prev, next *ct.SignedTreeHead) error {
	if next == nil {
		return errors.New(errors.MissingInput, "nil STH")
	}
	if prev == nil {
		return nil
	}
	if next.TreeSize < prev.TreeSize {
		return errors.Errorf(errors.InconsistentOrdering, "tree size went backwards: %d < %d", next.TreeSize, prev.TreeSize)
	}
	if next.Timestamp < prev.Timestamp {
		return errors.Errorf(errors.InconsistentOrdering, "STH timestamp went backwards: %d < %d", next.Timestamp, prev.Timestamp)
	}
	if next.TreeSize == prev.TreeSize && next.Timestamp == prev.Timestamp && next.SHA256RootHash != prev.SHA256RootHash {
		return errors.Errorf(errors.InconsistentOrdering, "conflicting STHs for size %d at %d", next.TreeSize, next.Timestamp)
	}
	return nil
}

// MarshalSTH returns the binary form in which stores persist an STH.
func MarshalSTH(sth *ct.SignedTreeHead) ([]byte, error) {
	if sth == nil {
		return nil, errors.New(errors.MissingInput, "nil STH")
	}
	return sth.MarshalBinary()
}

// UnmarshalSTH parses an STH stored with MarshalSTH.
func UnmarshalSTH(data []byte) (*ct.SignedTreeHead, error) {
	return ct.ParseSTH(data)
}
