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

// Package backoff retries log requests with exponential backoff.
package backoff

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"k8s.io/klog/v2"
)

// Backoff specifies the parameters of the backoff algorithm. Works correctly
// if 0 < Min <= Max <= 2^62 (nanosec), and Factor >= 1.
type Backoff struct {
	Min    time.Duration // Duration of the first pause.
	Max    time.Duration // Max duration of a pause.
	Factor float64       // The factor of duration increase between iterations.
	Jitter bool          // Add random noise to pauses.
	// MaxAttempts bounds the number of calls made by Retry. Zero means
	// retry until the context is done.
	MaxAttempts int

	delta time.Duration // Current pause duration relative to Min, no jitter.
}

// Default is the backoff used for CT log requests.
func Default() Backoff {
	return Backoff{
		Min:         500 * time.Millisecond,
		Max:         30 * time.Second,
		Factor:      2,
		Jitter:      true,
		MaxAttempts: 8,
	}
}

// Duration returns the time to wait on current retry iteration.
// Every time Duration is called, the returned value will exponentially
// increase by Factor until Backoff.Max. If Jitter is enabled, will wait an
// additional random value between 0 and Factor^x * Min, capped by Backoff.Max.
func (b *Backoff) Duration() time.Duration {
	pause := b.Min + b.delta

	next := time.Duration(float64(pause) * b.Factor)
	if next > b.Max || next < b.Min { // Multiplication could overflow.
		next = b.Max
	}
	b.delta = next - b.Min

	if b.Jitter && pause > 0 {
		pause += time.Duration(rand.Int63n(int64(pause)))
	}
	return pause
}

// Reset sets the internal state back to first iteration.
func (b *Backoff) Reset() {
	b.delta = 0
}

// Recover reduces retry pause duration by the given power of Backoff.Factor.
// A client polling a log can call it after a run of successful requests.
func (b *Backoff) Recover(factors int) {
	pause := float64(b.Min + b.delta)
	smaller := pause / math.Pow(b.Factor, float64(factors))
	b.delta = time.Duration(math.Max(float64(b.Min), smaller) - float64(b.Min))
}

// permanentError marks an error that retrying will not fix, such as an HTTP
// 4xx from a log.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so that Retry gives up on it at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Retry calls f until it succeeds, returns a Permanent error, MaxAttempts
// calls have been made, or ctx is done. It pauses between calls. The last
// error from f is returned, with any Permanent marker removed. Backoff is
// not reset by this function.
func (b *Backoff) Retry(ctx context.Context, f func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		err := f()
		if err == nil {
			return nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			return err
		}
		pause := b.Duration()
		klog.V(1).Infof("attempt %d failed, retrying in %v: %v", attempt, pause, err)
		t := time.NewTimer(pause)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return err
		}
	}
}
