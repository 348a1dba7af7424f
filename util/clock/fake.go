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


package clock

import (
	"sync"
	"time"
)

// FakeTimeSource provides time that can be arbitrarily set. For tests only.
type FakeTimeSource struct {
	mu     sync.Mutex
	now    time.Time
	timers map[int]*fakeTimer
	nextID int
	// added is signalled whenever a timer is created.
	added *sync.Cond
}

// NewFake creates a FakeTimeSource starting at t.
func NewFake(t time.Time) *FakeTimeSource {
	f := &FakeTimeSource{now: t, timers: make(map[int]*fakeTimer)}
	f.added = sync.NewCond(&f.mu)
	return f
}

// Now returns the time value this instance contains.
func (f *FakeTimeSource) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// NewTimer returns a Timer which fires once the fake time reaches Now()+d.
func (f *FakeTimeSource) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	t := &fakeTimer{ts: f, id: id, when: f.now.Add(d), ch: make(chan time.Time, 1)}
	if !t.tryFire(f.now) {
		f.timers[id] = t
	}
	f.added.Broadcast()
	return t
}

// Set updates the time that this instance will report, firing every pending
// timer whose deadline has passed.
func (f *FakeTimeSource) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
	for id, timer := range f.timers {
		if timer.tryFire(t) {
			delete(f.timers, id)
		}
	}
}

// Advance moves the fake time forward by d.
func (f *FakeTimeSource) Advance(d time.Duration) {
	f.Set(f.Now().Add(d))
}

// Pending returns the number of timers which have not yet fired or been
// stopped.
func (f *FakeTimeSource) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// WaitForTimers blocks until at least n timers are pending. Tests use it to
// wait for a polling goroutine to go to sleep before moving time forward.
func (f *FakeTimeSource) WaitForTimers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.timers) < n {
		f.added.Wait()
	}
}

func (f *FakeTimeSource) unsubscribe(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.timers[id]
	delete(f.timers, id)
	return ok
}

// fakeTimer is owned by the FakeTimeSource which created it.
type fakeTimer struct {
	ts   *FakeTimeSource
	id   int
	when time.Time
	ch   chan time.Time
}

func (t *fakeTimer) Chan() <-chan time.Time {
	return t.ch
}

func (t *fakeTimer) Stop() bool {
	return t.ts.unsubscribe(t.id)
}

func (t *fakeTimer) tryFire(now time.Time) bool {
	if now.Before(t.when) {
		return false
	}
	select {
	case t.ch <- now:
		return true
	default:
	}
	return false
}
