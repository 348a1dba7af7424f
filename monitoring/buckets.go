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


package monitoring

// Helpers for constructing histogram buckets.

// LatencyBuckets returns histogram upper limits suited to the latency, in
// seconds, of a single request or poll against a log. The thresholds grow
// exponentially from 5ms to a little over ten minutes.
func LatencyBuckets() []float64 {
	return ExpBuckets(0.005, 1.5, 30)
}

// ExpBuckets returns the specified number of histogram buckets with
// exponentially increasing thresholds. The thresholds vary between base and
// base * mult^(buckets-1).
func ExpBuckets(base, mult float64, buckets uint) []float64 {
	r := make([]float64, buckets)
	for i, exp := uint(0), base; i < buckets; i, exp = i+1, exp*mult {
		r[i] = exp
	}
	return r
}

// LinearBuckets returns count buckets of the given width, starting at start.
// It returns nil for a non-positive width.
func LinearBuckets(start, width float64, count uint) []float64 {
	if width <= 0 {
		return nil
	}
	r := make([]float64, count)
	for i := range r {
		r[i] = start + float64(i)*width
	}
	return r
}
