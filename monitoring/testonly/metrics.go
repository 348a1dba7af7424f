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


// Package testonly holds shared tests for MetricFactory implementations and
// helpers for checking metric changes in tests.
package testonly

import (
	"testing"

	"github.com/transparency-dev/ctverify/monitoring"
)

type labelCase struct {
	name       string
	labelNames []string
	labelVals  []string
}

func labelCases(kind string) []labelCase {
	return []labelCase{
		{name: kind + "0"},
		{name: kind + "1", labelNames: []string{"log"}, labelVals: []string{"argon"}},
		{name: kind + "2", labelNames: []string{"log", "reason"}, labelVals: []string{"argon", "bad_signature"}},
	}
}

// bogus returns labelVals with an extra value appended, without aliasing it.
func bogus(labelVals []string) []string {
	return append(append([]string(nil), labelVals...), "bogus")
}

// TestCounter runs a test on a Counter produced from the provided MetricFactory.
func TestCounter(t *testing.T, factory monitoring.MetricFactory) {
	t.Helper()
	for _, tc := range labelCases("counter") {
		counter := factory.NewCounter("test_"+tc.name, "Test only", tc.labelNames...)
		check := func(want float64, labelVals []string) {
			t.Helper()
			if got := counter.Value(labelVals...); got != want {
				t.Errorf("Counter(test_%s)[%v].Value()=%v; want %v", tc.name, labelVals, got, want)
			}
		}
		check(0, tc.labelVals)
		counter.Inc(tc.labelVals...)
		check(1, tc.labelVals)
		counter.Add(2.5, tc.labelVals...)
		check(3.5, tc.labelVals)

		// Updates with the wrong number of labels are dropped.
		libels := bogus(tc.labelVals)
		counter.Add(10.0, libels...)
		counter.Inc(libels...)
		check(0, libels)
		check(3.5, tc.labelVals)
	}
}

// TestGauge runs a test on a Gauge produced from the provided MetricFactory.
func TestGauge(t *testing.T, factory monitoring.MetricFactory) {
	t.Helper()
	for _, tc := range labelCases("gauge") {
		gauge := factory.NewGauge("test_"+tc.name, "Test only", tc.labelNames...)
		check := func(want float64, labelVals []string) {
			t.Helper()
			if got := gauge.Value(labelVals...); got != want {
				t.Errorf("Gauge(test_%s)[%v].Value()=%v; want %v", tc.name, labelVals, got, want)
			}
		}
		check(0, tc.labelVals)
		gauge.Inc(tc.labelVals...)
		check(1, tc.labelVals)
		gauge.Dec(tc.labelVals...)
		check(0, tc.labelVals)
		gauge.Add(2.5, tc.labelVals...)
		check(2.5, tc.labelVals)
		gauge.Set(42.0, tc.labelVals...)
		check(42, tc.labelVals)

		libels := bogus(tc.labelVals)
		gauge.Add(10.0, libels...)
		gauge.Inc(libels...)
		gauge.Dec(libels...)
		gauge.Set(120.0, libels...)
		check(0, libels)
		check(42, tc.labelVals)
	}
}

// TestHistogram runs a test on a Histogram produced from the provided MetricFactory.
func TestHistogram(t *testing.T, factory monitoring.MetricFactory) {
	t.Helper()
	for _, tc := range labelCases("histogram") {
		histogram := factory.NewHistogram("test_"+tc.name, "Test only", tc.labelNames...)
		check := func(wantCount uint64, wantSum float64, labelVals []string) {
			t.Helper()
			if gotCount, gotSum := histogram.Info(labelVals...); gotCount != wantCount || gotSum != wantSum {
				t.Errorf("Histogram(test_%s)[%v].Info()=%v,%v; want %v,%v", tc.name, labelVals, gotCount, gotSum, wantCount, wantSum)
			}
		}
		check(0, 0, tc.labelVals)
		histogram.Observe(1.0, tc.labelVals...)
		histogram.Observe(2.0, tc.labelVals...)
		histogram.Observe(3.0, tc.labelVals...)
		check(3, 6, tc.labelVals)

		libels := bogus(tc.labelVals)
		histogram.Observe(100.0, libels...)
		histogram.Observe(200.0, libels...)
		check(0, 0, libels)
	}
}
