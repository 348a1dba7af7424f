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


package monitor

import (

	"github.com/transparency-dev/ctverify/monitoring"
)

// Metrics are the metrics reported by monitors, labelled by log name. One
// Metrics should be shared by every Monitor using the same MetricFactory.
type Metrics struct {
	sthFetched           monitoring.Counter
	verificationFailures monitoring.Counter
	trustedTreeSize      monitoring.Gauge
	pollLatency          monitoring.Histogram
	entriesReplayed      monitoring.Counter
}

// NewMetrics creates the monitor metrics with mf.
func NewMetrics(mf monitoring.MetricFactory) *Metrics {
	if mf == nil {
		mf = monitoring.InertMetricFactory{}
	}
	return &Metrics{
		sthFetched:           mf.NewCounter("sth_fetched", "Number of STHs fetched from the log", logLabel),
		verificationFailures: mf.NewCounter("sth_verification_failures", "Number of failed verifications, by reason", logLabel, reasonLabel),
		trustedTreeSize:      mf.NewGauge("trusted_tree_size", "Size of the latest trusted tree", logLabel),
		pollLatency:          mf.NewHistogramWithBuckets("poll_latency_seconds", "Time taken by one poll of the log", monitoring.LatencyBuckets(), logLabel),
		entriesReplayed:      mf.NewCounter("entries_replayed", "Number of log entries hashed to check new tree heads", logLabel),
	}
}

const (
	logLabel    = "log"
	reasonLabel = "reason"
)
