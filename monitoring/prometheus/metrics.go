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


// Package prometheus provides a Prometheus-based implementation of the
// MetricFactory abstraction.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/transparency-dev/ctverify/monitoring"
	"k8s.io/klog/v2"
)

// MetricFactory allows the creation of Prometheus-based metrics.
type MetricFactory struct {
	// Prefix is prepended to every metric name.
	Prefix string
	// Registerer receives every created metric. If nil,
	// prometheus.DefaultRegisterer is used.
	Registerer prometheus.Registerer
}

func (pmf MetricFactory) register(c prometheus.Collector) {
	r := pmf.Registerer
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	r.MustRegister(c)
}

// NewCounter creates a new Counter object backed by Prometheus.
func (pmf MetricFactory) NewCounter(name, help string, labelNames ...string) monitoring.Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: pmf.Prefix + name, Help: help}, labelNames)
	pmf.register(vec)
	return &Counter{labelNames: labelNames, vec: vec}
}

// NewGauge creates a new Gauge object backed by Prometheus.
func (pmf MetricFactory) NewGauge(name, help string, labelNames ...string) monitoring.Gauge {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: pmf.Prefix + name, Help: help}, labelNames)
	pmf.register(vec)
	return &Gauge{labelNames: labelNames, vec: vec}
}

// NewHistogram creates a new Histogram object backed by Prometheus, using
// the default Prometheus buckets.
func (pmf MetricFactory) NewHistogram(name, help string, labelNames ...string) monitoring.Histogram {
	return pmf.NewHistogramWithBuckets(name, help, nil, labelNames...)
}

// NewHistogramWithBuckets creates a new Histogram object backed by
// Prometheus with the given bucket upper bounds.
func (pmf MetricFactory) NewHistogramWithBuckets(name, help string, buckets []float64, labelNames ...string) monitoring.Histogram {
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: pmf.Prefix + name, Help: help, Buckets: buckets}, labelNames)
	pmf.register(vec)
	return &Histogram{labelNames: labelNames, vec: vec}
}

// Counter is a wrapper around a Prometheus CounterVec object.
type Counter struct {
	labelNames []string
	vec        *prometheus.CounterVec
}

func (m *Counter) with(labelVals []string) prometheus.Counter {
	if err := checkLabels(m.labelNames, labelVals); err != nil {
		klog.Error(err)
		return nil
	}
	return m.vec.WithLabelValues(labelVals...)
}

// Inc adds 1 to a counter.
func (m *Counter) Inc(labelVals ...string) {
	if c := m.with(labelVals); c != nil {
		c.Inc()
	}
}

// Add adds the given amount to a counter.
func (m *Counter) Add(val float64, labelVals ...string) {
	if c := m.with(labelVals); c != nil {
		c.Add(val)
	}
}

// Value returns the current amount of a counter.
func (m *Counter) Value(labelVals ...string) float64 {
	c := m.with(labelVals)
	if c == nil {
		return 0.0
	}
	pb := read(c)
	if pb.GetCounter() == nil {
		klog.Error("counter field missing")
		return 0.0
	}
	return pb.GetCounter().GetValue()
}

// Gauge is a wrapper around a Prometheus GaugeVec object.
type Gauge struct {
	labelNames []string
	vec        *prometheus.GaugeVec
}

func (m *Gauge) with(labelVals []string) prometheus.Gauge {
	if err := checkLabels(m.labelNames, labelVals); err != nil {
		klog.Error(err)
		return nil
	}
	return m.vec.WithLabelValues(labelVals...)
}

// Inc adds 1 to a gauge.
func (m *Gauge) Inc(labelVals ...string) {
	if g := m.with(labelVals); g != nil {
		g.Inc()
	}
}

// Dec subtracts 1 from a gauge.
func (m *Gauge) Dec(labelVals ...string) {
	if g := m.with(labelVals); g != nil {
		g.Dec()
	}
}

// Add adds given value to a gauge.
func (m *Gauge) Add(val float64, labelVals ...string) {
	if g := m.with(labelVals); g != nil {
		g.Add(val)
	}
}

// Set sets the value of a gauge.
func (m *Gauge) Set(val float64, labelVals ...string) {
	if g := m.with(labelVals); g != nil {
		g.Set(val)
	}
}

// Value returns the current amount of a gauge.
func (m *Gauge) Value(labelVals ...string) float64 {
	g := m.with(labelVals)
	if g == nil {
		return 0.0
	}
	pb := read(g)
	if pb.GetGauge() == nil {
		klog.Error("gauge field missing")
		return 0.0
	}
	return pb.GetGauge().GetValue()
}

// Histogram is a wrapper around a Prometheus HistogramVec object.
type Histogram struct {
	labelNames []string
	vec        *prometheus.HistogramVec
}

func (m *Histogram) with(labelVals []string) prometheus.Observer {
	if err := checkLabels(m.labelNames, labelVals); err != nil {
		klog.Error(err)
		return nil
	}
	return m.vec.WithLabelValues(labelVals...)
}

// Observe adds a single observation to the histogram.
func (m *Histogram) Observe(val float64, labelVals ...string) {
	if o := m.with(labelVals); o != nil {
		o.Observe(val)
	}
}

// Info returns the count and sum of observations for the histogram.
func (m *Histogram) Info(labelVals ...string) (uint64, float64) {
	o := m.with(labelVals)
	if o == nil {
		return 0, 0.0
	}
	metric, ok := o.(prometheus.Metric)
	if !ok {
		klog.Errorf("histogram observer %T is not a metric", o)
		return 0, 0.0
	}
	h := read(metric).GetHistogram()
	if h == nil {
		klog.Error("histogram field missing")
		return 0, 0.0
	}
	return h.GetSampleCount(), h.GetSampleSum()
}

// read returns the current state of metric, or an empty message if it could
// not be written.
func read(metric prometheus.Metric) *dto.Metric {
	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		klog.Errorf("failed to Write metric: %v", err)
	}
	return &pb
}

func checkLabels(names, values []string) error {
	if len(names) != len(values) {
		return fmt.Errorf("got %d (%v) values for %d labels (%v)", len(values), values, len(names), names)
	}
	return nil
}
