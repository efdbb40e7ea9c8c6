// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts protocol activity for one engine. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FramesSent     prometheus.Counter
	FramesReceived prometheus.Counter
	Nacks          prometheus.Counter
	ReadErrors     *prometheus.CounterVec
	ResetAttempts  prometheus.Counter
	ResetFailures  prometheus.Counter
	Keepalives     prometheus.Counter
	ResponseTime   prometheus.Histogram
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "m18_frames_sent_total",
			Help: "Frames written to the pack.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "m18_frames_received_total",
			Help: "Complete response frames read from the pack.",
		}),
		Nacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "m18_nacks_total",
			Help: "One-byte error frames received.",
		}),
		ReadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "m18_read_errors_total",
			Help: "Failed response reads by kind.",
		}, []string{"kind"}),
		ResetAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "m18_reset_attempts_total",
			Help: "Reset handshake attempts.",
		}),
		ResetFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "m18_reset_failures_total",
			Help: "Resets that exhausted every attempt.",
		}),
		Keepalives: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "m18_keepalives_total",
			Help: "Keepalive commands sent during charger simulation.",
		}),
		ResponseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "m18_response_seconds",
			Help:    "Time from the first byte wait to a complete response.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2},
		}),
	}
	m.registry.MustRegister(
		m.FramesSent,
		m.FramesReceived,
		m.Nacks,
		m.ReadErrors,
		m.ResetAttempts,
		m.ResetFailures,
		m.Keepalives,
		m.ResponseTime,
	)
	return m
}

// Registry exposes the collectors for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in text exposition format,
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) Sent() {
	if m != nil {
		m.FramesSent.Inc()
	}
}

func (m *Metrics) Received(seconds float64) {
	if m != nil {
		m.FramesReceived.Inc()
		m.ResponseTime.Observe(seconds)
	}
}

func (m *Metrics) Nack() {
	if m != nil {
		m.Nacks.Inc()
	}
}

func (m *Metrics) ReadError(kind string) {
	if m != nil {
		m.ReadErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ResetAttempt() {
	if m != nil {
		m.ResetAttempts.Inc()
	}
}

func (m *Metrics) ResetFailure() {
	if m != nil {
		m.ResetFailures.Inc()
	}
}

func (m *Metrics) Keepalive() {
	if m != nil {
		m.Keepalives.Inc()
	}
}
