// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"log/slog"
	"time"

	"github.com/ffutop/m18link/internal/metrics"
)

// Config holds protocol timing and charger defaults.
type Config struct {
	// ReadTimeout bounds every blocking read.
	ReadTimeout time.Duration

	// ResetAttempts is how many handshakes Reset tries before giving up.
	ResetAttempts int
	// ResetHold is how long each control-line level is held.
	ResetHold time.Duration
	// ResetBackoff is the pause after a failed handshake.
	ResetBackoff time.Duration
	// ResetSettle is the pause after a successful handshake.
	ResetSettle time.Duration

	// RefreshPause follows a refresh-matrix pass.
	RefreshPause time.Duration
	// HealthRefresh runs the refresh matrix before a health report.
	HealthRefresh bool

	// KeepaliveInterval paces the simulation loop.
	KeepaliveInterval time.Duration
	// NegotiationPause separates the two configure rounds of a simulation.
	NegotiationPause time.Duration

	// Default charger limits in raw units (about 1 mA each).
	CutoffCurrent uint16
	MaxCurrent    uint16
}

// DefaultConfig returns the production timing.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:       1200 * time.Millisecond,
		ResetAttempts:     3,
		ResetHold:         300 * time.Millisecond,
		ResetBackoff:      50 * time.Millisecond,
		ResetSettle:       10 * time.Millisecond,
		RefreshPause:      100 * time.Millisecond,
		HealthRefresh:     true,
		KeepaliveInterval: 500 * time.Millisecond,
		NegotiationPause:  600 * time.Millisecond,
		CutoffCurrent:     300,
		MaxCurrent:        6000,
	}
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger used for traces without hooks.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithHooks routes TX, RX and debug traces to h.
func WithHooks(h Hooks) Option {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithMetrics records protocol counters in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTxRx sets the initial frame tracing flags.
func WithTxRx(tx, rx bool) Option {
	return func(e *Engine) {
		e.printTx, e.printRx = tx, rx
	}
}
