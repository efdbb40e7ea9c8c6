// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package engine drives a smart battery pack over its single-wire UART:
// the reset handshake, the command set, register dumps, the health report
// and the charger keepalive simulation.
//
// An Engine owns its transport exclusively and is not safe for concurrent
// use. Long operations take a context and stop between frames when it is
// cancelled.
package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ffutop/m18link/internal/metrics"
	"github.com/ffutop/m18link/protocol"
	"github.com/ffutop/m18link/transport"
)

// LinkState is the logical state of the two control lines.
type LinkState int

const (
	// StateIdle holds both lines asserted. Safe to connect or remove a pack.
	StateIdle LinkState = iota
	// StateActive clears both lines, which the pack reads as a charger.
	StateActive
	// StateResetting is held only while Reset runs.
	StateResetting
)

func (s LinkState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateResetting:
		return "resetting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Clock abstracts time so handshake timing can be tested.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Hooks receive human-readable protocol traces. Unset hooks log through
// the engine's logger.
type Hooks struct {
	OnTx    func(string)
	OnRx    func(string)
	OnDebug func(string)
}

// Engine is the protocol engine for one pack.
type Engine struct {
	port    transport.Port
	cfg     Config
	clock   Clock
	log     *slog.Logger
	hooks   Hooks
	metrics *metrics.Metrics

	printTx bool
	printRx bool

	state LinkState
	acc   byte

	cutoffCurrent uint16
	maxCurrent    uint16
}

// New creates an engine on port and puts the link into Idle.
func New(port transport.Port, opts ...Option) *Engine {
	e := &Engine{
		port:    port,
		cfg:     DefaultConfig(),
		clock:   realClock{},
		log:     slog.Default(),
		printTx: true,
		printRx: true,
		acc:     protocol.AccInitial,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cutoffCurrent = e.cfg.CutoffCurrent
	e.maxCurrent = e.cfg.MaxCurrent
	if e.hooks.OnTx == nil {
		e.hooks.OnTx = func(s string) { e.log.Info("TX", "frame", s) }
	}
	if e.hooks.OnRx == nil {
		e.hooks.OnRx = func(s string) { e.log.Info("RX", "frame", s) }
	}
	if e.hooks.OnDebug == nil {
		e.hooks.OnDebug = func(s string) { e.log.Debug(s) }
	}
	e.Idle()
	return e
}

// Close returns the link to Idle and releases the transport. Later calls
// behave as if the transport were never opened.
func (e *Engine) Close() error {
	if e.port == nil {
		return nil
	}
	e.Idle()
	err := e.port.Close()
	e.port = nil
	return err
}

// State returns the current link state.
func (e *Engine) State() LinkState { return e.state }

// Acc returns the access counter the next session command will carry.
func (e *Engine) Acc() byte { return e.acc }

// SetTxRx enables or disables frame tracing.
func (e *Engine) SetTxRx(tx, rx bool) {
	e.printTx, e.printRx = tx, rx
}

// TxRx reports whether frame tracing is enabled.
func (e *Engine) TxRx() (tx, rx bool) {
	return e.printTx, e.printRx
}

// quiet disables frame tracing and returns the function that restores it.
// Use as defer e.quiet()().
func (e *Engine) quiet() func() {
	tx, rx := e.printTx, e.printRx
	e.printTx, e.printRx = false, false
	return func() {
		e.printTx, e.printRx = tx, rx
	}
}

// Currents returns the charger limits used by Configure during simulation.
func (e *Engine) Currents() (cutoff, limit uint16) {
	return e.cutoffCurrent, e.maxCurrent
}

// SetCurrents replaces the charger limits.
func (e *Engine) SetCurrents(cutoff, limit uint16) {
	e.cutoffCurrent, e.maxCurrent = cutoff, limit
}

// SetKeepaliveInterval sets the simulation keepalive period.
func (e *Engine) SetKeepaliveInterval(d time.Duration) {
	e.cfg.KeepaliveInterval = d
}

// useCurrents swaps in new charger limits and returns the restore function.
func (e *Engine) useCurrents(cutoff, limit uint16) func() {
	oldCutoff, oldMax := e.cutoffCurrent, e.maxCurrent
	e.cutoffCurrent, e.maxCurrent = cutoff, limit
	return func() {
		e.cutoffCurrent, e.maxCurrent = oldCutoff, oldMax
	}
}

func (e *Engine) debugf(format string, args ...any) {
	e.hooks.OnDebug(fmt.Sprintf(format, args...))
}

// hexString formats p as space separated upper-case hex.
func hexString(p []byte) string {
	var sb strings.Builder
	for i, b := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
