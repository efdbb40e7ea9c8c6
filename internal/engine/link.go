// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"github.com/ffutop/m18link/protocol"
)

// Idle asserts both control lines. Does nothing without a transport.
func (e *Engine) Idle() {
	e.setLines(true, StateIdle)
}

// Active clears both control lines. Does nothing without a transport.
func (e *Engine) Active() {
	e.setLines(false, StateActive)
}

func (e *Engine) setLines(on bool, next LinkState) {
	if e.port == nil {
		return
	}
	if err := e.port.SetControlLineA(on); err != nil {
		e.log.Warn("failed to set control line A", "on", on, "err", err)
	}
	if err := e.port.SetControlLineB(on); err != nil {
		e.log.Warn("failed to set control line B", "on", on, "err", err)
	}
	e.state = next
}

// Reset runs the wake-up handshake: both lines asserted, then cleared,
// then a SYNC byte that the pack must echo. It retries up to
// Config.ResetAttempts times and never returns an error; false means every
// attempt failed and the link was put back into Idle.
func (e *Engine) Reset() bool {
	e.acc = protocol.AccInitial
	if e.port == nil {
		return false
	}

	e.state = StateResetting
	for attempt := 1; attempt <= e.cfg.ResetAttempts; attempt++ {
		e.metrics.ResetAttempt()
		ok, err := e.resetOnce()
		if ok {
			e.clock.Sleep(e.cfg.ResetSettle)
			e.state = StateActive
			return true
		}
		if err != nil {
			e.debugf("reset attempt %d/%d failed: %v", attempt, e.cfg.ResetAttempts, err)
		} else {
			e.debugf("reset attempt %d/%d: unexpected handshake reply", attempt, e.cfg.ResetAttempts)
		}
		e.clock.Sleep(e.cfg.ResetBackoff)
	}

	e.metrics.ResetFailure()
	e.log.Warn("pack did not answer the reset handshake", "attempts", e.cfg.ResetAttempts)
	e.Idle()
	return false
}

func (e *Engine) resetOnce() (bool, error) {
	if err := e.port.PurgeReceive(); err != nil {
		return false, err
	}
	if err := e.port.SetControlLineA(true); err != nil {
		return false, err
	}
	if err := e.port.SetControlLineB(true); err != nil {
		return false, err
	}
	e.clock.Sleep(e.cfg.ResetHold)
	if err := e.port.SetControlLineA(false); err != nil {
		return false, err
	}
	if err := e.port.SetControlLineB(false); err != nil {
		return false, err
	}
	e.clock.Sleep(e.cfg.ResetHold)

	if err := e.send([]byte{protocol.Sync}); err != nil {
		return false, err
	}
	resp, err := e.readResponse(1)
	if err != nil {
		return false, err
	}
	return len(resp) == 1 && resp[0] == protocol.Sync, nil
}
