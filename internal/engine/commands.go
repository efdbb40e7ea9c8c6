// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"errors"
	"fmt"

	"github.com/ffutop/m18link/protocol"
	"github.com/ffutop/m18link/transport"
)

// send purges stale input and writes p bit-reversed. p must already carry
// its checksum if one is needed.
func (e *Engine) send(p []byte) error {
	if e.port == nil {
		return transport.ErrClosed
	}
	if err := e.port.PurgeReceive(); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	if e.printTx {
		e.hooks.OnTx(hexString(p))
	}
	if err := e.port.WriteExact(protocol.Reverse(p)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	e.metrics.Sent()
	return nil
}

// sendCommand appends the checksum to p and sends it.
func (e *Engine) sendCommand(p []byte) error {
	return e.send(protocol.AddChecksum(p))
}

// readResponse reads an n byte frame. A first byte of 0x82 ends the frame
// early with a single-byte NACK response.
func (e *Engine) readResponse(n int) (protocol.Response, error) {
	if e.port == nil {
		return nil, transport.ErrClosed
	}
	start := e.clock.Now()
	first, err := e.port.ReadExact(1, e.cfg.ReadTimeout)
	if err != nil {
		e.metrics.ReadError("empty")
		return nil, fmt.Errorf("%w: %w", protocol.ErrEmptyResponse, err)
	}

	frame := protocol.Response{protocol.ReverseBits(first[0])}
	if frame.IsNack() {
		e.metrics.Nack()
	} else if n > 1 {
		rest, err := e.port.ReadExact(n-1, e.cfg.ReadTimeout)
		if err != nil {
			e.metrics.ReadError("short")
			var short *transport.ShortReadError
			if errors.As(err, &short) {
				return nil, fmt.Errorf("%w: got %d of %d bytes", protocol.ErrShortResponse, short.Got+1, n)
			}
			return nil, fmt.Errorf("%w: %w", protocol.ErrShortResponse, err)
		}
		frame = append(frame, protocol.Reverse(rest)...)
	}

	e.metrics.Received(e.clock.Now().Sub(start).Seconds())
	if e.printRx {
		e.hooks.OnRx(hexString(frame))
	}
	return frame, nil
}

// command sends p with its checksum and reads an n byte response.
func (e *Engine) command(p []byte, n int) (protocol.Response, error) {
	if err := e.sendCommand(p); err != nil {
		return nil, err
	}
	return e.readResponse(n)
}

// ReadRegister reads length bytes at (addrHigh, addrLow) with the standard
// read command. The response is returned as received; a NACK is not an
// error.
func (e *Engine) ReadRegister(addrHigh, addrLow, length byte) (protocol.Response, error) {
	return e.ReadRegisterWith(protocol.CmdRead, addrHigh, addrLow, length)
}

// ReadRegisterWith is ReadRegister with an explicit command byte.
func (e *Engine) ReadRegisterWith(cmd, addrHigh, addrLow, length byte) (protocol.Response, error) {
	req := protocol.ReadRequest(cmd, addrHigh, addrLow, length)
	return e.command(req, protocol.ReadResponseLength(int(length)))
}

// WriteRegisterByte writes one byte at (addrHigh, addrLow).
func (e *Engine) WriteRegisterByte(addrHigh, addrLow, value byte) (protocol.Response, error) {
	req := protocol.WriteRequest(addrHigh, addrLow, value)
	return e.command(req, protocol.WriteResponseLength)
}

// Configure sends the charger parameter frame with the current access
// counter. State 2 opens negotiation and 1 confirms it.
func (e *Engine) Configure(cutoffCurrent, maxCurrent uint16, state byte) (protocol.Response, error) {
	req := protocol.ConfigureRequest(e.acc, cutoffCurrent, maxCurrent, state)
	return e.command(req, protocol.ConfigureResponseLength)
}

// Snapshot requests a charger snapshot and advances the access counter.
func (e *Engine) Snapshot() (protocol.Response, error) {
	return e.sessionAdvance(protocol.CmdSnapshot, protocol.SnapshotResponseLength)
}

// Keepalive tells the pack a charger is still attached.
func (e *Engine) Keepalive() (protocol.Response, error) {
	if err := e.sendCommand(protocol.SessionRequest(protocol.CmdKeepalive, e.acc)); err != nil {
		return nil, err
	}
	e.metrics.Keepalive()
	return e.readResponse(protocol.KeepaliveResponseLength)
}

// Calibrate sends the calibration command and advances the access counter.
func (e *Engine) Calibrate() (protocol.Response, error) {
	return e.sessionAdvance(protocol.CmdCalibrate, protocol.CalibrateResponseLength)
}

func (e *Engine) sessionAdvance(cmd byte, n int) (protocol.Response, error) {
	if err := e.sendCommand(protocol.SessionRequest(cmd, e.acc)); err != nil {
		return nil, err
	}
	e.acc = protocol.NextAcc(e.acc)
	return e.readResponse(n)
}
