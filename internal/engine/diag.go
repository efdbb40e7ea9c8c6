// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"
	"fmt"

	"github.com/ffutop/m18link/protocol"
	"github.com/ffutop/m18link/registers"
)

// Reading is one entry of a register dump. OK is false when the index is
// outside the catalog, the pack did not ack, or the payload did not decode.
type Reading struct {
	Index    int
	Register registers.Descriptor
	Value    registers.Value
	OK       bool
}

// ReadAll resets the pack and reads every refresh-matrix block so the pack
// updates its cached statistics. The link ends in Idle.
func (e *Engine) ReadAll(ctx context.Context) error {
	defer e.Idle()
	if !e.Reset() {
		return protocol.ErrNoHandshake
	}
	return e.refresh(ctx)
}

func (e *Engine) refresh(ctx context.Context) error {
	for _, b := range registers.RefreshMatrix {
		if err := ctx.Err(); err != nil {
			return err
		}
		high, low := protocol.SplitAddress(b.Address)
		resp, err := e.ReadRegister(high, low, b.Length)
		if err != nil {
			return fmt.Errorf("refresh 0x%04X: %w", b.Address, err)
		}
		if resp.IsAck() {
			e.debugf("refresh 0x%04X len %d: ack", b.Address, b.Length)
		} else {
			e.debugf("refresh 0x%04X len %d: nack", b.Address, b.Length)
		}
	}
	return nil
}

// ReadIDs reads and decodes the catalog entries at indices, or the whole
// catalog when indices is empty. With forceRefresh the refresh matrix is
// read first. Entries that cannot be read are returned with OK false; only
// a failed handshake or a transport fault aborts the call. The link ends
// in Idle.
func (e *Engine) ReadIDs(ctx context.Context, indices []int, forceRefresh bool) ([]Reading, error) {
	defer e.Idle()
	if len(indices) == 0 {
		indices = make([]int, registers.Size)
		for i := range indices {
			indices[i] = i
		}
	}

	if !e.Reset() {
		return nil, protocol.ErrNoHandshake
	}
	if forceRefresh {
		if err := e.refresh(ctx); err != nil {
			return nil, err
		}
		e.clock.Sleep(e.cfg.RefreshPause)
		if !e.Reset() {
			return nil, protocol.ErrNoHandshake
		}
	}

	readings := make([]Reading, 0, len(indices))
	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return readings, err
		}
		r, err := e.readIndex(idx)
		if err != nil {
			return readings, err
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func (e *Engine) readIndex(idx int) (Reading, error) {
	r := Reading{Index: idx}
	d, ok := registers.Lookup(idx)
	if !ok {
		e.debugf("index %d is outside the catalog", idx)
		return r, nil
	}
	r.Register = d

	resp, err := e.ReadRegister(d.High(), d.Low(), d.Length)
	if err != nil {
		return r, fmt.Errorf("read index %d (0x%04X): %w", idx, d.Address, err)
	}
	if !resp.IsAck() {
		e.debugf("index %d (0x%04X): no ack", idx, d.Address)
		return r, nil
	}
	payload, err := resp.Payload(int(d.Length))
	if err != nil {
		e.debugf("index %d (0x%04X): %v", idx, d.Address, err)
		return r, nil
	}
	v, err := registers.Decode(payload, d.Type)
	if err != nil {
		e.debugf("index %d (0x%04X): %v", idx, d.Address, err)
		return r, nil
	}
	r.Value = v
	r.OK = true
	return r, nil
}

// Scan reads length bytes at every address in [from, to] and calls fn with
// the payload of each acked read. A failed read resets the link and the
// scan moves on; it stops only when that reset fails. The link ends in Idle.
func (e *Engine) Scan(ctx context.Context, from, to uint16, length uint8, fn func(addr uint16, payload []byte)) error {
	defer e.Idle()
	if from > to {
		return fmt.Errorf("scan range 0x%04X-0x%04X is empty", from, to)
	}
	if length == 0 {
		return fmt.Errorf("scan length must be positive")
	}
	if !e.Reset() {
		return protocol.ErrNoHandshake
	}

	for addr := int(from); addr <= int(to); addr++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		high, low := protocol.SplitAddress(uint16(addr))
		resp, err := e.ReadRegister(high, low, length)
		if err != nil {
			e.debugf("scan 0x%04X: %v", addr, err)
			if !e.Reset() {
				return fmt.Errorf("scan stopped at 0x%04X: %w", addr, protocol.ErrNoHandshake)
			}
			continue
		}
		if !resp.IsAck() {
			continue
		}
		if payload, err := resp.Payload(int(length)); err == nil {
			fn(uint16(addr), payload)
		}
	}
	return nil
}

// WriteMessage stores text in the pack's message register, truncated to
// its size and padded with '-'. The link ends in Idle.
func (e *Engine) WriteMessage(ctx context.Context, text string) error {
	defer e.Idle()
	msg := make([]byte, protocol.MessageLength)
	for i := range msg {
		msg[i] = protocol.MessageFiller
	}
	copy(msg, text)

	if !e.Reset() {
		return protocol.ErrNoHandshake
	}
	for i, c := range msg {
		if err := ctx.Err(); err != nil {
			return err
		}
		high, low := protocol.SplitAddress(protocol.MessageAddress + uint16(i))
		resp, err := e.WriteRegisterByte(high, low, c)
		if err != nil {
			return fmt.Errorf("write message byte %d: %w", i, err)
		}
		if !resp.IsAck() {
			return &protocol.NackError{Command: protocol.CmdRead}
		}
	}
	return nil
}
