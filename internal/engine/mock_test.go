// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"encoding/binary"
	"io"
	"log/slog"
	"time"

	"github.com/ffutop/m18link/protocol"
	"github.com/ffutop/m18link/registers"
	"github.com/ffutop/m18link/transport"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

// mockPort answers each written frame through respond. Frames are handed
// to respond and queued back in logical byte order; the port does the bit
// reversal the wire would.
type mockPort struct {
	clock   *fakeClock
	respond func(frame []byte) []byte

	lineA, lineB bool
	frames       [][]byte
	wire         [][]byte
	sleepsAtTx   [][]time.Duration
	pending      []byte
	purges       int
	closed       bool
}

func (p *mockPort) SetControlLineA(on bool) error { p.lineA = on; return nil }
func (p *mockPort) SetControlLineB(on bool) error { p.lineB = on; return nil }

func (p *mockPort) PurgeReceive() error {
	p.purges++
	p.pending = nil
	return nil
}

func (p *mockPort) PurgeAll() error { return p.PurgeReceive() }

func (p *mockPort) WriteExact(b []byte) error {
	if p.closed {
		return transport.ErrClosed
	}
	p.wire = append(p.wire, append([]byte(nil), b...))
	frame := protocol.Reverse(b)
	p.frames = append(p.frames, frame)
	if p.clock != nil {
		p.sleepsAtTx = append(p.sleepsAtTx, append([]time.Duration(nil), p.clock.sleeps...))
	}
	if p.respond != nil {
		p.pending = append(p.pending, protocol.Reverse(p.respond(frame))...)
	}
	return nil
}

func (p *mockPort) ReadExact(n int, _ time.Duration) ([]byte, error) {
	if p.closed {
		return nil, transport.ErrClosed
	}
	if len(p.pending) == 0 {
		return nil, transport.ErrTimeout
	}
	if len(p.pending) < n {
		got := len(p.pending)
		p.pending = nil
		return nil, &transport.ShortReadError{Want: n, Got: got}
	}
	out := p.pending[:n]
	p.pending = p.pending[n:]
	return out, nil
}

func (p *mockPort) Close() error {
	p.closed = true
	return nil
}

// commands returns the first byte of every frame written.
func (p *mockPort) commands() []byte {
	out := make([]byte, len(p.frames))
	for i, f := range p.frames {
		out[i] = f[0]
	}
	return out
}

// packResponder answers like a pack backed by a register image.
func packResponder(image []byte) func([]byte) []byte {
	return func(f []byte) []byte {
		switch f[0] {
		case protocol.Sync:
			return []byte{protocol.Sync}
		case protocol.CmdRead:
			addr := int(binary.BigEndian.Uint16(f[3:5]))
			if f[1] == protocol.SubWrite {
				image[addr] = f[5]
				return protocol.AddChecksum([]byte{protocol.Ack, protocol.SubWrite, 0x03, f[5]})
			}
			n := int(f[5])
			if addr+n > len(image) {
				return []byte{protocol.Nack}
			}
			return protocol.BuildReadResponse(protocol.SubRead, image[addr:addr+n])
		case protocol.CmdConfigure:
			return protocol.BuildSessionResponse(f[0], f[1], protocol.ConfigureResponseLength)
		case protocol.CmdSnapshot:
			return protocol.BuildSessionResponse(f[0], f[1], protocol.SnapshotResponseLength)
		case protocol.CmdKeepalive:
			return protocol.BuildSessionResponse(f[0], f[1], protocol.KeepaliveResponseLength)
		case protocol.CmdCalibrate:
			return protocol.BuildSessionResponse(f[0], f[1], protocol.CalibrateResponseLength)
		}
		return []byte{protocol.Nack}
	}
}

func put(image []byte, addr uint16, b ...byte) {
	copy(image[addr:], b)
}

// healthyImage is a 12Ah pack with a small discharge history.
func healthyImage() []byte {
	img := make([]byte, 0x10000)
	put(img, 0x0004, 0x00, 108, 0x12, 0xD6, 0x87) // type 108, serial 1234567
	put(img, 0x0011, be32(1577836800)...)        // 2020-01-01
	put(img, 0x400A, 0x0F, 0xA0, 0x0F, 0xA2, 0x0F, 0xA4, 0x0F, 0xA0, 0x0F, 0xA1)
	put(img, 0x4014, 0x01, 0x80)
	put(img, 0x9000, be32(1590969600)...) // 2020-06-01
	put(img, 0x9004, be32(1717070400)...) // 2024-05-30 12:00
	put(img, 0x9008, be32(1716897600)...) // 2024-05-28 12:00
	put(img, 0x9014, be32(3600*120)...)
	put(img, 0x901C, 0x00, 0x04)
	put(img, 0x9044, be32(3600)...)
	put(img, 0x9048, be32(1200)...)
	put(img, 0x90A0, 0x00, 0x64)
	put(img, 0x90A2, 0x00, 0x0A)
	put(img, 0x90A4, 0x00, 0x6E)
	put(img, 0x90A8, be32(3661)...)
	return img
}

func be32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func newTestEngine(respond func([]byte) []byte) (*Engine, *mockPort, *fakeClock) {
	clock := newFakeClock()
	port := &mockPort{clock: clock, respond: respond}
	e := New(port,
		WithClock(clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return e, port, clock
}

// descriptorAt returns the catalog entry for addr or panics.
func descriptorAt(addr uint16) (int, registers.Descriptor) {
	idx, ok := registers.IndexOf(addr)
	if !ok {
		panic("no register at address")
	}
	d, _ := registers.Lookup(idx)
	return idx, d
}
