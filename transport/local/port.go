// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package local connects the engine to an in-process pack emulator.
package local

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ffutop/m18link/internal/config"
	"github.com/ffutop/m18link/internal/emulator"
	"github.com/ffutop/m18link/protocol"
	"github.com/ffutop/m18link/transport"
)

// Port implements transport.Port against an emulator.Device. Written bytes
// are collected into request frames and answered synchronously, so a
// response is ready to read as soon as the request is written.
type Port struct {
	mu      sync.Mutex
	device  *emulator.Device
	storage io.Closer

	lineA, lineB bool

	tx     []byte // partial request, logical order
	rx     []byte // pending response, wire order
	closed bool
}

var _ transport.Port = (*Port)(nil)

// NewPort wraps device. storage, if not nil, is closed with the port.
func NewPort(device *emulator.Device, storage io.Closer) *Port {
	return &Port{device: device, storage: storage}
}

// Open builds the emulator from cfg and returns a port attached to it.
func Open(cfg config.EmulatorConfig) *Port {
	dev, storage := emulator.Open(cfg, time.Now())
	return NewPort(dev, storage)
}

// Device returns the emulated pack.
func (p *Port) Device() *emulator.Device { return p.device }

func (p *Port) SetControlLineA(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return transport.ErrClosed
	}
	p.lineA = on
	p.device.SetLines(p.lineA, p.lineB)
	return nil
}

func (p *Port) SetControlLineB(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return transport.ErrClosed
	}
	p.lineB = on
	p.device.SetLines(p.lineA, p.lineB)
	return nil
}

func (p *Port) PurgeReceive() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return transport.ErrClosed
	}
	p.rx = nil
	return nil
}

func (p *Port) PurgeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return transport.ErrClosed
	}
	p.rx = nil
	p.tx = nil
	return nil
}

// WriteExact feeds wire bytes to the emulator one at a time.
func (p *Port) WriteExact(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return transport.ErrClosed
	}

	for _, w := range b {
		p.tx = append(p.tx, protocol.ReverseBits(w))
		need, err := protocol.RequestLength(p.tx[:1])
		if err != nil {
			slog.Debug("Emulator discarding byte", "byte", p.tx[0], "err", err)
			p.tx = nil
			continue
		}
		if len(p.tx) < need {
			continue
		}
		if resp := p.device.Handle(p.tx); resp != nil {
			p.rx = append(p.rx, protocol.Reverse(resp)...)
		}
		p.tx = nil
	}
	return nil
}

// ReadExact returns buffered response bytes. The emulator answers
// immediately, so the timeout is never waited on.
func (p *Port) ReadExact(n int, _ time.Duration) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, transport.ErrClosed
	}
	if len(p.rx) == 0 {
		return nil, transport.ErrTimeout
	}
	if len(p.rx) < n {
		got := len(p.rx)
		p.rx = nil
		return nil, &transport.ShortReadError{Want: n, Got: got}
	}
	out := make([]byte, n)
	copy(out, p.rx)
	p.rx = p.rx[n:]
	return out, nil
}

// Close closes the storage.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.storage != nil {
		return p.storage.Close()
	}
	return nil
}
