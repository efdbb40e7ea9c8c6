// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package uart

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/ffutop/m18link/internal/config"
	"github.com/ffutop/m18link/transport"
)

// Port is a host serial adapter wired to the pack. It implements
// transport.Port.
type Port struct {
	device string
	mode   serial.Mode

	mu   sync.Mutex
	port serial.Port
	brk  breakLine
}

// Open opens the device with the framing from cfg.
func Open(cfg config.SerialConfig) (*Port, error) {
	p := &Port{
		device: cfg.Device,
		mode: serial.Mode{
			BaudRate: cfg.BaudRate,
			DataBits: cfg.DataBits,
			Parity:   parity(cfg.Parity),
			StopBits: stopBits(cfg.StopBits),
		},
	}

	port, err := serial.Open(p.device, &p.mode)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", p.device, err)
	}
	brk, err := openBreakLine(p.device)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("could not open break line on %s: %w", p.device, err)
	}
	p.port = port
	p.brk = brk
	slog.Debug("serial port opened", "device", p.device, "baudRate", p.mode.BaudRate)
	return p, nil
}

func parity(s string) serial.Parity {
	switch s {
	case "E":
		return serial.EvenParity
	case "O":
		return serial.OddParity
	default:
		return serial.NoParity
	}
}

func stopBits(n int) serial.StopBits {
	if n == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

// SetControlLineA asserts or clears the BREAK condition.
func (p *Port) SetControlLineA(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return transport.ErrClosed
	}
	return p.brk.set(on)
}

// SetControlLineB drives DTR.
func (p *Port) SetControlLineB(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return transport.ErrClosed
	}
	return p.port.SetDTR(on)
}

func (p *Port) PurgeReceive() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return transport.ErrClosed
	}
	return p.port.ResetInputBuffer()
}

func (p *Port) PurgeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return transport.ErrClosed
	}
	if err := p.port.ResetInputBuffer(); err != nil {
		return err
	}
	return p.port.ResetOutputBuffer()
}

func (p *Port) WriteExact(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return transport.ErrClosed
	}
	n, err := p.port.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return &transport.ShortWriteError{Want: len(b), Got: n}
	}
	return p.port.Drain()
}

func (p *Port) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return nil, transport.ErrClosed
	}

	buf := make([]byte, n)
	got := 0
	deadline := time.Now().Add(timeout)
	for got < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := p.port.SetReadTimeout(remaining); err != nil {
			return nil, err
		}
		m, err := p.port.Read(buf[got:])
		if err != nil {
			return nil, err
		}
		if m == 0 {
			// read timeout elapsed
			break
		}
		got += m
	}

	switch {
	case got == 0 && n > 0:
		return nil, transport.ErrTimeout
	case got < n:
		return nil, &transport.ShortReadError{Want: n, Got: got}
	}
	return buf, nil
}

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	if e := p.brk.close(); err == nil {
		err = e
	}
	p.port = nil
	return err
}
