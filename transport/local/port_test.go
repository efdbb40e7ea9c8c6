// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ffutop/m18link/internal/config"
	"github.com/ffutop/m18link/internal/emulator"
	"github.com/ffutop/m18link/internal/emulator/model"
	"github.com/ffutop/m18link/internal/engine"
	"github.com/ffutop/m18link/protocol"
	"github.com/ffutop/m18link/transport"
)

type instantClock struct{ now time.Time }

func (c *instantClock) Now() time.Time        { return c.now }
func (c *instantClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

func newEngine(t *testing.T, p *Port) *engine.Engine {
	t.Helper()
	return engine.New(p,
		engine.WithClock(&instantClock{now: time.Now()}),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithTxRx(false, false),
	)
}

func TestPort_Framing(t *testing.T) {
	dev := emulator.NewDevice(model.NewImage())
	p := NewPort(dev, nil)

	if _, err := p.ReadExact(1, time.Second); !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("empty read err = %v", err)
	}

	req := protocol.Reverse(protocol.AddChecksum(protocol.ReadRequest(protocol.CmdRead, 0x00, 0x00, 4)))
	if err := p.WriteExact(req[:3]); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ReadExact(1, time.Second); !errors.Is(err, transport.ErrTimeout) {
		t.Error("partial request answered")
	}
	if err := p.WriteExact(req[3:]); err != nil {
		t.Fatal(err)
	}

	var short *transport.ShortReadError
	if _, err := p.ReadExact(20, time.Second); !errors.As(err, &short) || short.Got != 9 {
		t.Errorf("oversized read err = %v", err)
	}

	if err := p.WriteExact(req); err != nil {
		t.Fatal(err)
	}
	got, err := p.ReadExact(9, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	want := protocol.Reverse(protocol.BuildReadResponse(protocol.SubRead, make([]byte, 4)))
	if !bytes.Equal(got, want) {
		t.Errorf("response = % X, want % X", got, want)
	}
}

func TestPort_Closed(t *testing.T) {
	p := NewPort(emulator.NewDevice(model.NewImage()), nil)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteExact([]byte{0x55}); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("write after close err = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestEngineAgainstEmulator(t *testing.T) {
	p := Open(config.EmulatorConfig{RequireLineReset: true})
	e := newEngine(t, p)
	defer e.Close()

	h, err := e.ReadHealth(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if h.BatteryType != emulator.SeedBatteryType || h.Battery.Capacity != 12 {
		t.Errorf("health type %d capacity %v", h.BatteryType, h.Battery.Capacity)
	}
	if len(h.Cells) != 5 || h.ToolTime == 0 {
		t.Errorf("cells %v tool time %d", h.Cells, h.ToolTime)
	}
	if !strings.Contains(h.Render(), "12Ah HO") {
		t.Error("render missing description")
	}

	if err := e.WriteMessage(context.Background(), "garage"); err != nil {
		t.Fatal(err)
	}
	msg, _ := p.Device().Image().Read(protocol.MessageAddress, protocol.MessageLength)
	if string(msg) != "garage--------------" {
		t.Errorf("message = %q", msg)
	}

	if err := e.SimulateFor(context.Background(), 2*time.Second, 150, 2500); err != nil {
		t.Fatal(err)
	}
	s := p.Device().Session()
	if s.State != 1 || s.CutoffCurrent != 150 || s.MaxCurrent != 2500 || s.Keepalives < 2 {
		t.Errorf("session = %+v", s)
	}
	if _, err := e.Calibrate(); err != nil {
		t.Fatal(err)
	}
}
