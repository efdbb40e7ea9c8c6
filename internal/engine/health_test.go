// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ffutop/m18link/registers"
)

func TestReadHealth(t *testing.T) {
	e, _, _ := newTestEngine(packResponder(healthyImage()))
	e.SetTxRx(true, true)

	h, err := e.ReadHealth(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tx, rx := e.TxRx(); !tx || !rx {
		t.Error("frame tracing not restored")
	}

	if h.BatteryType != 108 || h.ESerial != "1234567" {
		t.Errorf("type %d serial %s", h.BatteryType, h.ESerial)
	}
	if h.Battery.Capacity != 12 {
		t.Errorf("capacity = %v", h.Battery.Capacity)
	}
	if h.PackVoltage != 20.007 {
		t.Errorf("pack voltage = %v", h.PackVoltage)
	}
	if h.Imbalance != 4 {
		t.Errorf("imbalance = %d", h.Imbalance)
	}
	if !h.HasTemperature || h.Temperature != 50 {
		t.Errorf("temperature = %v (%v)", h.Temperature, h.HasTemperature)
	}
	if got := h.Cycles(); got != "10.00" {
		t.Errorf("cycles = %s", got)
	}
	for _, tc := range []struct {
		name string
		at   time.Time
		want int
	}{
		{"last tool use", h.LastToolUse, 2},
		{"last charge", h.LastCharge, 4},
		{"first charge", h.FirstCharge, 1461},
	} {
		if got, ok := h.DaysSince(tc.at); !ok || got != tc.want {
			t.Errorf("days since %s = %d (%v), want %d", tc.name, got, ok, tc.want)
		}
	}
	if h.ToolTime != 4800 || h.Bins[0].Percent != 75 || h.Bins[1].Percent != 25 {
		t.Errorf("tool time %d bins %v %v", h.ToolTime, h.Bins[0].Percent, h.Bins[1].Percent)
	}
	if h.Bins[0].Bar() != strings.Repeat("X", 75) {
		t.Errorf("bar = %q", h.Bins[0].Bar())
	}
	if h.Bins[19].Label != "> 200A" || h.Bins[0].Label != "10-20A" {
		t.Errorf("labels %q %q", h.Bins[0].Label, h.Bins[19].Label)
	}
	if h.ChargeTime != "1:01:01" || h.TotalCharges != 110 || h.DischargedEmpty != 4 {
		t.Errorf("charge time %s total %d empty %d", h.ChargeTime, h.TotalCharges, h.DischargedEmpty)
	}

	out := h.Render()
	for _, want := range []string{
		"Type: 108 [12Ah HO (5s3p 21700)]",
		"E-serial: 1234567",
		"Manufacture date: 2020-01-01",
		"Days since first charge: 1461",
		"Cell voltages (mV): [4000, 4002, 4004, 4000, 4001]",
		"Total discharge cycles: 10.00",
		"Charge count [Redlink, dumb, (total)]: 100, 10, (110)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestHealthReport_Failure(t *testing.T) {
	e, port, _ := newTestEngine(nil)
	e.SetTxRx(true, true)

	out := e.HealthReport(context.Background())
	if !strings.HasPrefix(out, "Health report failed") {
		t.Errorf("report = %q", out)
	}
	if tx, rx := e.TxRx(); !tx || !rx {
		t.Error("frame tracing left disabled after failure")
	}
	if !port.lineA || !port.lineB {
		t.Error("link not idle after failure")
	}
}

func TestDeriveHealth_ZeroToolTime(t *testing.T) {
	readings := []Reading{
		{Index: registers.IdxSerial, OK: true, Value: registers.Value{Type: registers.SerialNumber, Serial: registers.Serial{Type: 999, Number: 42}}},
		{Index: registers.IdxCellVoltages, OK: true, Value: registers.Value{Type: registers.CellVoltages, Cells: []uint16{3900, 3900, 3900, 3900, 3900}}},
		{Index: registers.IdxForgeTemperature, OK: true, Value: registers.Value{Type: registers.DecimalTemperature, Celsius: 25.5}},
	}
	h, err := deriveHealth(readings, newFakeClock().now)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range h.Bins {
		if b.Percent != 0 || b.Bar() != "" {
			t.Errorf("bin %d: percent %v bar %q", i, b.Percent, b.Bar())
		}
	}
	if h.Cycles() != "unknown" {
		t.Errorf("cycles = %s, want unknown", h.Cycles())
	}
	if h.Battery.Description != "Unknown" {
		t.Errorf("description = %s", h.Battery.Description)
	}
	if h.Temperature != 25.5 {
		t.Errorf("forge fallback temperature = %v", h.Temperature)
	}
	if !strings.Contains(h.Render(), "Manufacture date: unknown") {
		t.Error("missing date not rendered as unknown")
	}
}

func TestDeriveHealth_MissingSerial(t *testing.T) {
	if _, err := deriveHealth(nil, newFakeClock().now); err == nil {
		t.Error("expected error without serial")
	}
}

func TestDaysSince_BlankDate(t *testing.T) {
	blank, err := registers.Decode([]byte{0, 0, 0, 0}, registers.Date)
	if err != nil {
		t.Fatal(err)
	}
	h := &Health{Now: newFakeClock().now, FirstCharge: blank.Time}

	if d, ok := h.DaysSince(blank.Time); ok {
		t.Errorf("blank date gave %d days", d)
	}
	if d, ok := h.DaysSince(time.Time{}); ok {
		t.Errorf("zero time gave %d days", d)
	}
	out := h.Render()
	for _, want := range []string{
		"Days since first charge: unknown",
		"Manufacture date: unknown",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
