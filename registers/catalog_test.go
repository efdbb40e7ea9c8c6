// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package registers

import (
	"strings"
	"testing"
)

var blocks = []struct {
	start, end uint16
}{
	{0x0000, 0x007B},
	{0x4000, 0x401F},
	{0x6000, 0x600C},
	{0x9000, 0x90F4},
	{0xA000, 0xA005},
}

func TestCatalogShape(t *testing.T) {
	if Size != 140 {
		t.Errorf("catalog has %d entries, want 140", Size)
	}

	for i, d := range All() {
		if d.Length < 1 || d.Length > 20 {
			t.Errorf("entry %d: length %d out of range", i, d.Length)
		}
		if d.Label == "" {
			t.Errorf("entry %d: empty label", i)
		}
		inBlock := false
		for _, b := range blocks {
			if d.Address >= b.start && d.End() <= b.end {
				inBlock = true
				break
			}
		}
		if !inBlock {
			t.Errorf("entry %d at 0x%04X+%d lies outside every block", i, d.Address, d.Length)
		}
		if i > 0 {
			prev, _ := Lookup(i - 1)
			if d.Address <= prev.End() {
				t.Errorf("entry %d at 0x%04X overlaps entry %d", i, d.Address, i-1)
			}
		}
	}
}

func TestCatalogFixedSizes(t *testing.T) {
	want := map[Type]uint8{
		Date:               4,
		Duration:           4,
		SerialNumber:       5,
		AdcTemperature:     2,
		DecimalTemperature: 2,
		CellVoltages:       10,
	}
	for i, d := range All() {
		if n, ok := want[d.Type]; ok && d.Length != n {
			t.Errorf("entry %d (%s) has length %d, want %d", i, d.Type, d.Length, n)
		}
	}
}

func TestLookupOutOfRange(t *testing.T) {
	for _, i := range []int{-1, Size, Size + 10} {
		if _, ok := Lookup(i); ok {
			t.Errorf("Lookup(%d) ok, want miss", i)
		}
	}
}

func TestHealthIndices(t *testing.T) {
	ids := HealthIndices()
	if len(ids) != 20+HistogramBins {
		t.Fatalf("HealthIndices() has %d entries", len(ids))
	}
	for _, i := range ids {
		if _, ok := Lookup(i); !ok {
			t.Fatalf("health index %d not in catalog", i)
		}
	}
	for b := 0; b < HistogramBins; b++ {
		d, _ := Lookup(IdxHistogram + b)
		if !strings.HasPrefix(d.Label, "Time @") || d.Length != 4 {
			t.Errorf("histogram bin %d maps to %q", b, d.Label)
		}
	}
	if d, _ := Lookup(IdxSerial); d.Type != SerialNumber {
		t.Errorf("IdxSerial has type %s", d.Type)
	}
	if d, _ := Lookup(IdxCellVoltages); d.Type != CellVoltages {
		t.Errorf("IdxCellVoltages has type %s", d.Type)
	}
}

func TestRefreshMatrixCoversBlocks(t *testing.T) {
	covered := func(addr uint16) bool {
		for _, b := range RefreshMatrix {
			if addr >= b.Address && addr < b.Address+uint16(b.Length) {
				return true
			}
		}
		return false
	}
	for _, d := range All() {
		for a := d.Address; a <= d.End(); a++ {
			if !covered(a) {
				t.Errorf("register 0x%04X: byte 0x%04X not covered by the refresh matrix", d.Address, a)
				break
			}
		}
	}
}
