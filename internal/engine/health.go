// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ffutop/m18link/registers"
)

// Battery is a known pack model.
type Battery struct {
	Capacity    float64 // Ah
	Description string
}

var batteries = map[uint16]Battery{
	37:  {2, "2Ah CP (5s1p 18650)"},
	40:  {5, "5Ah XC (5s2p 18650)"},
	165: {5, "5Ah XC (5s2p 18650)"},
	46:  {6, "6Ah XC (5s2p 18650)"},
	104: {3, "3Ah HO (5s1p 21700)"},
	106: {6, "6Ah HO (5s2p 21700)"},
	107: {8, "8Ah HO (5s2p 21700)"},
	108: {12, "12Ah HO (5s3p 21700)"},
	383: {8, "8Ah HO (5s2p 21700)"},
	384: {12, "12Ah HO (5s3p 21700)"},
}

// LookupBattery returns the model for a battery type code. Unknown codes
// have zero capacity.
func LookupBattery(code uint16) Battery {
	if b, ok := batteries[code]; ok {
		return b
	}
	return Battery{Description: "Unknown"}
}

// Bin is one 10 A wide bucket of the discharge-current histogram.
type Bin struct {
	Label   string
	Seconds uint64
	Percent float64
}

// Bar is the bin's ASCII bar, one character per percent.
func (b Bin) Bar() string {
	return strings.Repeat("X", int(math.Round(b.Percent)))
}

// Health is the summary derived from the health registers.
type Health struct {
	Now time.Time

	BatteryType uint16
	ESerial     string
	Battery     Battery

	Manufactured time.Time
	FirstCharge  time.Time
	LastToolUse  time.Time
	LastCharge   time.Time

	Cells       []uint16
	PackVoltage float64
	Imbalance   uint16

	Temperature    float64
	HasTemperature bool

	RedlinkCharges    uint64
	DumbCharges       uint64
	TotalCharges      uint64
	LowVoltageCharges uint64
	ChargeTime        string
	ChargerIdleTime   string

	DischargeAh      float64
	DischargedEmpty  uint64
	Overheated       uint64
	Overcurrent      uint64
	LowVoltage       uint64
	LowVoltageBounce uint64

	ToolTime uint64
	Bins     []Bin
}

// Cycles is the equivalent number of full discharges, or "unknown" for an
// unrecognised pack.
func (h *Health) Cycles() string {
	if h.Battery.Capacity == 0 {
		return "unknown"
	}
	return strconv.FormatFloat(h.DischargeAh/h.Battery.Capacity, 'f', 2, 64)
}

// DaysSince returns whole days between t and the report time. ok is false
// when the pack never recorded the date.
func (h *Health) DaysSince(t time.Time) (days int, ok bool) {
	if !dateSet(t) {
		return 0, false
	}
	return int(h.Now.Sub(t).Hours() / 24), true
}

// dateSet reports whether t holds a recorded date. Blank date registers
// decode to the Unix epoch.
func dateSet(t time.Time) bool {
	return !t.IsZero() && t.Unix() != 0
}

var numberToken = regexp.MustCompile(`\d+`)

// deriveHealth builds a Health from readings keyed by catalog index.
func deriveHealth(readings []Reading, now time.Time) (*Health, error) {
	byIndex := make(map[int]registers.Value, len(readings))
	for _, r := range readings {
		if r.OK {
			byIndex[r.Index] = r.Value
		}
	}
	get := func(idx int) (registers.Value, bool) {
		v, ok := byIndex[idx]
		return v, ok
	}

	h := &Health{Now: now}

	serial, ok := get(registers.IdxSerial)
	if !ok {
		return nil, fmt.Errorf("serial number register unavailable")
	}
	tokens := numberToken.FindAllString(serial.String(), -1)
	if len(tokens) < 2 {
		return nil, fmt.Errorf("cannot parse serial %q", serial.String())
	}
	code, err := strconv.ParseUint(tokens[0], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("battery type %q: %w", tokens[0], err)
	}
	h.BatteryType = uint16(code)
	h.ESerial = tokens[1]
	h.Battery = LookupBattery(h.BatteryType)

	cells, ok := get(registers.IdxCellVoltages)
	if !ok || len(cells.Cells) == 0 {
		return nil, fmt.Errorf("cell voltage register unavailable")
	}
	h.Cells = cells.Cells
	var sum int
	for _, c := range h.Cells {
		sum += int(c)
	}
	h.PackVoltage = float64(sum) / 1000
	h.Imbalance = slices.Max(h.Cells) - slices.Min(h.Cells)

	dates := []struct {
		idx int
		dst *time.Time
	}{
		{registers.IdxManufactureDate, &h.Manufactured},
		{registers.IdxFirstCharge, &h.FirstCharge},
		{registers.IdxLastToolUse, &h.LastToolUse},
		{registers.IdxLastCharge, &h.LastCharge},
	}
	for _, d := range dates {
		if v, ok := get(d.idx); ok {
			*d.dst = v.Time
		}
	}

	if v, ok := get(registers.IdxTemperature); ok {
		h.Temperature, h.HasTemperature = v.Celsius, true
	} else if v, ok := get(registers.IdxForgeTemperature); ok {
		h.Temperature, h.HasTemperature = v.Celsius, true
	}

	counters := []struct {
		idx int
		dst *uint64
	}{
		{registers.IdxRedlinkCharges, &h.RedlinkCharges},
		{registers.IdxDumbCharges, &h.DumbCharges},
		{registers.IdxTotalCharges, &h.TotalCharges},
		{registers.IdxLowVoltageCharge, &h.LowVoltageCharges},
		{registers.IdxDischargedEmpty, &h.DischargedEmpty},
		{registers.IdxOverheated, &h.Overheated},
		{registers.IdxOvercurrent, &h.Overcurrent},
		{registers.IdxLowVoltage, &h.LowVoltage},
		{registers.IdxLowVoltageBounce, &h.LowVoltageBounce},
	}
	for _, c := range counters {
		if v, ok := get(c.idx); ok {
			*c.dst = v.Uint
		}
	}
	if v, ok := get(registers.IdxChargeTime); ok {
		h.ChargeTime = v.Text
	}
	if v, ok := get(registers.IdxChargerIdleTime); ok {
		h.ChargerIdleTime = v.Text
	}
	if v, ok := get(registers.IdxTotalDischarge); ok {
		h.DischargeAh = float64(v.Uint) / 3600
	}

	h.Bins = make([]Bin, registers.HistogramBins)
	for i := range h.Bins {
		h.Bins[i].Label = binLabel(i)
		if v, ok := get(registers.IdxHistogram + i); ok {
			h.Bins[i].Seconds = v.Uint
			h.ToolTime += v.Uint
		}
	}
	for i := range h.Bins {
		h.Bins[i].Percent = percent(h.Bins[i].Seconds, h.ToolTime)
	}
	return h, nil
}

func percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func binLabel(i int) string {
	if i == registers.HistogramBins-1 {
		return "> 200A"
	}
	lo := 10 * (i + 1)
	return fmt.Sprintf("%d-%dA", lo, lo+10)
}

// Render formats the report for a terminal.
func (h *Health) Render() string {
	var sb strings.Builder
	p := func(format string, args ...any) {
		fmt.Fprintf(&sb, format+"\n", args...)
	}
	date := func(t time.Time) string {
		if !dateSet(t) {
			return "unknown"
		}
		return t.Format("2006-01-02")
	}
	days := func(t time.Time) string {
		d, ok := h.DaysSince(t)
		if !ok {
			return "unknown"
		}
		return strconv.Itoa(d)
	}

	p("Type: %d [%s]", h.BatteryType, h.Battery.Description)
	p("E-serial: %s (does NOT match case serial)", h.ESerial)
	p("Manufacture date: %s", date(h.Manufactured))
	p("Days since first charge: %s", days(h.FirstCharge))
	p("Days since last tool use: %s", days(h.LastToolUse))
	p("Days since last charge: %s", days(h.LastCharge))
	p("Pack voltage: %.3f", h.PackVoltage)
	p("Cell voltages (mV): %s", joinCells(h.Cells))
	p("Cell imbalance (mV): %d", h.Imbalance)
	if h.HasTemperature {
		p("Temperature (deg C): %.2f", h.Temperature)
	} else {
		p("Temperature (deg C): unknown")
	}

	p("\nCHARGING STATS:")
	p("Charge count [Redlink, dumb, (total)]: %d, %d, (%d)", h.RedlinkCharges, h.DumbCharges, h.TotalCharges)
	p("Total charge time: %s", h.ChargeTime)
	p("Time idling on charger: %s", h.ChargerIdleTime)
	p("Low-voltage charges (any cell <2.5V): %d", h.LowVoltageCharges)

	p("\nDISCHARGE STATS:")
	p("Total discharge (Ah): %.2f", h.DischargeAh)
	p("Total discharge cycles: %s", h.Cycles())
	p("Times discharged to empty: %d", h.DischargedEmpty)
	p("Times overheated: %d", h.Overheated)
	p("Overcurrent events: %d", h.Overcurrent)
	p("Low-voltage events: %d", h.LowVoltage)
	p("Low-voltage bounce/stutter: %d", h.LowVoltageBounce)
	p("Total time on tool (>10A): %s", registers.FormatSeconds(uint32(min(h.ToolTime, math.MaxUint32))))
	for _, b := range h.Bins {
		p("Time @ %8s: %8d s %3.0f%% %s", b.Label, b.Seconds, b.Percent, b.Bar())
	}
	return sb.String()
}

func joinCells(cells []uint16) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = strconv.Itoa(int(c))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ReadHealth reads the health registers and derives the report. Frame
// tracing is off while it runs. The link ends in Idle.
func (e *Engine) ReadHealth(ctx context.Context) (*Health, error) {
	defer e.quiet()()
	readings, err := e.ReadIDs(ctx, registers.HealthIndices(), e.cfg.HealthRefresh)
	if err != nil {
		return nil, err
	}
	return deriveHealth(readings, e.clock.Now())
}

// HealthReport is ReadHealth rendered as text. Failures are reported in
// the returned text.
func (e *Engine) HealthReport(ctx context.Context) string {
	h, err := e.ReadHealth(ctx)
	if err != nil {
		e.log.Warn("health report failed", "err", err)
		return fmt.Sprintf("Health report failed: %v\n", err)
	}
	return h.Render()
}
