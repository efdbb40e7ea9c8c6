// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package registers

// Block is a contiguous (address, length) read.
type Block struct {
	Address uint16
	Length  uint8
}

// RefreshMatrix is read front to back before a forced dump. The pack only
// refreshes its cached statistics after these blocks have been requested.
var RefreshMatrix = []Block{
	{0x0000, 0x20},
	{0x0020, 0x20},
	{0x0040, 0x20},
	{0x0060, 0x1C},
	{0x4000, 0x20},
	{0x6000, 0x0D},
	{0x9000, 0x20},
	{0x9020, 0x20},
	{0x9040, 0x20},
	{0x9060, 0x20},
	{0x9080, 0x20},
	{0x90A0, 0x20},
	{0x90C0, 0x20},
	{0x90E0, 0x15},
	{0xA000, 0x06},
}

// Registers the health report is derived from.
var (
	IdxSerial           = mustIndex(0x0004)
	IdxManufactureDate  = mustIndex(0x0011)
	IdxCellVoltages     = mustIndex(0x400A)
	IdxTemperature      = mustIndex(0x4014)
	IdxForgeTemperature = mustIndex(0x6006)
	IdxFirstCharge      = mustIndex(0x9000)
	IdxLastToolUse      = mustIndex(0x9004)
	IdxLastCharge       = mustIndex(0x9008)
	IdxTotalDischarge   = mustIndex(0x9014)
	IdxDischargedEmpty  = mustIndex(0x901C)
	IdxOverheated       = mustIndex(0x901E)
	IdxOvercurrent      = mustIndex(0x9020)
	IdxLowVoltage       = mustIndex(0x9022)
	IdxLowVoltageBounce = mustIndex(0x9024)
	IdxHistogram        = mustIndex(0x9044)
	IdxRedlinkCharges   = mustIndex(0x90A0)
	IdxDumbCharges      = mustIndex(0x90A2)
	IdxTotalCharges     = mustIndex(0x90A4)
	IdxLowVoltageCharge = mustIndex(0x90A6)
	IdxChargeTime       = mustIndex(0x90A8)
	IdxChargerIdleTime  = mustIndex(0x90AC)
)

// HistogramBins is the number of 10 A wide discharge-current bins.
const HistogramBins = 20

// HealthIndices returns the registers read for a health report, histogram
// bins last.
func HealthIndices() []int {
	ids := []int{
		IdxSerial, IdxManufactureDate, IdxFirstCharge, IdxLastToolUse,
		IdxLastCharge, IdxCellVoltages, IdxTemperature, IdxForgeTemperature,
		IdxRedlinkCharges, IdxDumbCharges, IdxTotalCharges, IdxChargeTime,
		IdxChargerIdleTime, IdxLowVoltageCharge, IdxTotalDischarge,
		IdxDischargedEmpty, IdxOverheated, IdxOvercurrent, IdxLowVoltage,
		IdxLowVoltageBounce,
	}
	for i := 0; i < HistogramBins; i++ {
		ids = append(ids, IdxHistogram+i)
	}
	return ids
}
