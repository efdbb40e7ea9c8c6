// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package registers

// Size is the number of catalog entries.
const Size = len(catalog)

// Lookup returns the descriptor at index i.
func Lookup(i int) (Descriptor, bool) {
	if i < 0 || i >= len(catalog) {
		return Descriptor{}, false
	}
	return catalog[i], true
}

// All returns a copy of the catalog.
func All() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog[:])
	return out
}

// IndexOf returns the catalog index of the register at addr.
func IndexOf(addr uint16) (int, bool) {
	for i := range catalog {
		if catalog[i].Address == addr {
			return i, true
		}
	}
	return 0, false
}

func mustIndex(addr uint16) int {
	i, ok := IndexOf(addr)
	if !ok {
		panic("registers: no register at address")
	}
	return i
}

// catalog lists every known register. Indices are stable: tools and
// spreadsheets built on the raw dump refer to registers by position.
var catalog = [...]Descriptor{
	// 0x0000 block: identity and factory data.
	{0x0000, 2, UInt, "Cell type"},
	{0x0002, 2, UInt, "Unknown (always 0)"},
	{0x0004, 5, SerialNumber, "Capacity & serial number"},
	{0x0009, 4, UInt, "Unknown (always 0)"},
	{0x000D, 4, UInt, "Unknown (always 0)"},
	{0x0011, 4, Date, "Manufacture date"},
	{0x0015, 4, Date, "Factory test date"},
	{0x0019, 2, UInt, "Unknown (always 0)"},
	{0x001B, 2, UInt, "Unknown"},
	{0x001D, 2, UInt, "Unknown"},
	{0x001F, 2, UInt, "Unknown"},
	{0x0021, 2, UInt, "Unknown"},
	{0x0023, 20, Ascii, "Note (ascii string)"},
	{0x0037, 4, Date, "Unknown date"},
	{0x003B, 2, UInt, "Unknown (always 0)"},
	{0x003D, 2, UInt, "Unknown"},
	{0x003F, 2, UInt, "Unknown"},
	{0x0041, 2, UInt, "Unknown (always 2)"},
	{0x0043, 4, Date, "Unknown date (only some packs)"},
	{0x0047, 2, UInt, "Unknown"},
	{0x0049, 2, UInt, "Unknown"},
	{0x004B, 2, UInt, "Unknown"},
	{0x004D, 2, UInt, "Unknown (always 0)"},
	{0x004F, 2, UInt, "Unknown"},
	{0x0051, 2, UInt, "Unknown"},
	{0x0053, 2, UInt, "Unknown"},
	{0x0055, 2, UInt, "Unknown"},
	{0x0057, 2, UInt, "Unknown"},
	{0x0059, 2, UInt, "Unknown"},
	{0x005B, 2, UInt, "Unknown"},
	{0x005D, 2, UInt, "Unknown"},
	{0x005F, 2, UInt, "Unknown"},
	{0x0061, 2, UInt, "Unknown"},
	{0x0063, 2, UInt, "Unknown"},
	{0x0065, 2, UInt, "Unknown"},
	{0x0067, 2, UInt, "Unknown"},
	{0x0069, 2, UInt, "Unknown"},
	{0x006B, 2, UInt, "Unknown"},
	{0x006D, 2, UInt, "Unknown"},
	{0x006F, 2, UInt, "Unknown"},
	{0x0071, 2, UInt, "Unknown"},
	{0x0073, 2, UInt, "Unknown"},
	{0x0075, 2, UInt, "Unknown"},
	{0x0077, 2, UInt, "Unknown"},
	{0x0079, 2, UInt, "Unknown"},
	{0x007B, 1, UInt, "Unknown"},

	// 0x4000 block: live measurements.
	{0x4000, 4, UInt, "Unknown"},
	{0x4004, 2, UInt, "Unknown"},
	{0x4006, 2, UInt, "Unknown"},
	{0x4008, 2, UInt, "Unknown"},
	{0x400A, 10, CellVoltages, "Cell voltages (mV)"},
	{0x4014, 2, AdcTemperature, "Temperature (deg C)"},
	{0x4016, 2, UInt, "Unknown"},
	{0x4018, 2, UInt, "Unknown"},
	{0x401A, 2, UInt, "Unknown"},
	{0x401C, 2, UInt, "Unknown"},
	{0x401E, 2, UInt, "Unknown"},

	// 0x6000 block: forge packs only.
	{0x6000, 2, UInt, "Unknown"},
	{0x6002, 2, UInt, "Unknown"},
	{0x6004, 2, UInt, "Unknown"},
	{0x6006, 2, DecimalTemperature, "Temperature (deg C, forge)"},
	{0x6008, 2, UInt, "Unknown"},
	{0x600A, 2, UInt, "Unknown"},
	{0x600C, 1, UInt, "Unknown"},

	// 0x9000 block: usage statistics.
	{0x9000, 4, Date, "Date of first charge"},
	{0x9004, 4, Date, "Date of last tool use"},
	{0x9008, 4, Date, "Date of last charge"},
	{0x900C, 4, UInt, "Unknown (always 0)"},
	{0x9010, 2, UInt, "Unknown"},
	{0x9012, 2, UInt, "Unknown"},
	{0x9014, 4, UInt, "Total discharge (amp-seconds)"},
	{0x9018, 4, UInt, "Unknown"},
	{0x901C, 2, UInt, "Times discharged to empty"},
	{0x901E, 2, UInt, "Times overheated"},
	{0x9020, 2, UInt, "Overcurrent events"},
	{0x9022, 2, UInt, "Low-voltage events"},
	{0x9024, 2, UInt, "Low-voltage bounce/stutter"},
	{0x9026, 2, UInt, "Unknown"},
	{0x9028, 2, UInt, "Unknown"},
	{0x902A, 2, UInt, "Unknown"},
	{0x902C, 4, UInt, "Unknown"},
	{0x9030, 4, UInt, "Unknown"},
	{0x9034, 4, UInt, "Unknown"},
	{0x9038, 4, UInt, "Unknown"},
	{0x903C, 4, UInt, "Unknown"},
	{0x9040, 4, UInt, "Unknown"},
	{0x9044, 4, UInt, "Time @   10-20A (s)"},
	{0x9048, 4, UInt, "Time @   20-30A (s)"},
	{0x904C, 4, UInt, "Time @   30-40A (s)"},
	{0x9050, 4, UInt, "Time @   40-50A (s)"},
	{0x9054, 4, UInt, "Time @   50-60A (s)"},
	{0x9058, 4, UInt, "Time @   60-70A (s)"},
	{0x905C, 4, UInt, "Time @   70-80A (s)"},
	{0x9060, 4, UInt, "Time @   80-90A (s)"},
	{0x9064, 4, UInt, "Time @  90-100A (s)"},
	{0x9068, 4, UInt, "Time @ 100-110A (s)"},
	{0x906C, 4, UInt, "Time @ 110-120A (s)"},
	{0x9070, 4, UInt, "Time @ 120-130A (s)"},
	{0x9074, 4, UInt, "Time @ 130-140A (s)"},
	{0x9078, 4, UInt, "Time @ 140-150A (s)"},
	{0x907C, 4, UInt, "Time @ 150-160A (s)"},
	{0x9080, 4, UInt, "Time @ 160-170A (s)"},
	{0x9084, 4, UInt, "Time @ 170-180A (s)"},
	{0x9088, 4, UInt, "Time @ 180-190A (s)"},
	{0x908C, 4, UInt, "Time @ 190-200A (s)"},
	{0x9090, 4, UInt, "Time @    > 200A (s)"},
	{0x9094, 2, UInt, "Unknown"},
	{0x9096, 2, UInt, "Unknown"},
	{0x9098, 2, UInt, "Unknown"},
	{0x909A, 2, UInt, "Unknown"},
	{0x909C, 2, UInt, "Unknown"},
	{0x909E, 2, UInt, "Unknown"},
	{0x90A0, 2, UInt, "Redlink (UART) charge count"},
	{0x90A2, 2, UInt, "Dumb charge count (no UART)"},
	{0x90A4, 2, UInt, "Total charge count"},
	{0x90A6, 2, UInt, "Low-voltage charges (any cell <2.5V)"},
	{0x90A8, 4, Duration, "Total charge time"},
	{0x90AC, 4, Duration, "Time idling on charger"},
	{0x90B0, 4, UInt, "Unknown"},
	{0x90B4, 2, UInt, "Unknown"},
	{0x90B6, 2, UInt, "Unknown"},
	{0x90B8, 4, Date, "Unknown date"},
	{0x90BC, 4, UInt, "Unknown"},
	{0x90C0, 4, UInt, "Unknown"},
	{0x90C4, 4, UInt, "Unknown"},
	{0x90C8, 4, UInt, "Unknown"},
	{0x90CC, 4, UInt, "Unknown"},
	{0x90D0, 4, UInt, "Unknown"},
	{0x90D4, 4, UInt, "Unknown"},
	{0x90D8, 4, UInt, "Unknown"},
	{0x90DC, 4, UInt, "Unknown"},
	{0x90E0, 4, UInt, "Unknown"},
	{0x90E4, 4, UInt, "Unknown"},
	{0x90E8, 4, UInt, "Unknown"},
	{0x90EC, 4, UInt, "Unknown"},
	{0x90F0, 4, UInt, "Unknown"},
	{0x90F4, 1, UInt, "Unknown"},

	// 0xA000 block.
	{0xA000, 2, UInt, "Unknown"},
	{0xA002, 2, UInt, "Unknown"},
	{0xA004, 2, UInt, "Unknown"},
}
