// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package registers

import "fmt"

// Type tells Decode how to interpret a register's bytes.
type Type uint8

const (
	UInt Type = iota + 1
	Date
	Duration
	Ascii
	SerialNumber
	AdcTemperature
	DecimalTemperature
	CellVoltages
)

func (t Type) String() string {
	switch t {
	case UInt:
		return "uint"
	case Date:
		return "date"
	case Duration:
		return "duration"
	case Ascii:
		return "ascii"
	case SerialNumber:
		return "sn"
	case AdcTemperature:
		return "adc_t"
	case DecimalTemperature:
		return "dec_t"
	case CellVoltages:
		return "cell_v"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Descriptor describes one readable register block.
type Descriptor struct {
	Address uint16
	Length  uint8
	Type    Type
	Label   string
}

// High returns the high address byte.
func (d Descriptor) High() byte { return byte(d.Address >> 8) }

// Low returns the low address byte.
func (d Descriptor) Low() byte { return byte(d.Address) }

// End returns the last address covered by the register.
func (d Descriptor) End() uint16 { return d.Address + uint16(d.Length) - 1 }
