// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package registers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrLength is returned when a payload has the wrong size for its type.
var ErrLength = errors.New("registers: payload length does not fit type")

// ADC to temperature calibration. Two thermistor points define a linear
// resistance model over the ADC reading.
const (
	adcR1   = 10000.0
	adcR2   = 20000.0
	adcT1   = 50.0
	adcT2   = 35.0
	adcLow  = 0x0180
	adcHigh = 0x022E
)

// Serial is the packed battery type and electronic serial number.
type Serial struct {
	Type   uint16
	Number uint32
}

func (s Serial) String() string {
	return fmt.Sprintf("Type: %d, Serial: %d", s.Type, s.Number)
}

// Value is a decoded register. Exactly one field matching Type is set.
type Value struct {
	Type    Type
	Uint    uint64
	Time    time.Time
	Text    string
	Serial  Serial
	Celsius float64
	Cells   []uint16
}

// String renders the value the way the dump output prints it.
func (v Value) String() string {
	switch v.Type {
	case UInt:
		return strconv.FormatUint(v.Uint, 10)
	case Date:
		return v.Time.Format("2006-01-02 15:04:05")
	case Duration, Ascii:
		return v.Text
	case SerialNumber:
		return v.Serial.String()
	case AdcTemperature, DecimalTemperature:
		return strconv.FormatFloat(v.Celsius, 'f', 2, 64)
	case CellVoltages:
		parts := make([]string, len(v.Cells))
		for i, c := range v.Cells {
			parts[i] = strconv.Itoa(int(c))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

// Decode interprets b according to t.
func Decode(b []byte, t Type) (Value, error) {
	v := Value{Type: t}
	switch t {
	case UInt:
		if len(b) == 0 || len(b) > 8 {
			return Value{}, fmt.Errorf("%w: %s of %d bytes", ErrLength, t, len(b))
		}
		v.Uint = beUint(b)
	case Date:
		if len(b) != 4 {
			return Value{}, fmt.Errorf("%w: %s of %d bytes", ErrLength, t, len(b))
		}
		v.Time = time.Unix(int64(binary.BigEndian.Uint32(b)), 0).UTC()
	case Duration:
		if len(b) != 4 {
			return Value{}, fmt.Errorf("%w: %s of %d bytes", ErrLength, t, len(b))
		}
		v.Text = FormatSeconds(binary.BigEndian.Uint32(b))
	case Ascii:
		v.Text = string(b)
	case SerialNumber:
		if len(b) != 5 {
			return Value{}, fmt.Errorf("%w: %s of %d bytes", ErrLength, t, len(b))
		}
		v.Serial = Serial{
			Type:   binary.BigEndian.Uint16(b[0:2]),
			Number: uint32(beUint(b[2:5])),
		}
	case AdcTemperature:
		if len(b) != 2 {
			return Value{}, fmt.Errorf("%w: %s of %d bytes", ErrLength, t, len(b))
		}
		v.Celsius = AdcToCelsius(binary.BigEndian.Uint16(b))
	case DecimalTemperature:
		if len(b) != 2 {
			return Value{}, fmt.Errorf("%w: %s of %d bytes", ErrLength, t, len(b))
		}
		v.Celsius = round2(float64(b[0]) + float64(b[1])/256)
	case CellVoltages:
		if len(b) == 0 || len(b)%2 != 0 {
			return Value{}, fmt.Errorf("%w: %s of %d bytes", ErrLength, t, len(b))
		}
		v.Cells = make([]uint16, len(b)/2)
		for i := range v.Cells {
			v.Cells[i] = binary.BigEndian.Uint16(b[2*i:])
		}
	default:
		return Value{}, fmt.Errorf("registers: unknown type %s", t)
	}
	return v, nil
}

// AdcToCelsius converts a thermistor ADC reading to degrees Celsius,
// rounded to two decimals.
func AdcToCelsius(adc uint16) float64 {
	r := adcR1 + (float64(adc)-adcLow)*(adcR2-adcR1)/(adcHigh-adcLow)
	m := (adcT2 - adcT1) / (adcR2 - adcR1)
	b := adcT1 - m*adcR1
	return round2(m*r + b)
}

// FormatSeconds renders s as H:MM:SS. Hours are not wrapped at 24.
func FormatSeconds(s uint32) string {
	return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
}

func beUint(b []byte) uint64 {
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return n
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
