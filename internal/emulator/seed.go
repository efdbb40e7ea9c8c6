// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package emulator

import (
	"encoding/binary"
	"time"

	"github.com/ffutop/m18link/internal/emulator/model"
	"github.com/ffutop/m18link/protocol"
)

// Seed battery identity.
const (
	SeedBatteryType = 108
	SeedSerial      = 1234567
)

// Seed fills img with a plausible, lightly used 12Ah pack. Dates are placed
// relative to now.
func Seed(img *model.Image, now time.Time) error {
	day := 24 * time.Hour
	u32 := func(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
	u16 := func(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
	date := func(t time.Time) []byte { return u32(uint32(t.Unix())) }

	serial := u16(SeedBatteryType)
	serial = append(serial, byte(SeedSerial>>16&0xFF), byte(SeedSerial>>8&0xFF), byte(SeedSerial&0xFF))

	message := make([]byte, protocol.MessageLength)
	for i := range message {
		message[i] = protocol.MessageFiller
	}

	writes := []struct {
		address uint16
		data    []byte
	}{
		{0x0004, serial},
		{0x0011, date(now.Add(-900 * day))},
		{protocol.MessageAddress, message},

		{0x400A, []byte{0x0F, 0xE6, 0x0F, 0xE8, 0x0F, 0xE4, 0x0F, 0xE7, 0x0F, 0xE9}},
		{0x4014, u16(0x01C4)},
		{0x6006, []byte{23, 0x80}},

		{0x9000, date(now.Add(-880 * day))},
		{0x9004, date(now.Add(-3 * day))},
		{0x9008, date(now.Add(-5 * day))},
		{0x9014, u32(3600 * 1530)},
		{0x901C, u16(4)},
		{0x901E, u16(1)},
		{0x9020, u16(2)},
		{0x9022, u16(5)},
		{0x9024, u16(1)},

		{0x90A0, u16(120)},
		{0x90A2, u16(14)},
		{0x90A4, u16(134)},
		{0x90A6, u16(0)},
		{0x90A8, u32(210*3600 + 11*60 + 5)},
		{0x90AC, u32(1210*3600 + 3)},
	}
	for _, w := range writes {
		if err := img.Write(w.address, w.data); err != nil {
			return err
		}
	}

	// Discharge histogram, seconds per 10 A bin, falling off with current.
	histogram := []uint32{
		52000, 31000, 18000, 9200, 4800, 2600, 1400, 760, 410, 220,
		120, 64, 33, 17, 9, 5, 3, 2, 1, 1,
	}
	for i, s := range histogram {
		if err := img.Write(0x9044+uint16(4*i), u32(s)); err != nil {
			return err
		}
	}
	return nil
}
