// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import (
	"encoding/binary"
	"math/bits"

	"github.com/ffutop/m18link/protocol/checksum"
)

// ReverseBits mirrors the eight bits of b. The pack's UART is wired LSB/MSB
// swapped relative to the host, so every byte on the wire is reversed.
func ReverseBits(b byte) byte {
	return bits.Reverse8(b)
}

// Reverse returns a copy of p with every byte bit-reversed.
func Reverse(p []byte) []byte {
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = bits.Reverse8(b)
	}
	return out
}

// Checksum sums p modulo 65536.
func Checksum(p []byte) uint16 {
	return checksum.Of(p)
}

// AddChecksum returns p followed by its checksum, high byte first.
func AddChecksum(p []byte) []byte {
	out := make([]byte, len(p), len(p)+2)
	copy(out, p)
	return binary.BigEndian.AppendUint16(out, Checksum(p))
}

// ValidChecksum reports whether the last two bytes of frame are the
// checksum of the bytes before them.
func ValidChecksum(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	n := len(frame) - 2
	return binary.BigEndian.Uint16(frame[n:]) == Checksum(frame[:n])
}

// ReadRequest builds an unchecksummed register read.
func ReadRequest(cmd, addrHigh, addrLow, length byte) []byte {
	return []byte{cmd, SubRead, subFixed, addrHigh, addrLow, length}
}

// WriteRequest builds an unchecksummed single-byte register write.
func WriteRequest(addrHigh, addrLow, value byte) []byte {
	return []byte{CmdRead, SubWrite, subFixed, addrHigh, addrLow, value}
}

// ConfigureRequest builds the charger configuration frame.
func ConfigureRequest(acc byte, cutoffCurrent, maxCurrent uint16, state byte) []byte {
	p := []byte{CmdConfigure, acc, 0x08}
	p = binary.BigEndian.AppendUint16(p, cutoffCurrent)
	p = binary.BigEndian.AppendUint16(p, maxCurrent)
	return append(p, state, configureLength)
}

// SessionRequest builds the three-byte snapshot, keepalive and calibrate frames.
func SessionRequest(cmd, acc byte) []byte {
	return []byte{cmd, acc, 0x00}
}

// SplitAddress returns the high and low bytes of a register address.
func SplitAddress(addr uint16) (byte, byte) {
	return byte(addr >> 8), byte(addr)
}
