// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import "fmt"

// Response is a received frame in logical (already reversed) byte order.
type Response []byte

// IsAck reports whether the frame starts with the ack marker.
func (r Response) IsAck() bool {
	return len(r) > 0 && r[0] == Ack
}

// IsNack reports whether the frame is the one-byte error frame.
func (r Response) IsNack() bool {
	return len(r) > 0 && r[0] == Nack
}

// Payload returns the register data of an acked read of length bytes.
func (r Response) Payload(length int) ([]byte, error) {
	if !r.IsAck() {
		return nil, fmt.Errorf("response is not an ack")
	}
	if len(r) < PayloadOffset+length {
		return nil, fmt.Errorf("response of %d bytes holds no %d byte payload", len(r), length)
	}
	return r[PayloadOffset : PayloadOffset+length], nil
}

// IsNackFirstByte reports whether a raw wire byte, before reversal, opens
// a one-byte error frame.
func IsNackFirstByte(wire byte) bool {
	return ReverseBits(wire) == Nack
}

// ReadResponseLength is the frame length of an acked read of length bytes.
func ReadResponseLength(length int) int {
	return length + ResponseOverhead
}

// BuildReadResponse frames payload the way the pack answers a read.
// Used by the emulator.
func BuildReadResponse(sub byte, payload []byte) []byte {
	frame := make([]byte, 0, len(payload)+ResponseOverhead)
	frame = append(frame, Ack, sub, subFixed)
	frame = append(frame, payload...)
	return AddChecksum(frame)
}

// BuildSessionResponse frames a session command reply: ack, command, acc,
// filler data, checksum, padded to total bytes.
func BuildSessionResponse(cmd, acc byte, total int) []byte {
	frame := make([]byte, total-2)
	frame[0] = Ack
	if total > 3 {
		frame[1] = cmd
	}
	if total > 4 {
		frame[2] = acc
	}
	return AddChecksum(frame)
}
