// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

// Wire framing of the pack UART.
const (
	BaudRate = 4800
	DataBits = 8
	StopBits = 2
)

// Handshake and response markers, logical (pre-reversal) values.
const (
	Sync = 0xAA
	Ack  = 0x81
	Nack = 0x82
)

// Command bytes.
const (
	CmdRead      = 0x01
	CmdConfigure = 0x60
	CmdSnapshot  = 0x61
	CmdKeepalive = 0x62
	CmdCalibrate = 0x55
)

// Sub-codes following CmdRead.
const (
	SubRead  = 0x04
	SubWrite = 0x05
	subFixed = 0x03
)

// Access counter values, in rotation order.
const (
	AccInitial = 0x04
	accSecond  = 0x0C
	accThird   = 0x1C
)

// Response lengths of the session commands.
const (
	ConfigureResponseLength = 5
	SnapshotResponseLength  = 8
	KeepaliveResponseLength = 9
	CalibrateResponseLength = 8
	WriteResponseLength     = 6
)

// ResponseOverhead is the number of non-payload bytes in a read response:
// ack, two echoed header bytes and the two checksum bytes.
const ResponseOverhead = 5

// PayloadOffset is where register data starts inside a read response.
const PayloadOffset = 3

// Message register block written by WriteMessage.
const (
	MessageAddress = 0x0023
	MessageLength  = 20
	MessageFiller  = '-'
)

// configureLength is the trailing constant byte of a configure frame.
const configureLength = 0x0D

// NextAcc returns the access counter that follows acc.
func NextAcc(acc byte) byte {
	switch acc {
	case AccInitial:
		return accSecond
	case accSecond:
		return accThird
	default:
		return AccInitial
	}
}
