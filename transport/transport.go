// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrClosed is returned for any operation on a port that is not open.
	ErrClosed = errors.New("transport: port closed")
	// ErrTimeout means no byte arrived before the read timeout.
	ErrTimeout = errors.New("transport: read timed out")
)

// ShortReadError means some, but not all, requested bytes arrived.
type ShortReadError struct {
	Want int
	Got  int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("transport: short read, got %d of %d bytes", e.Got, e.Want)
}

// ShortWriteError means the port accepted fewer bytes than requested.
type ShortWriteError struct {
	Want int
	Got  int
}

func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("transport: short write, wrote %d of %d bytes", e.Got, e.Want)
}

// Port is the byte-level link to a pack. Bytes pass through unmodified;
// bit reversal is the caller's concern.
//
// Control line A is the BREAK condition on TX, control line B is DTR.
// Asserting both holds the pack in Idle, clearing both signals a charger.
type Port interface {
	SetControlLineA(on bool) error
	SetControlLineB(on bool) error

	// PurgeReceive discards buffered input.
	PurgeReceive() error
	// PurgeAll discards buffered input and pending output.
	PurgeAll() error

	// WriteExact writes all of p or fails with a ShortWriteError.
	WriteExact(p []byte) error
	// ReadExact reads exactly n bytes. It fails with ErrTimeout when
	// nothing arrives and with a ShortReadError when only part does.
	ReadExact(n int, timeout time.Duration) ([]byte, error)

	Close() error
}
