// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse means the first response byte never arrived.
	ErrEmptyResponse = errors.New("m18: empty response")
	// ErrShortResponse means the pack stopped sending mid-frame.
	ErrShortResponse = errors.New("m18: short response")
	// ErrNoHandshake means every reset attempt failed.
	ErrNoHandshake = errors.New("m18: reset handshake failed")
)

// NackError reports a command the pack refused with a 0x82 frame.
type NackError struct {
	Command byte
}

func (e *NackError) Error() string {
	return fmt.Sprintf("m18: command 0x%02X not acknowledged", e.Command)
}

// IsNack reports whether err is a NackError.
func IsNack(err error) bool {
	var nack *NackError
	return errors.As(err, &nack)
}
