// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import (
	"fmt"
	"sync"
)

const (
	MaxAddress = 65535
	// Size is the byte length of a full register image.
	Size = MaxAddress + 1
)

// Image is the byte-addressed register space of an emulated pack.
// It covers the full 16-bit address space.
type Image struct {
	mu sync.RWMutex

	// Bytes may alias storage owned by a persistence backend.
	Bytes []byte
}

// NewImage creates a zeroed image.
func NewImage() *Image {
	return &Image{Bytes: make([]byte, Size)}
}

// FromBytes wraps data, which must be Size bytes long, without copying.
func FromBytes(data []byte) (*Image, error) {
	if len(data) != Size {
		return nil, fmt.Errorf("image must be %d bytes, got %d", Size, len(data))
	}
	return &Image{Bytes: data}, nil
}

// Read returns a copy of length bytes at address.
func (m *Image) Read(address uint16, length int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := validateRange(address, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, m.Bytes[int(address):])
	return out, nil
}

// Write stores data at address.
func (m *Image) Write(address uint16, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateRange(address, len(data)); err != nil {
		return err
	}
	copy(m.Bytes[int(address):], data)
	return nil
}

// SetByte stores one byte.
func (m *Image) SetByte(address uint16, value byte) error {
	return m.Write(address, []byte{value})
}

func validateRange(address uint16, length int) error {
	if length <= 0 {
		return fmt.Errorf("length must be greater than 0")
	}
	if int(address)+length > Size {
		return fmt.Errorf("address range 0x%04X+%d out of bounds", address, length)
	}
	return nil
}
