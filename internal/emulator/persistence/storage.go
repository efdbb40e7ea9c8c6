// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package persistence keeps an emulated pack's register image across runs.
package persistence

import (
	"fmt"

	"github.com/ffutop/m18link/internal/emulator/model"
)

// Storage defines the interface for persisting the register image.
type Storage interface {
	// Load returns the stored image. fresh is true when nothing was stored
	// yet and the caller should seed the image.
	Load() (img *model.Image, fresh bool, err error)

	// Save saves the current image to storage.
	Save(img *model.Image) error

	// OnWrite is a hook called whenever the pack modifies its image.
	OnWrite(address uint16, length int)

	// Close releases the backing file, if any.
	Close() error
}

// New returns the storage backend named by kind: "memory", "file" or
// "mmap". path is ignored for memory.
func New(kind, path string) (Storage, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "file":
		return NewFileStorage(path), nil
	case "mmap":
		return NewMmapStorage(path), nil
	default:
		return nil, fmt.Errorf("unknown persistence type %q", kind)
	}
}
