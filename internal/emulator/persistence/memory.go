// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import "github.com/ffutop/m18link/internal/emulator/model"

// MemoryStorage is a no-op storage (non-persistent).
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load() (*model.Image, bool, error) {
	return model.NewImage(), true, nil
}

func (ms *MemoryStorage) Save(img *model.Image) error {
	return nil
}

func (ms *MemoryStorage) OnWrite(address uint16, length int) {
	// No-op
}

func (ms *MemoryStorage) Close() error {
	return nil
}
