// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package emulator

import (
	"log/slog"
	"time"

	"github.com/ffutop/m18link/internal/config"
	"github.com/ffutop/m18link/internal/emulator/persistence"
)

// Open builds a Device from cfg, loading the register image from its
// storage and seeding it when the storage is fresh. A storage that fails
// to load falls back to memory.
func Open(cfg config.EmulatorConfig, now time.Time) (*Device, persistence.Storage) {
	storage, err := persistence.New(cfg.Persistence.Type, cfg.Persistence.Path)
	if err != nil {
		slog.Error("Invalid emulator persistence, using memory", "err", err)
		storage = persistence.NewMemoryStorage()
	}
	slog.Info("Initializing pack emulator", "persistence", cfg.Persistence.Type, "path", cfg.Persistence.Path)

	img, fresh, err := storage.Load()
	if err != nil {
		slog.Error("Failed to load emulator image", "err", err)
		slog.Warn("Falling back to MemoryStorage")
		storage = persistence.NewMemoryStorage()
		img, fresh, _ = storage.Load()
	}

	if fresh {
		if err := Seed(img, now); err != nil {
			slog.Error("Failed to seed emulator image", "err", err)
		}
		if err := storage.Save(img); err != nil {
			slog.Error("Failed to save seeded image", "err", err)
		}
	}

	dev := NewDevice(img,
		WithStorage(storage),
		WithLineReset(cfg.RequireLineReset),
	)
	return dev, storage
}
