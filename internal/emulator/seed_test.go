// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package emulator

import (
	"testing"
	"time"

	"github.com/ffutop/m18link/internal/config"
	"github.com/ffutop/m18link/internal/emulator/model"
	"github.com/ffutop/m18link/registers"
)

func TestSeed_DecodesEveryHealthRegister(t *testing.T) {
	img := model.NewImage()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := Seed(img, now); err != nil {
		t.Fatal(err)
	}

	for _, idx := range registers.HealthIndices() {
		d, ok := registers.Lookup(idx)
		if !ok {
			t.Fatalf("health index %d outside catalog", idx)
		}
		raw, err := img.Read(d.Address, int(d.Length))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := registers.Decode(raw, d.Type); err != nil {
			t.Errorf("0x%04X %s: %v", d.Address, d.Label, err)
		}
	}

	raw, _ := img.Read(0x0004, 5)
	v, _ := registers.Decode(raw, registers.SerialNumber)
	if v.Serial.Type != SeedBatteryType || v.Serial.Number != SeedSerial {
		t.Errorf("serial = %v", v.Serial)
	}

	raw, _ = img.Read(0x9004, 4)
	v, _ = registers.Decode(raw, registers.Date)
	if got := now.Sub(v.Time); got != 3*24*time.Hour {
		t.Errorf("last tool use %s ago", got)
	}
}

func TestOpen_SeedsMemory(t *testing.T) {
	dev, storage := Open(config.EmulatorConfig{}, time.Now())
	defer storage.Close()
	if dev.Image().Bytes[0x0005] != SeedBatteryType {
		t.Errorf("type byte = %d", dev.Image().Bytes[0x0005])
	}
}

func TestOpen_BadPersistenceFallsBack(t *testing.T) {
	cfg := config.EmulatorConfig{
		Persistence: config.PersistenceConfig{Type: "file", Path: t.TempDir()},
	}
	dev, storage := Open(cfg, time.Now())
	defer storage.Close()
	if dev.Image().Bytes[0x0005] != SeedBatteryType {
		t.Error("fallback image not seeded")
	}
}
