// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/ffutop/m18link/internal/config"
	"github.com/ffutop/m18link/internal/emulator"
	"github.com/ffutop/m18link/internal/engine"
	"github.com/ffutop/m18link/internal/metrics"
	"github.com/ffutop/m18link/protocol"
)

var stdout io.Writer = os.Stdout

// run executes one command. Every command except emulate drives a pack
// through an engine that is closed, and so left in Idle, on return.
func run(ctx context.Context, cfg *config.Config, m *metrics.Metrics, name string, args []string) error {
	if name == "emulate" {
		return runEmulate(ctx, cfg)
	}

	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if cmd.flags != nil {
		cmd.flags(fs, cfg)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	port, err := openPort(cfg)
	if err != nil {
		return err
	}
	e := newEngine(cfg, port, m)
	defer func() {
		if err := e.Close(); err != nil {
			slog.Warn("Failed to close port", "err", err)
		}
	}()
	return cmd.run(ctx, e, fs)
}

type command struct {
	flags func(fs *pflag.FlagSet, cfg *config.Config)
	run   func(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error
}

var commands = map[string]command{
	"idle": {run: func(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
		e.Idle()
		return nil
	}},
	"active": {run: func(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
		e.Active()
		slog.Info("Holding lines active until interrupted")
		// Close drops the lines back to Idle.
		<-ctx.Done()
		return nil
	}},
	"reset": {run: func(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
		if !e.Reset() {
			return protocol.ErrNoHandshake
		}
		fmt.Fprintln(stdout, "Reset OK")
		return nil
	}},
	"health": {run: func(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
		fmt.Fprint(stdout, e.HealthReport(ctx))
		return nil
	}},
	"dump": {flags: dumpFlags, run: runDump},
	"read-all": {run: func(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
		return e.ReadAll(ctx)
	}},
	"scan":          {flags: scanFlags, run: runScan},
	"write-message": {run: runWriteMessage},
	"calibrate": {run: func(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
		defer e.Idle()
		if !e.Reset() {
			return protocol.ErrNoHandshake
		}
		resp, err := e.Calibrate()
		if err != nil {
			return err
		}
		if !resp.IsAck() {
			return &protocol.NackError{Command: protocol.CmdCalibrate}
		}
		fmt.Fprintln(stdout, "Calibrate OK")
		return nil
	}},
	"simulate": {flags: simulateFlags, run: runSimulate},
}

func dumpFlags(fs *pflag.FlagSet, _ *config.Config) {
	fs.String("ids", "", "Catalog indices to read, e.g. 1,2,5-10 (default all).")
	fs.Bool("refresh", false, "Read the refresh matrix first.")
	fs.String("format", engine.FormatLabel, "Output format: label, raw or yaml.")
}

func runDump(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
	ids, _ := fs.GetString("ids")
	refresh, _ := fs.GetBool("refresh")
	format, _ := fs.GetString("format")

	indices, err := engine.ParseIndices(ids)
	if err != nil {
		return err
	}
	readings, err := e.ReadIDs(ctx, indices, refresh)
	if err != nil {
		return err
	}
	return engine.WriteReadings(stdout, readings, format)
}

func scanFlags(fs *pflag.FlagSet, _ *config.Config) {
	fs.Uint16("from", 0x0000, "First address.")
	fs.Uint16("to", 0x00FF, "Last address.")
	fs.Uint8("len", 1, "Bytes per read.")
}

func runScan(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
	from, _ := fs.GetUint16("from")
	to, _ := fs.GetUint16("to")
	length, _ := fs.GetUint8("len")

	found := 0
	err := e.Scan(ctx, from, to, length, func(addr uint16, payload []byte) {
		found++
		fmt.Fprintf(stdout, "0x%04X: % X\n", addr, payload)
	})
	slog.Info("Scan finished", "from", from, "to", to, "acked", found)
	return err
}

func runWriteMessage(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
	if fs.NArg() == 0 {
		return fmt.Errorf("write-message needs the message text")
	}
	return e.WriteMessage(ctx, strings.Join(fs.Args(), " "))
}

func simulateFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.Duration("duration", cfg.Simulation.Duration, "How long to act as a charger.")
	fs.String("profile", cfg.Simulation.Profile, "Current profile: gentle, normal, aggressive or custom.")
	fs.Int("cutoff", cfg.Simulation.CutoffCurrent, "Custom cutoff current (raw, about 1 mA).")
	fs.Int("max", cfg.Simulation.MaxCurrent, "Custom max current (raw, about 1 mA).")
	fs.Int("baud", cfg.Simulation.Baud, "Simulated charger baud rate, selects the keepalive interval.")
}

func runSimulate(ctx context.Context, e *engine.Engine, fs *pflag.FlagSet) error {
	duration, _ := fs.GetDuration("duration")
	name, _ := fs.GetString("profile")
	cutoff, _ := fs.GetInt("cutoff")
	limit, _ := fs.GetInt("max")
	baud, _ := fs.GetInt("baud")

	profile, err := selectProfile(name, cutoff, limit)
	if err != nil {
		return err
	}

	interval := engine.KeepaliveInterval(baud)
	slog.Info("Simulating charger",
		"profile", profile.Name,
		"cutoff", profile.CutoffCurrent,
		"max", profile.MaxCurrent,
		"duration", duration,
		"keepalive", interval)

	e.SetKeepaliveInterval(interval)
	return e.SimulateFor(ctx, duration, profile.CutoffCurrent, profile.MaxCurrent)
}

func selectProfile(name string, cutoff, limit int) (engine.Profile, error) {
	if strings.EqualFold(name, "custom") {
		return engine.CustomProfile(cutoff, limit)
	}
	return engine.LookupProfile(name)
}

func runEmulate(ctx context.Context, cfg *config.Config) error {
	if cfg.Emulator.Device == "" {
		return fmt.Errorf("emulator.device is not configured")
	}
	dev, storage := emulator.Open(cfg.Emulator, time.Now())
	defer storage.Close()

	serialCfg := cfg.Serial
	serialCfg.Device = cfg.Emulator.Device
	if serialCfg.Timeout > 500*time.Millisecond {
		// short reads keep the loop responsive to cancellation
		serialCfg.Timeout = 500 * time.Millisecond
	}
	return emulator.NewServer(serialCfg, dev).Start(ctx)
}
