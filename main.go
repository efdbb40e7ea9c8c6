// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ffutop/m18link/internal/config"
	"github.com/ffutop/m18link/internal/engine"
	"github.com/ffutop/m18link/internal/metrics"
	"github.com/ffutop/m18link/transport"
	"github.com/ffutop/m18link/transport/local"
	"github.com/ffutop/m18link/transport/uart"
)

const usage = `Usage: m18link [flags] <command> [args]

Commands:
  idle                 hold the pack in the safe idle state
  active               signal charger presence
  reset                run the wake-up handshake
  health               print the health report
  dump                 read and decode catalog registers
  read-all             read the refresh matrix
  scan                 probe a register address range
  write-message TEXT   store a 20 character message in the pack
  calibrate            send the calibration command
  simulate             act as a charger for a while
  emulate              serve a virtual pack on a serial port

Flags:
`

func main() {
	fs := pflag.NewFlagSet("m18link", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	config.BindFlags(fs)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(fs)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	err = run(ctx, cfg, m, fs.Arg(0), fs.Args()[1:])
	if cfg.Metrics.Textfile != "" {
		if werr := m.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			slog.Error("Failed to write metrics", "path", cfg.Metrics.Textfile, "err", werr)
		}
	}
	if err != nil {
		slog.Error("Command failed", "command", fs.Arg(0), "err", err)
		stop()
		os.Exit(1)
	}
}

// openPort opens the configured device, or the built-in emulator for
// "local".
func openPort(cfg *config.Config) (transport.Port, error) {
	switch cfg.Serial.Device {
	case "":
		return nil, fmt.Errorf("no serial port configured (use --port)")
	case "local":
		slog.Info("Using built-in pack emulator")
		return local.Open(cfg.Emulator), nil
	default:
		return uart.Open(cfg.Serial)
	}
}

func newEngine(cfg *config.Config, port transport.Port, m *metrics.Metrics) *engine.Engine {
	ec := engine.DefaultConfig()
	ec.ReadTimeout = cfg.Serial.Timeout
	ec.ResetAttempts = cfg.Protocol.ResetAttempts
	ec.ResetHold = cfg.Protocol.ResetHold
	ec.ResetBackoff = cfg.Protocol.ResetBackoff
	ec.ResetSettle = cfg.Protocol.ResetSettle
	ec.RefreshPause = cfg.Protocol.RefreshPause
	ec.KeepaliveInterval = engine.KeepaliveInterval(cfg.Simulation.Baud)

	return engine.New(port,
		engine.WithConfig(ec),
		engine.WithLogger(slog.Default()),
		engine.WithMetrics(m),
		engine.WithTxRx(cfg.Protocol.LogTx, cfg.Protocol.LogRx),
	)
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file, falling back to stderr: %v\n", err)
			handler = slog.NewTextHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
