// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/grid-x/serial"

	"github.com/ffutop/m18link/internal/config"
	"github.com/ffutop/m18link/protocol"
)

// Server exposes a Device on a serial port so another host can talk to it
// as if it were a real pack.
type Server struct {
	Config config.SerialConfig
	Device *Device
}

// NewServer creates a new emulator server.
func NewServer(cfg config.SerialConfig, dev *Device) *Server {
	return &Server{
		Config: cfg,
		Device: dev,
	}
}

// Start opens the port and serves requests until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	spConfig := &serial.Config{
		Address:  s.Config.Device,
		BaudRate: s.Config.BaudRate,
		DataBits: s.Config.DataBits,
		StopBits: s.Config.StopBits,
		Parity:   s.Config.Parity,
		Timeout:  s.Config.Timeout,
	}

	port, err := serial.Open(spConfig)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.Config.Device, err)
	}
	defer port.Close()
	slog.Info("Pack emulator listening", "device", s.Config.Device)

	go func() {
		<-ctx.Done()
		port.Close()
	}()

	return s.scanLoop(ctx, port)
}

// scanLoop reads one request at a time and writes the device's answer.
// The host line reset cannot be sensed through the port; a BREAK arrives
// as a NUL byte and arms the next handshake instead.
func (s *Server) scanLoop(ctx context.Context, port io.ReadWriter) error {
	buf := make([]byte, 16)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := port.Read(buf[:1])
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			continue
		}
		if n == 0 {
			continue
		}

		first := protocol.ReverseBits(buf[0])
		if first == 0x00 {
			s.Device.Break()
			continue
		}

		expectedLen, err := protocol.RequestLength([]byte{first})
		if err != nil {
			slog.Debug("Discarding byte", "byte", fmt.Sprintf("%02X", first), "err", err)
			continue
		}

		current := 1
		for current < expectedLen {
			n, err := port.Read(buf[current:expectedLen])
			if err != nil || n == 0 {
				break
			}
			current += n
		}
		if current != expectedLen {
			slog.Debug("Incomplete request", "got", current, "want", expectedLen)
			continue
		}

		frame := protocol.Reverse(buf[:expectedLen])
		resp := s.Device.Handle(frame)
		if resp == nil {
			continue
		}
		if _, err := port.Write(protocol.Reverse(resp)); err != nil {
			slog.Error("Failed to write response", "err", err)
		}
	}
}
