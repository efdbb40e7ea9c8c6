// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package emulator is a virtual battery pack. It answers the host command
// set from a register image so the engine can run without hardware.
package emulator

import (
	"encoding/binary"
	"log/slog"
	"sync"

	"github.com/ffutop/m18link/internal/emulator/model"
	"github.com/ffutop/m18link/internal/emulator/persistence"
	"github.com/ffutop/m18link/protocol"
)

// Session is the charger state last negotiated with the pack.
type Session struct {
	CutoffCurrent uint16
	MaxCurrent    uint16
	State         byte
	Snapshots     int
	Keepalives    int
	Calibrations  int
}

// Device implements the pack side of the protocol on top of an Image.
// Frames are in logical byte order; callers do the bit reversal.
type Device struct {
	mu sync.Mutex

	image   *model.Image
	storage persistence.Storage
	log     *slog.Logger

	// requireLineReset withholds the SYNC echo until the lines have been
	// asserted and cleared since the previous handshake.
	requireLineReset bool
	asserted         bool
	armed            bool

	acc     byte
	session Session
}

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithStorage reports writes to s.
func WithStorage(s persistence.Storage) DeviceOption {
	return func(d *Device) { d.storage = s }
}

// WithLineReset makes the SYNC echo depend on a preceding line reset.
func WithLineReset(required bool) DeviceOption {
	return func(d *Device) { d.requireLineReset = required }
}

// WithLogger sets the device logger.
func WithLogger(l *slog.Logger) DeviceOption {
	return func(d *Device) { d.log = l }
}

// NewDevice creates a pack backed by img.
func NewDevice(img *model.Image, opts ...DeviceOption) *Device {
	d := &Device{
		image:   img,
		storage: persistence.NewMemoryStorage(),
		log:     slog.Default(),
		acc:     protocol.AccInitial,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Image returns the backing register image.
func (d *Device) Image() *model.Image { return d.image }

// Session returns a copy of the charger session state.
func (d *Device) Session() Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// SetLines reports the host's control lines. Both asserted followed by both
// cleared arms the next SYNC.
func (d *Device) SetLines(a, b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case a && b:
		d.asserted = true
	case !a && !b && d.asserted:
		d.asserted = false
		d.armed = true
	}
}

// Break arms the next SYNC directly. Used when the host's line reset is
// only visible as a BREAK on the data line.
func (d *Device) Break() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.armed = true
}

// Handle answers one complete request frame. A nil response means the pack
// stays silent.
func (d *Device) Handle(frame []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(frame) == 1 && frame[0] == protocol.Sync {
		return d.handleSync()
	}
	if len(frame) < 3 || !protocol.ValidChecksum(frame) {
		d.log.Debug("Rejecting frame", "frame", frame)
		return nack()
	}

	switch frame[0] {
	case protocol.CmdRead:
		return d.handleRegister(frame)
	case protocol.CmdConfigure:
		return d.handleConfigure(frame)
	case protocol.CmdSnapshot:
		return d.handleSession(frame, protocol.SnapshotResponseLength, true, &d.session.Snapshots)
	case protocol.CmdKeepalive:
		return d.handleSession(frame, protocol.KeepaliveResponseLength, false, &d.session.Keepalives)
	case protocol.CmdCalibrate:
		return d.handleSession(frame, protocol.CalibrateResponseLength, true, &d.session.Calibrations)
	default:
		return nack()
	}
}

func (d *Device) handleSync() []byte {
	if d.requireLineReset && !d.armed {
		d.log.Debug("Ignoring SYNC without line reset")
		return nil
	}
	d.armed = false
	d.acc = protocol.AccInitial
	return []byte{protocol.Sync}
}

func (d *Device) handleRegister(frame []byte) []byte {
	if len(frame) != 8 {
		return nack()
	}
	address := binary.BigEndian.Uint16(frame[3:5])

	switch frame[1] {
	case protocol.SubRead:
		data, err := d.image.Read(address, int(frame[5]))
		if err != nil {
			d.log.Debug("Read out of range", "address", address, "len", frame[5], "err", err)
			return nack()
		}
		return protocol.BuildReadResponse(protocol.SubRead, data)
	case protocol.SubWrite:
		if err := d.image.SetByte(address, frame[5]); err != nil {
			return nack()
		}
		d.storage.OnWrite(address, 1)
		return protocol.AddChecksum([]byte{protocol.Ack, protocol.SubWrite, 0x03, frame[5]})
	default:
		return nack()
	}
}

func (d *Device) handleConfigure(frame []byte) []byte {
	if len(frame) != 11 || frame[1] != d.acc {
		return nack()
	}
	d.session.CutoffCurrent = binary.BigEndian.Uint16(frame[3:5])
	d.session.MaxCurrent = binary.BigEndian.Uint16(frame[5:7])
	d.session.State = frame[7]
	d.log.Debug("Charger configured",
		"cutoff", d.session.CutoffCurrent, "max", d.session.MaxCurrent, "state", d.session.State)
	return protocol.BuildSessionResponse(frame[0], d.acc, protocol.ConfigureResponseLength)
}

func (d *Device) handleSession(frame []byte, n int, advance bool, counter *int) []byte {
	if len(frame) != 5 || frame[1] != d.acc {
		return nack()
	}
	*counter++
	resp := protocol.BuildSessionResponse(frame[0], d.acc, n)
	if advance {
		d.acc = protocol.NextAcc(d.acc)
	}
	return resp
}

func nack() []byte {
	return []byte{protocol.Nack}
}
