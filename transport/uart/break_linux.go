// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

//go:build linux

package uart

import (
	"os"

	"golang.org/x/sys/unix"
)

// breakLine holds the BREAK condition on a second descriptor of the same
// tty. The condition belongs to the line, not the descriptor.
type breakLine struct {
	f *os.File
}

func openBreakLine(device string) (breakLine, error) {
	f, err := os.OpenFile(device, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return breakLine{}, err
	}
	return breakLine{f: f}, nil
}

func (b breakLine) set(on bool) error {
	req := uint(unix.TIOCCBRK)
	if on {
		req = unix.TIOCSBRK
	}
	return unix.IoctlSetInt(int(b.f.Fd()), req, 0)
}

func (b breakLine) close() error {
	if b.f == nil {
		return nil
	}
	return b.f.Close()
}
