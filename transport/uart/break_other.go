// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

//go:build !linux

package uart

import "errors"

var errBreakUnsupported = errors.New("uart: holding BREAK is only supported on linux")

type breakLine struct{}

func openBreakLine(string) (breakLine, error) { return breakLine{}, nil }

func (breakLine) set(on bool) error {
	if on {
		return errBreakUnsupported
	}
	return nil
}

func (breakLine) close() error { return nil }
