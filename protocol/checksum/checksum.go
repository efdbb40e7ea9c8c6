// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package checksum

// Sum is the 16-bit additive checksum carried at the end of every frame.
// Bytes are summed as unsigned values and the total wraps at 65536.
type Sum struct {
	value uint16
}

// Reset clears the accumulator.
func (s *Sum) Reset() *Sum {
	s.value = 0
	return s
}

// PushByte adds a single byte.
func (s *Sum) PushByte(b byte) *Sum {
	s.value += uint16(b)
	return s
}

// PushBytes adds every byte of p.
func (s *Sum) PushBytes(p []byte) *Sum {
	for _, b := range p {
		s.value += uint16(b)
	}
	return s
}

// Value returns the current checksum.
func (s *Sum) Value() uint16 {
	return s.value
}

// Of is shorthand for a fresh Sum over p.
func Of(p []byte) uint16 {
	var s Sum
	return s.Reset().PushBytes(p).Value()
}
