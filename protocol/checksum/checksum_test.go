// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package checksum

import (
	"bytes"
	"testing"
)

func TestSum(t *testing.T) {
	var sum Sum
	sum.Reset()
	sum.PushBytes([]byte{0x01, 0x02})

	if sum.Value() != 3 {
		t.Fatalf("sum expected %v, actual %v", 3, sum.Value())
	}
}

func TestSumEmpty(t *testing.T) {
	if got := Of(nil); got != 0 {
		t.Fatalf("empty sum = %d, want 0", got)
	}
}

func TestSumWraps(t *testing.T) {
	// 258 * 0xFF = 65790, which wraps to 254.
	p := bytes.Repeat([]byte{0xFF}, 258)
	if got := Of(p); got != 254 {
		t.Fatalf("wrapped sum = %d, want 254", got)
	}
}

func TestPushByteMatchesPushBytes(t *testing.T) {
	p := []byte{0x01, 0x04, 0x03, 0x90, 0x00, 0x04}
	var a, b Sum
	a.Reset().PushBytes(p)
	b.Reset()
	for _, c := range p {
		b.PushByte(c)
	}
	if a.Value() != b.Value() {
		t.Fatalf("PushByte sum %d != PushBytes sum %d", b.Value(), a.Value())
	}
}
