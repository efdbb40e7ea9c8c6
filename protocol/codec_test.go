// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import (
	"bytes"
	"testing"
)

func TestReverseBitsSelfInverse(t *testing.T) {
	for x := 0; x < 256; x++ {
		if got := ReverseBits(ReverseBits(byte(x))); got != byte(x) {
			t.Fatalf("reverse(reverse(0x%02X)) = 0x%02X", x, got)
		}
	}
}

func TestReverseBits(t *testing.T) {
	tests := []struct {
		in, want byte
	}{
		{0x00, 0x00},
		{0x01, 0x80},
		{0x81, 0x81},
		{0x82, 0x41},
		{0xAA, 0x55},
		{0xF0, 0x0F},
	}
	for _, tt := range tests {
		if got := ReverseBits(tt.in); got != tt.want {
			t.Errorf("ReverseBits(0x%02X) = 0x%02X, want 0x%02X", tt.in, got, tt.want)
		}
	}
}

func TestReverseIsPerByte(t *testing.T) {
	in := []byte{0x01, 0x02, 0xAA}
	want := []byte{0x80, 0x40, 0x55}
	if got := Reverse(in); !bytes.Equal(got, want) {
		t.Fatalf("Reverse(%X) = %X, want %X", in, got, want)
	}
	if !bytes.Equal(in, []byte{0x01, 0x02, 0xAA}) {
		t.Fatal("Reverse modified its input")
	}
}

func TestChecksum(t *testing.T) {
	if got := Checksum(nil); got != 0 {
		t.Errorf("Checksum([]) = %d, want 0", got)
	}
	if got := Checksum([]byte{0x01, 0x02}); got != 3 {
		t.Errorf("Checksum([1 2]) = %d, want 3", got)
	}
}

func TestAddChecksum(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"Empty", nil, []byte{0x00, 0x00}},
		{"Small", []byte{0x01, 0x02}, []byte{0x01, 0x02, 0x00, 0x03}},
		{"HighByte", []byte{0xFF, 0xFF, 0x02}, []byte{0xFF, 0xFF, 0x02, 0x02, 0x00}},
		{"ReadRequest", ReadRequest(CmdRead, 0x90, 0x00, 0x04), []byte{0x01, 0x04, 0x03, 0x90, 0x00, 0x04, 0x00, 0x9C}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddChecksum(tt.in)
			if len(got) != len(tt.in)+2 {
				t.Fatalf("AddChecksum appended %d bytes, want 2", len(got)-len(tt.in))
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AddChecksum(%X) = %X, want %X", tt.in, got, tt.want)
			}
			if !ValidChecksum(got) && len(got) >= 3 {
				t.Errorf("ValidChecksum(%X) = false", got)
			}
		})
	}
}

func TestConfigureRequest(t *testing.T) {
	got := ConfigureRequest(AccInitial, 300, 6000, 2)
	want := []byte{0x60, 0x04, 0x08, 0x01, 0x2C, 0x17, 0x70, 0x02, 0x0D}
	if !bytes.Equal(got, want) {
		t.Fatalf("ConfigureRequest = %X, want %X", got, want)
	}
	n, err := RequestLength(got)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(AddChecksum(got)) {
		t.Errorf("RequestLength = %d, framed length %d", n, len(AddChecksum(got)))
	}
}

func TestNextAcc(t *testing.T) {
	acc := byte(AccInitial)
	seq := []byte{0x0C, 0x1C, 0x04, 0x0C}
	for i, want := range seq {
		acc = NextAcc(acc)
		if acc != want {
			t.Fatalf("step %d: acc = 0x%02X, want 0x%02X", i, acc, want)
		}
	}
}
