// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"bytes"
	"fmt"

	"github.com/ffutop/m18link/internal/emulator/model"
)

// On-disk layout:
// - Header: 8 bytes magic (Offset 0)
// - Image: 65536 bytes (Offset 8)
// Total Size: 65544 bytes
const (
	sizeHeader = 8
	sizeImage  = model.Size
	totalSize  = sizeHeader + sizeImage

	offsetHeader = 0
	offsetImage  = offsetHeader + sizeHeader
)

var magic = []byte("M18IMG\x00\x01")

// mapBytesToImage constructs an Image backed by data. A missing header marks
// the file as fresh; the header is written and the image cleared.
func mapBytesToImage(data []byte) (*model.Image, bool, error) {
	if len(data) < totalSize {
		return nil, false, fmt.Errorf("image file is %d bytes, want %d", len(data), totalSize)
	}
	header := data[offsetHeader : offsetHeader+sizeHeader]
	body := data[offsetImage : offsetImage+sizeImage]

	fresh := !bytes.Equal(header, magic)
	if fresh {
		copy(header, magic)
		clear(body)
	}
	img, err := model.FromBytes(body)
	if err != nil {
		return nil, false, err
	}
	return img, fresh, nil
}
