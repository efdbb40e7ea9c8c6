// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

import "fmt"

// RequestHeaderSize is the number of bytes needed to size any request.
const RequestHeaderSize = 2

// RequestLength returns the total length, checksum included, of the request
// that starts with header. A lone SYNC byte is a complete request.
func RequestLength(header []byte) (int, error) {
	if len(header) == 0 {
		return 0, fmt.Errorf("empty request header")
	}

	switch header[0] {
	case Sync:
		return 1, nil
	case CmdRead:
		// [cmd, sub, 0x03, aH, aL, len|value, ckH, ckL]
		return 8, nil
	case CmdConfigure:
		// [cmd, acc, 0x08, cut(2), max(2), state, 0x0D, ckH, ckL]
		return 11, nil
	case CmdSnapshot, CmdKeepalive, CmdCalibrate:
		// [cmd, acc, 0x00, ckH, ckL]
		return 5, nil
	default:
		return 0, fmt.Errorf("unsupported command: 0x%02X", header[0])
	}
}
