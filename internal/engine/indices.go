// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package engine

import (
	"fmt"
	"strconv"
	"strings"
)

const maxIndex = 0xFFFF

// ParseIndices parses a list of catalog indices like "1,2,5-10". Indices
// past the end of the catalog are accepted; ReadIDs reports them as
// unreadable.
func ParseIndices(input string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "-") {
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid index: %w", err)
			}
			if id < 0 || id > maxIndex {
				return nil, fmt.Errorf("index out of range: %d", id)
			}
			ids = append(ids, id)
			continue
		}

		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid range: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start of range: %w", err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end of range: %w", err)
		}
		if start > end {
			return nil, fmt.Errorf("start of range %d is greater than end %d", start, end)
		}
		if start < 0 || end > maxIndex {
			return nil, fmt.Errorf("range out of bounds: %s", part)
		}
		for i := start; i <= end; i++ {
			ids = append(ids, i)
		}
	}
	return ids, nil
}
