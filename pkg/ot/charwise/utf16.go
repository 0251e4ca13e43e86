/*
 * Copyright 2024 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package charwise

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidOffset is returned when an offset is out of range or splits a
// surrogate pair.
var ErrInvalidOffset = errors.New("invalid offset")

// utf16Len returns the number of UTF-16 code units of r.
func utf16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}

// FromUTF16Offset converts an offset in UTF-16 code units, as editors in the
// browser report them, into a rune offset of doc.
func FromUTF16Offset(doc string, offset int) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("utf16 offset %d: %w", offset, ErrInvalidOffset)
	}

	units, runes := 0, 0
	for _, r := range doc {
		if units == offset {
			return runes, nil
		}
		units += utf16Len(r)
		if units > offset {
			return 0, fmt.Errorf("utf16 offset %d splits a surrogate pair: %w", offset, ErrInvalidOffset)
		}
		runes++
	}

	if units != offset {
		return 0, fmt.Errorf("utf16 offset %d beyond %d: %w", offset, units, ErrInvalidOffset)
	}
	return runes, nil
}

// ToUTF16Offset converts a rune offset of doc into UTF-16 code units.
func ToUTF16Offset(doc string, offset int) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("rune offset %d: %w", offset, ErrInvalidOffset)
	}

	units, runes := 0, 0
	for _, r := range doc {
		if runes == offset {
			return units, nil
		}
		units += utf16Len(r)
		runes++
	}

	if runes != offset {
		return 0, fmt.Errorf("rune offset %d beyond %d: %w", offset, runes, ErrInvalidOffset)
	}
	return units, nil
}
