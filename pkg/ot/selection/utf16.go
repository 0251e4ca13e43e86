/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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

package selection

import (
	"fmt"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
)

// FromUTF16 converts a selection whose columns count UTF-16 code units, as
// browser editors report them, into rune columns of lines.
func FromUTF16(lines []string, sel Selection) (Selection, error) {
	return convert(lines, sel, charwise.FromUTF16Offset)
}

// ToUTF16 converts a selection with rune columns of lines into UTF-16 code
// unit columns.
func ToUTF16(lines []string, sel Selection) (Selection, error) {
	return convert(lines, sel, charwise.ToUTF16Offset)
}

func convert(lines []string, sel Selection, column func(string, int) (int, error)) (Selection, error) {
	anchor, err := convertPosition(lines, sel.Anchor, column)
	if err != nil {
		return Selection{}, err
	}
	head, err := convertPosition(lines, sel.Head, column)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Anchor: anchor, Head: head}, nil
}

func convertPosition(lines []string, pos Position, column func(string, int) (int, error)) (Position, error) {
	if pos.Line < 0 || pos.Line > len(lines) {
		return Position{}, fmt.Errorf("line %d of %d: %w", pos.Line, len(lines), charwise.ErrInvalidOffset)
	}

	// the end of the document has no line to measure
	line := ""
	if pos.Line < len(lines) {
		line = lines[pos.Line]
	}
	col, err := column(line, pos.Column)
	if err != nil {
		return Position{}, fmt.Errorf("line %d: %w", pos.Line, err)
	}
	return Position{Line: pos.Line, Column: col}, nil
}
