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

package linewise

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
)

// SplitLines splits text on "\n". The empty text has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// JoinLines joins lines with "\n".
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// lineRune maps the index of a distinct line to a rune, skipping the
// surrogate range.
func lineRune(idx int) rune {
	r := rune(idx + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

// Diff returns an operation that turns from into to. Runs where lines were
// both removed and added are paired up into in-place line edits, so that
// positions on those lines survive the change.
func Diff(from, to []string) *Operation {
	index := make(map[string]rune)
	encode := func(lines []string) []rune {
		runes := make([]rune, len(lines))
		for i, line := range lines {
			r, ok := index[line]
			if !ok {
				r = lineRune(len(index))
				index[line] = r
			}
			runes[i] = r
		}
		return runes
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(encode(from), encode(to), false)

	op := New()
	fromPos, toPos := 0, 0
	var deleted, inserted []string
	flush := func() {
		paired := min(len(deleted), len(inserted))
		for i := 0; i < paired; i++ {
			op.ModifyLine(charwise.Diff(deleted[i], inserted[i]))
		}
		op.InsertLines(inserted[paired:]...)
		op.DeleteLines(len(deleted) - paired)
		deleted, inserted = nil, nil
	}

	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			op.RetainLines(n)
			fromPos += n
			toPos += n
		case diffmatchpatch.DiffDelete:
			deleted = append(deleted, from[fromPos:fromPos+n]...)
			fromPos += n
		case diffmatchpatch.DiffInsert:
			inserted = append(inserted, to[toPos:toPos+n]...)
			toPos += n
		}
	}
	flush()

	return op
}
