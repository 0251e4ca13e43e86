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

// Package helper provides helper functions for testing.
package helper

import (
	"math/rand"
	"strings"
	"unicode/utf8"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
	"github.com/yorkie-team/otsync/pkg/ot/linewise"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
)

// Users are the users random selections are made for.
var Users = []string{"alice", "bob", "carol"}

const alphabet = "xyzé"

// RandomText returns up to n runes drawn from a small alphabet, so that
// random edits often touch equal text.
func RandomText(r *rand.Rand, n int) string {
	runes := []rune(alphabet)
	var sb strings.Builder
	for i := r.Intn(n + 1); i > 0; i-- {
		sb.WriteRune(runes[r.Intn(len(runes))])
	}
	return sb.String()
}

// RandomLines returns up to n short lines.
func RandomLines(r *rand.Rand, n int) []string {
	lines := make([]string, r.Intn(n+1))
	for i := range lines {
		lines[i] = RandomText(r, 4)
	}
	return lines
}

// RandomCharwise returns a random operation over text.
func RandomCharwise(r *rand.Rand, text string) *charwise.Operation {
	op := charwise.New()
	remaining := utf8.RuneCountInString(text)
	for remaining > 0 {
		n := 1 + r.Intn(remaining)
		switch r.Intn(4) {
		case 0:
			op.Insert(RandomText(r, 3))
		case 1:
			op.Delete(n)
			remaining -= n
		default:
			op.Retain(n)
			remaining -= n
		}
	}
	if r.Intn(3) == 0 {
		op.Insert(RandomText(r, 3))
	}
	return op
}

// RandomLinewise returns a random operation over lines.
func RandomLinewise(r *rand.Rand, lines []string) *linewise.Operation {
	op := linewise.New()
	pos := 0
	for pos < len(lines) {
		n := 1 + r.Intn(len(lines)-pos)
		switch r.Intn(5) {
		case 0:
			op.InsertLines(RandomLines(r, 2)...)
		case 1:
			op.DeleteLines(n)
			pos += n
		case 2:
			op.ModifyLine(RandomCharwise(r, lines[pos]))
			pos++
		default:
			op.RetainLines(n)
			pos += n
		}
	}
	if r.Intn(3) == 0 {
		op.InsertLines(RandomLines(r, 2)...)
	}
	return op
}

// RandomPosition returns a position inside lines, the end of the document
// included.
func RandomPosition(r *rand.Rand, lines []string) selection.Position {
	line := r.Intn(len(lines) + 1)
	if line == len(lines) {
		return selection.Position{Line: line}
	}
	return selection.Position{Line: line, Column: r.Intn(utf8.RuneCountInString(lines[line]) + 1)}
}

// RandomSelections returns selections for a random subset of Users over
// lines. A user may get an empty list, which removes its selections.
func RandomSelections(r *rand.Rand, lines []string) selection.Selections {
	sels := selection.Selections{}
	for _, user := range Users {
		if r.Intn(2) == 0 {
			continue
		}
		list := []selection.Selection{}
		for i := r.Intn(3); i > 0; i-- {
			list = append(list, selection.Range(RandomPosition(r, lines), RandomPosition(r, lines)))
		}
		sels[user] = list
	}
	return sels
}

// RandomTarget returns a random target whose users all have selections.
func RandomTarget(r *rand.Rand) selection.Target {
	target := selection.NewTarget(RandomLines(r, 5))
	for user, sels := range RandomSelections(r, target.Lines) {
		if len(sels) > 0 {
			target.Selections[user] = sels
		}
	}
	return target
}

// RandomSelectionOperation returns a random operation over target. Its
// selections, if any, refer to the document it produces.
func RandomSelectionOperation(r *rand.Rand, target selection.Target) *selection.Operation {
	lines := RandomLinewise(r, target.Lines)
	op := selection.Edit(lines)
	if r.Intn(2) == 0 {
		produced, err := lines.Apply(target.Lines)
		if err != nil {
			panic(err)
		}
		op.Select = RandomSelections(r, produced)
	}
	return op
}

// PositionInside returns whether pos lies inside lines.
func PositionInside(lines []string, pos selection.Position) bool {
	if pos.Line < 0 || pos.Column < 0 || pos.Line > len(lines) {
		return false
	}
	if pos.Line == len(lines) {
		return pos.Column == 0
	}
	return pos.Column <= utf8.RuneCountInString(lines[pos.Line])
}
