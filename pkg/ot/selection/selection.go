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

// Package selection layers per-user cursors and ranges on top of linewise
// documents. Selections move with every content edit, and an operation may
// also replace the selections of some users.
package selection

import (
	"sort"

	"github.com/yorkie-team/otsync/pkg/ot/linewise"
)

// Position is a line and column in a document.
type Position = linewise.Position

// Selection is a range from Anchor to Head. A cursor is a selection whose
// anchor and head are the same.
type Selection struct {
	Anchor Position `json:"anchor"`
	Head   Position `json:"head"`
}

// Cursor returns a selection collapsed at pos.
func Cursor(pos Position) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// Range returns a selection from anchor to head.
func Range(anchor, head Position) Selection {
	return Selection{Anchor: anchor, Head: head}
}

func (s Selection) valid() bool {
	return s.Anchor.Line >= 0 && s.Anchor.Column >= 0 && s.Head.Line >= 0 && s.Head.Column >= 0
}

// Start returns the earlier end of the selection.
func (s Selection) Start() Position {
	if s.Head.Less(s.Anchor) {
		return s.Head
	}
	return s.Anchor
}

// End returns the later end of the selection.
func (s Selection) End() Position {
	if s.Head.Less(s.Anchor) {
		return s.Anchor
	}
	return s.Head
}

// IsCursor returns whether the selection is collapsed.
func (s Selection) IsCursor() bool {
	return s.Anchor == s.Head
}

// Transform moves the selection through the given content edit.
func (s Selection) Transform(op *linewise.Operation) Selection {
	return Selection{
		Anchor: op.TransformPosition(s.Anchor),
		Head:   op.TransformPosition(s.Head),
	}
}

// Selections maps a user to the selections of that user. An empty list in an
// operation removes the user's selections.
type Selections map[string][]Selection

// Users returns the users in sorted order.
func (s Selections) Users() []string {
	users := make([]string, 0, len(s))
	for user := range s {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Clone returns a deep copy of the selections. It returns nil for nil.
func (s Selections) Clone() Selections {
	if s == nil {
		return nil
	}
	clone := make(Selections, len(s))
	for user, sels := range s {
		clone[user] = append([]Selection{}, sels...)
	}
	return clone
}

// Transform moves every selection through the given content edits, one
// after the other.
func (s Selections) Transform(ops ...*linewise.Operation) Selections {
	if s == nil {
		return nil
	}
	transformed := make(Selections, len(s))
	for user, sels := range s {
		moved := make([]Selection, len(sels))
		for i, sel := range sels {
			for _, op := range ops {
				sel = sel.Transform(op)
			}
			moved[i] = sel
		}
		transformed[user] = moved
	}
	return transformed
}

// overlay writes the selections of update over s. Users with an empty list in
// update are removed when prune is set, and kept as removals otherwise.
func (s Selections) overlay(update Selections, prune bool) Selections {
	if s == nil && update == nil {
		return nil
	}

	merged := s.Clone()
	if merged == nil {
		merged = make(Selections, len(update))
	}
	for user, sels := range update {
		if prune && len(sels) == 0 {
			delete(merged, user)
			continue
		}
		merged[user] = append([]Selection{}, sels...)
	}
	return merged
}

// without returns a copy of s without the users that appear in other.
func (s Selections) without(other Selections) Selections {
	if s == nil {
		return nil
	}
	rest := make(Selections, len(s))
	for user, sels := range s {
		if _, ok := other[user]; ok {
			continue
		}
		rest[user] = append([]Selection{}, sels...)
	}
	return rest
}
