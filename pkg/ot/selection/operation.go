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

package selection

import (
	"errors"
	"fmt"

	"github.com/yorkie-team/otsync/pkg/ot/linewise"
)

// ErrInvalidOperation is returned when a selection operation is malformed.
var ErrInvalidOperation = errors.New("invalid selection operation")

// Target is a linewise document together with the selections of every user
// editing it.
type Target struct {
	Lines      []string   `json:"lines"`
	Selections Selections `json:"selections"`
}

// NewTarget creates a target with the given lines and no selections.
func NewTarget(lines []string) Target {
	return Target{Lines: lines, Selections: Selections{}}
}

// Clone returns a deep copy of the target.
func (t Target) Clone() Target {
	selections := t.Selections.Clone()
	if selections == nil {
		selections = Selections{}
	}
	return Target{
		Lines:      append([]string{}, t.Lines...),
		Selections: selections,
	}
}

// Operation is a content edit that may also set the selections of some
// users. Positions in Select refer to the document the operation produces. A
// nil Select leaves every selection as it is, apart from moving it.
//
// Steps, when set, are the edits Lines was composed from. Selections move
// through them one by one, so that a composed operation moves them exactly
// as its parts would have.
type Operation struct {
	Lines  *linewise.Operation   `json:"lines"`
	Select Selections            `json:"select,omitempty"`
	Steps  []*linewise.Operation `json:"steps,omitempty"`
}

// Identity returns an operation that changes nothing in a target of n lines.
func Identity(n int) *Operation {
	return &Operation{Lines: linewise.Identity(n)}
}

// Edit wraps a content edit that changes no selection.
func Edit(lines *linewise.Operation) *Operation {
	return &Operation{Lines: lines}
}

// Select returns an operation that keeps the content of target and replaces
// the selections of the users in sels.
func Select(target Target, sels Selections) *Operation {
	return &Operation{
		Lines:  linewise.Identity(len(target.Lines)),
		Select: sels.Clone(),
	}
}

// BaseLen returns the number of lines this operation applies to.
func (o *Operation) BaseLen() int {
	return o.Lines.BaseLen()
}

// IsNoop returns whether the operation changes neither content nor
// selections.
func (o *Operation) IsNoop() bool {
	if !o.Lines.IsNoop() || len(o.Select) != 0 {
		return false
	}
	for _, step := range o.Steps {
		if !step.IsNoop() {
			return false
		}
	}
	return true
}

// Validate checks the content edit, that the steps chain from the base to
// the target of Lines and that no selection has a negative position.
func (o *Operation) Validate() error {
	if o.Lines == nil {
		return fmt.Errorf("selection operation without lines: %w", ErrInvalidOperation)
	}
	if err := o.Lines.Validate(); err != nil {
		return err
	}

	if len(o.Steps) > 0 {
		prev := o.Lines.BaseLen()
		for i, step := range o.Steps {
			if step == nil {
				return fmt.Errorf("step %d missing: %w", i, ErrInvalidOperation)
			}
			if err := step.Validate(); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			if step.BaseLen() != prev {
				return fmt.Errorf("step %d applies to %d lines, after %d: %w", i, step.BaseLen(), prev, linewise.ErrLengthMismatch)
			}
			prev = step.TargetLen()
		}
		if prev != o.Lines.TargetLen() {
			return fmt.Errorf("steps produce %d lines, lines %d: %w", prev, o.Lines.TargetLen(), linewise.ErrLengthMismatch)
		}
	}

	for user, sels := range o.Select {
		for _, sel := range sels {
			if !sel.valid() {
				return fmt.Errorf("selection %v of %q: %w", sel, user, ErrInvalidOperation)
			}
		}
	}
	return nil
}

// moves returns the edits selections move through, in order.
func (o *Operation) moves() []*linewise.Operation {
	if len(o.Steps) == 0 {
		return []*linewise.Operation{o.Lines}
	}
	return o.Steps
}

// String returns a readable form of the operation, used for debugging.
func (o *Operation) String() string {
	if len(o.Select) == 0 {
		return o.Lines.String()
	}
	return fmt.Sprintf("%s select%v", o.Lines, map[string][]Selection(o.Select))
}

// Apply applies the operation to the target. Existing selections move with
// the content and the selections in the operation replace those of the same
// users.
func Apply(target Target, op *Operation) (Target, error) {
	lines, err := op.Lines.Apply(target.Lines)
	if err != nil {
		return Target{}, err
	}

	selections := target.Selections.Transform(op.moves()...).overlay(op.Select, true)
	if selections == nil {
		selections = Selections{}
	}
	return Target{Lines: lines, Selections: selections}, nil
}

// Compose returns an operation equivalent to applying a then b, for the
// selections as well as for the content.
func Compose(a, b *Operation) (*Operation, error) {
	lines, err := linewise.Compose(a.Lines, b.Lines)
	if err != nil {
		return nil, err
	}

	var steps []*linewise.Operation
	for _, moves := range [][]*linewise.Operation{a.moves(), b.moves()} {
		for _, step := range moves {
			if !step.IsNoop() {
				steps = append(steps, step)
			}
		}
	}
	if len(steps) == 1 && steps[0].Equal(lines) {
		steps = nil
	}

	return &Operation{
		Lines:  lines,
		Select: a.Select.Transform(b.moves()...).overlay(b.Select, false),
		Steps:  steps,
	}, nil
}

// Transform takes two operations a and b that apply to the same target and
// returns a' and b' such that applying a then b' equals applying b then a'.
// Content follows the linewise rules, b's lines first. When both operations
// set the selections of the same user, a's selections win, since a is the
// operation ordered after b; the same rule Compose applies to its second
// operation.
//
// The selections set by either operation end up equal on both paths. A
// selection set by neither may land on either side of text inserted where it
// collapsed; the sequencer applies one path only, so replicas still agree.
func Transform(a, b *Operation) (*Operation, *Operation, error) {
	aLines, bLines, err := linewise.Transform(a.Lines, b.Lines)
	if err != nil {
		return nil, nil, err
	}

	aPrime := &Operation{
		Lines:  aLines,
		Select: a.Select.Transform(bLines),
	}
	bPrime := &Operation{
		Lines:  bLines,
		Select: b.Select.without(a.Select).Transform(aLines),
	}
	if len(bPrime.Select) == 0 {
		bPrime.Select = nil
	}
	return aPrime, bPrime, nil
}

// Invert returns the operation that undoes op on target: the content edit is
// inverted and the users op selected get their previous selections back.
func Invert(target Target, op *Operation) (*Operation, error) {
	lines, err := op.Lines.Invert(target.Lines)
	if err != nil {
		return nil, err
	}

	inverse := &Operation{Lines: lines}
	if op.Select != nil {
		inverse.Select = make(Selections, len(op.Select))
		for user := range op.Select {
			inverse.Select[user] = append([]Selection{}, target.Selections[user]...)
		}
	}
	return inverse, nil
}
