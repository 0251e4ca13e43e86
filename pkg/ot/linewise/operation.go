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

// Package linewise provides operations over documents made of lines. Whole
// lines are retained, inserted or deleted, and a single line can be edited
// in place with a charwise operation.
package linewise

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
)

var (
	// ErrLengthMismatch is returned when the line count an operation expects
	// does not match the document or operation it is combined with.
	ErrLengthMismatch = charwise.ErrLengthMismatch

	// ErrInvalidLine is returned when an inserted line holds a line break or
	// is not valid UTF-8.
	ErrInvalidLine = errors.New("invalid line")
)

// SegmentKind is the kind of Segment.
type SegmentKind int

// The kinds of segments.
const (
	KindRetain SegmentKind = iota
	KindInsert
	KindDelete
	KindModify
)

// String returns the name of the kind.
func (k SegmentKind) String() string {
	switch k {
	case KindRetain:
		return "retain"
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindModify:
		return "modify"
	}
	return fmt.Sprintf("SegmentKind(%d)", int(k))
}

// Segment is a single step of an Operation.
type Segment struct {
	Kind SegmentKind

	// Count is the number of lines the segment covers. It is 1 for a modify.
	Count int

	// Lines holds the inserted lines.
	Lines []string

	// Modify is the edit applied to a single line.
	Modify *charwise.Operation
}

func (s Segment) equal(other Segment) bool {
	if s.Kind != other.Kind || s.Count != other.Count {
		return false
	}
	switch s.Kind {
	case KindInsert:
		for i := range s.Lines {
			if s.Lines[i] != other.Lines[i] {
				return false
			}
		}
	case KindModify:
		return s.Modify.Equal(other.Modify)
	}
	return true
}

// Operation is an edit of a line-structured document.
type Operation struct {
	segments  []Segment
	baseLen   int
	targetLen int
}

// New creates a new empty operation.
func New() *Operation {
	return &Operation{}
}

// Identity returns an operation that retains a document of n lines.
func Identity(n int) *Operation {
	return New().RetainLines(n)
}

// RetainLines appends a retain of n lines.
func (o *Operation) RetainLines(n int) *Operation {
	if n <= 0 {
		return o
	}

	o.baseLen += n
	o.targetLen += n

	if last := o.last(); last != nil && last.Kind == KindRetain {
		last.Count += n
		return o
	}
	o.segments = append(o.segments, Segment{Kind: KindRetain, Count: n})
	return o
}

// InsertLines appends an insertion of the given lines. An insert that
// directly follows a delete is placed before it.
func (o *Operation) InsertLines(lines ...string) *Operation {
	if len(lines) == 0 {
		return o
	}

	o.targetLen += len(lines)

	last := o.last()
	if last != nil && last.Kind == KindInsert {
		last.Lines = append(last.Lines, lines...)
		last.Count += len(lines)
		return o
	}

	inserted := Segment{Kind: KindInsert, Count: len(lines), Lines: append([]string(nil), lines...)}
	if last != nil && last.Kind == KindDelete {
		size := len(o.segments)
		if size > 1 && o.segments[size-2].Kind == KindInsert {
			prev := &o.segments[size-2]
			prev.Lines = append(prev.Lines, lines...)
			prev.Count += len(lines)
			return o
		}

		o.segments = append(o.segments, *last)
		o.segments[size-1] = inserted
		return o
	}

	o.segments = append(o.segments, inserted)
	return o
}

// DeleteLines appends a deletion of n lines.
func (o *Operation) DeleteLines(n int) *Operation {
	if n <= 0 {
		return o
	}

	o.baseLen += n

	if last := o.last(); last != nil && last.Kind == KindDelete {
		last.Count += n
		return o
	}
	o.segments = append(o.segments, Segment{Kind: KindDelete, Count: n})
	return o
}

// ModifyLine appends an in-place edit of one line. An edit that changes
// nothing is recorded as a retain of the line.
func (o *Operation) ModifyLine(op *charwise.Operation) *Operation {
	if op.IsNoop() {
		return o.RetainLines(1)
	}

	o.baseLen++
	o.targetLen++
	o.segments = append(o.segments, Segment{Kind: KindModify, Count: 1, Modify: op})
	return o
}

func (o *Operation) last() *Segment {
	if len(o.segments) == 0 {
		return nil
	}
	return &o.segments[len(o.segments)-1]
}

// Segments returns a copy of the segments of this operation.
func (o *Operation) Segments() []Segment {
	segments := make([]Segment, len(o.segments))
	copy(segments, o.segments)
	return segments
}

// BaseLen returns the number of lines this operation applies to.
func (o *Operation) BaseLen() int {
	return o.baseLen
}

// TargetLen returns the number of lines this operation produces.
func (o *Operation) TargetLen() int {
	return o.targetLen
}

// IsNoop returns whether the operation leaves every document unchanged.
func (o *Operation) IsNoop() bool {
	return len(o.segments) == 0 ||
		(len(o.segments) == 1 && o.segments[0].Kind == KindRetain)
}

// Equal returns whether the two operations have the same segments.
func (o *Operation) Equal(other *Operation) bool {
	if len(o.segments) != len(other.segments) {
		return false
	}
	for i := range o.segments {
		if !o.segments[i].equal(other.segments[i]) {
			return false
		}
	}
	return true
}

// String returns a readable form of the operation, used for debugging.
func (o *Operation) String() string {
	parts := make([]string, 0, len(o.segments))
	for _, seg := range o.segments {
		switch seg.Kind {
		case KindInsert:
			parts = append(parts, fmt.Sprintf("insert(%q)", seg.Lines))
		case KindModify:
			parts = append(parts, fmt.Sprintf("modify[%s]", seg.Modify))
		default:
			parts = append(parts, fmt.Sprintf("%s(%d)", seg.Kind, seg.Count))
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks that every segment is well formed, that inserted lines
// hold no line break and that the lengths add up.
func (o *Operation) Validate() error {
	base, target := 0, 0
	grow := func(total, n int) (int, error) {
		if total > math.MaxInt-n {
			return 0, charwise.ErrTooLong
		}
		return total + n, nil
	}

	for i, seg := range o.segments {
		if seg.Count <= 0 {
			return fmt.Errorf("segment %d: %s %d: %w", i, seg.Kind, seg.Count, charwise.ErrInvalidSegment)
		}

		var err error
		switch seg.Kind {
		case KindRetain:
			if base, err = grow(base, seg.Count); err == nil {
				target, err = grow(target, seg.Count)
			}
		case KindInsert:
			if len(seg.Lines) != seg.Count {
				return fmt.Errorf("segment %d: %d lines counted as %d: %w", i, len(seg.Lines), seg.Count, charwise.ErrInvalidSegment)
			}
			for _, line := range seg.Lines {
				if strings.Contains(line, "\n") || !utf8.ValidString(line) {
					return fmt.Errorf("segment %d: line %q: %w", i, line, ErrInvalidLine)
				}
			}
			target, err = grow(target, seg.Count)
		case KindDelete:
			base, err = grow(base, seg.Count)
		case KindModify:
			if seg.Count != 1 || seg.Modify == nil {
				return fmt.Errorf("segment %d: modify: %w", i, charwise.ErrInvalidSegment)
			}
			if err := seg.Modify.Validate(); err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			if base, err = grow(base, 1); err == nil {
				target, err = grow(target, 1)
			}
		default:
			return fmt.Errorf("segment %d: %s: %w", i, seg.Kind, charwise.ErrInvalidSegment)
		}
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}

	if base != o.baseLen || target != o.targetLen {
		return fmt.Errorf("lengths %d/%d, segments add up to %d/%d: %w",
			o.baseLen, o.targetLen, base, target, ErrLengthMismatch)
	}
	return nil
}

// span returns count lines at pos, failing when they run past the end.
func span(lines []string, pos, count int) ([]string, error) {
	if pos < 0 || count < 0 || count > len(lines)-pos {
		return nil, fmt.Errorf("segment of %d at %d beyond %d lines: %w", count, pos, len(lines), ErrLengthMismatch)
	}
	return lines[pos : pos+count], nil
}

// Apply applies this operation to the given lines and returns new lines.
func (o *Operation) Apply(lines []string) ([]string, error) {
	if len(lines) != o.baseLen {
		return nil, fmt.Errorf("apply to %d lines, expected %d: %w", len(lines), o.baseLen, ErrLengthMismatch)
	}

	applied := make([]string, 0, o.targetLen)
	pos := 0
	for _, seg := range o.segments {
		switch seg.Kind {
		case KindRetain:
			retained, err := span(lines, pos, seg.Count)
			if err != nil {
				return nil, err
			}
			applied = append(applied, retained...)
			pos += seg.Count
		case KindInsert:
			applied = append(applied, seg.Lines...)
		case KindDelete:
			if _, err := span(lines, pos, seg.Count); err != nil {
				return nil, err
			}
			pos += seg.Count
		case KindModify:
			if _, err := span(lines, pos, 1); err != nil {
				return nil, err
			}
			line, err := seg.Modify.Apply(lines[pos])
			if err != nil {
				return nil, fmt.Errorf("modify line %d: %w", pos, err)
			}
			applied = append(applied, line)
			pos++
		}
	}

	return applied, nil
}

// Invert returns the operation that undoes this operation. lines is the
// document this operation was applied to.
func (o *Operation) Invert(lines []string) (*Operation, error) {
	if len(lines) != o.baseLen {
		return nil, fmt.Errorf("invert against %d lines, expected %d: %w", len(lines), o.baseLen, ErrLengthMismatch)
	}

	inverse := New()
	pos := 0
	for _, seg := range o.segments {
		switch seg.Kind {
		case KindRetain:
			if _, err := span(lines, pos, seg.Count); err != nil {
				return nil, err
			}
			inverse.RetainLines(seg.Count)
			pos += seg.Count
		case KindInsert:
			inverse.DeleteLines(seg.Count)
		case KindDelete:
			deleted, err := span(lines, pos, seg.Count)
			if err != nil {
				return nil, err
			}
			inverse.InsertLines(deleted...)
			pos += seg.Count
		case KindModify:
			if _, err := span(lines, pos, 1); err != nil {
				return nil, err
			}
			inv, err := seg.Modify.Invert(lines[pos])
			if err != nil {
				return nil, fmt.Errorf("invert line %d: %w", pos, err)
			}
			inverse.ModifyLine(inv)
			pos++
		}
	}

	return inverse, nil
}

// Position is a place in a line-structured document. A position on line
// len(lines) with column 0 marks the end of the document.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Less returns whether p comes before other.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// TransformPosition moves a position in the source document to the matching
// position in the target document. A position on a deleted line collapses to
// the start of the deletion. Lines inserted at a position's line push it down.
func (o *Operation) TransformPosition(pos Position) Position {
	index, newLine := 0, 0
	for _, seg := range o.segments {
		switch seg.Kind {
		case KindRetain:
			if pos.Line < index+seg.Count {
				return Position{Line: newLine + pos.Line - index, Column: pos.Column}
			}
			index += seg.Count
			newLine += seg.Count
		case KindInsert:
			newLine += seg.Count
		case KindDelete:
			if pos.Line < index+seg.Count {
				return Position{Line: newLine}
			}
			index += seg.Count
		case KindModify:
			if pos.Line == index {
				return Position{Line: newLine, Column: seg.Modify.TransformPosition(pos.Column)}
			}
			index++
			newLine++
		}
	}
	return Position{Line: newLine + pos.Line - index, Column: pos.Column}
}
