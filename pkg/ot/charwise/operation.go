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

// Package charwise provides operations over flat text. An operation is a
// sequence of retain, insert and delete segments that walks the whole source
// document. Lengths are counted in Unicode scalar values (runes).
package charwise

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

var (
	// ErrLengthMismatch is returned when the length an operation expects does
	// not match the document or operation it is combined with.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrInvalidSegment is returned when a decoded segment is malformed.
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrInvalidText is returned when a document or an inserted text is not
	// valid UTF-8.
	ErrInvalidText = errors.New("invalid utf-8 text")

	// ErrTooLong is returned when the lengths of an operation do not fit in
	// an int.
	ErrTooLong = errors.New("operation too long")
)

// addLen returns total+n, or ErrTooLong when the sum overflows.
func addLen(total, n int) (int, error) {
	if n < 0 || total > math.MaxInt-n {
		return 0, ErrTooLong
	}
	return total + n, nil
}

// SegmentKind is the kind of Segment.
type SegmentKind int

// The kinds of segments.
const (
	KindRetain SegmentKind = iota
	KindInsert
	KindDelete
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
	}
	return fmt.Sprintf("SegmentKind(%d)", int(k))
}

// Segment is a single step of an Operation.
type Segment struct {
	Kind SegmentKind

	// Count is the number of runes the segment covers. For an insert it is
	// the rune length of Text.
	Count int

	// Text is the inserted text. It is only set for inserts.
	Text string
}

// Operation is an edit of a flat text document.
type Operation struct {
	segments  []Segment
	baseLen   int
	targetLen int
}

// New creates a new empty operation.
func New() *Operation {
	return &Operation{}
}

// Identity returns an operation that retains a document of n runes.
func Identity(n int) *Operation {
	return New().Retain(n)
}

// Retain appends a retain of n runes.
func (o *Operation) Retain(n int) *Operation {
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

// Insert appends an insertion of the given text. An insert that directly
// follows a delete is placed before it, so that equal edits always have the
// same segments.
func (o *Operation) Insert(text string) *Operation {
	if text == "" {
		return o
	}

	n := utf8.RuneCountInString(text)
	o.targetLen += n

	last := o.last()
	if last != nil && last.Kind == KindInsert {
		last.Text += text
		last.Count += n
		return o
	}

	if last != nil && last.Kind == KindDelete {
		size := len(o.segments)
		if size > 1 && o.segments[size-2].Kind == KindInsert {
			o.segments[size-2].Text += text
			o.segments[size-2].Count += n
			return o
		}

		o.segments = append(o.segments, *last)
		o.segments[size-1] = Segment{Kind: KindInsert, Count: n, Text: text}
		return o
	}

	o.segments = append(o.segments, Segment{Kind: KindInsert, Count: n, Text: text})
	return o
}

// Delete appends a deletion of n runes.
func (o *Operation) Delete(n int) *Operation {
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

// BaseLen returns the length of documents this operation applies to.
func (o *Operation) BaseLen() int {
	return o.baseLen
}

// TargetLen returns the length of documents this operation produces.
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
		if o.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of this operation.
func (o *Operation) Clone() *Operation {
	return &Operation{
		segments:  o.Segments(),
		baseLen:   o.baseLen,
		targetLen: o.targetLen,
	}
}

// String returns a readable form of the operation, used for debugging.
func (o *Operation) String() string {
	parts := make([]string, 0, len(o.segments))
	for _, seg := range o.segments {
		switch seg.Kind {
		case KindInsert:
			parts = append(parts, fmt.Sprintf("insert(%q)", seg.Text))
		default:
			parts = append(parts, fmt.Sprintf("%s(%d)", seg.Kind, seg.Count))
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks that every segment covers a positive count, that inserted
// texts are valid UTF-8 and that the lengths add up.
func (o *Operation) Validate() error {
	base, target := 0, 0
	for i, seg := range o.segments {
		if seg.Count <= 0 {
			return fmt.Errorf("segment %d: %s %d: %w", i, seg.Kind, seg.Count, ErrInvalidSegment)
		}

		var err error
		switch seg.Kind {
		case KindRetain:
			if base, err = addLen(base, seg.Count); err == nil {
				target, err = addLen(target, seg.Count)
			}
		case KindInsert:
			if !utf8.ValidString(seg.Text) {
				return fmt.Errorf("segment %d: %w", i, ErrInvalidText)
			}
			if utf8.RuneCountInString(seg.Text) != seg.Count {
				return fmt.Errorf("segment %d: insert of %d runes counted as %d: %w", i,
					utf8.RuneCountInString(seg.Text), seg.Count, ErrInvalidSegment)
			}
			target, err = addLen(target, seg.Count)
		case KindDelete:
			base, err = addLen(base, seg.Count)
		default:
			return fmt.Errorf("segment %d: %s: %w", i, seg.Kind, ErrInvalidSegment)
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

// span returns the runes of a segment of count runes at pos, failing when
// the segment runs past the end of the document.
func span(runes []rune, pos, count int) ([]rune, error) {
	if pos < 0 || count < 0 || count > len(runes)-pos {
		return nil, fmt.Errorf("segment of %d at %d beyond %d runes: %w", count, pos, len(runes), ErrLengthMismatch)
	}
	return runes[pos : pos+count], nil
}

// Apply applies this operation to the given document. The document must be
// valid UTF-8.
func (o *Operation) Apply(doc string) (string, error) {
	if !utf8.ValidString(doc) {
		return "", fmt.Errorf("apply: %w", ErrInvalidText)
	}
	runes := []rune(doc)
	if len(runes) != o.baseLen {
		return "", fmt.Errorf("apply to %d runes, expected %d: %w", len(runes), o.baseLen, ErrLengthMismatch)
	}

	var sb strings.Builder
	sb.Grow(len(doc))
	pos := 0
	for _, seg := range o.segments {
		switch seg.Kind {
		case KindRetain:
			retained, err := span(runes, pos, seg.Count)
			if err != nil {
				return "", err
			}
			sb.WriteString(string(retained))
			pos += seg.Count
		case KindInsert:
			sb.WriteString(seg.Text)
		case KindDelete:
			if _, err := span(runes, pos, seg.Count); err != nil {
				return "", err
			}
			pos += seg.Count
		}
	}

	return sb.String(), nil
}

// Invert returns the operation that undoes this operation. doc is the
// document this operation was applied to.
func (o *Operation) Invert(doc string) (*Operation, error) {
	if !utf8.ValidString(doc) {
		return nil, fmt.Errorf("invert: %w", ErrInvalidText)
	}
	runes := []rune(doc)
	if len(runes) != o.baseLen {
		return nil, fmt.Errorf("invert against %d runes, expected %d: %w", len(runes), o.baseLen, ErrLengthMismatch)
	}

	inverse := New()
	pos := 0
	for _, seg := range o.segments {
		switch seg.Kind {
		case KindRetain:
			if _, err := span(runes, pos, seg.Count); err != nil {
				return nil, err
			}
			inverse.Retain(seg.Count)
			pos += seg.Count
		case KindInsert:
			inverse.Delete(seg.Count)
		case KindDelete:
			deleted, err := span(runes, pos, seg.Count)
			if err != nil {
				return nil, err
			}
			inverse.Insert(string(deleted))
			pos += seg.Count
		}
	}

	return inverse, nil
}

// TransformPosition moves a rune offset in the source document to the
// matching offset in the target document. An offset inside a deleted span
// collapses to the start of the deletion. An offset at an insertion point is
// moved after the inserted text.
func (o *Operation) TransformPosition(pos int) int {
	index := 0
	newPos := pos
	for _, seg := range o.segments {
		if index > pos {
			break
		}

		switch seg.Kind {
		case KindRetain:
			index += seg.Count
		case KindInsert:
			newPos += seg.Count
		case KindDelete:
			newPos -= min(seg.Count, pos-index)
			index += seg.Count
		}
	}
	return newPos
}
