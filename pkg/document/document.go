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

// Package document ties the operation algebras together. Content and
// Operation are tagged by Kind and carry the value of exactly one algebra:
// flat text, lines, or lines with user selections.
package document

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
	"github.com/yorkie-team/otsync/pkg/ot/linewise"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
)

var (
	// ErrLengthMismatch is returned when an operation does not fit the
	// document or operation it is combined with.
	ErrLengthMismatch = charwise.ErrLengthMismatch

	// ErrKindMismatch is returned when values of different kinds are combined.
	ErrKindMismatch = errors.New("kind mismatch")

	// ErrUnknownKind is returned when the kind is not one of the known kinds.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrMissingValue is returned when the value of the tagged kind is missing.
	ErrMissingValue = errors.New("missing value")
)

// Kind is the kind of a document.
type Kind string

// The kinds of documents.
const (
	KindText      Kind = "text"
	KindLines     Kind = "lines"
	KindSelection Kind = "selection"
)

// Kinds returns every known kind.
func Kinds() []Kind {
	return []Kind{KindText, KindLines, KindSelection}
}

// ParseKind parses the given string into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, kind := range Kinds() {
		if Kind(s) == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// Content is the state of a document.
type Content struct {
	Kind   Kind              `json:"kind"`
	Text   string            `json:"text,omitempty"`
	Lines  []string          `json:"lines,omitempty"`
	Target *selection.Target `json:"target,omitempty"`
}

// NewContent returns the empty content of the given kind.
func NewContent(kind Kind) (Content, error) {
	switch kind {
	case KindText:
		return TextContent(""), nil
	case KindLines:
		return LinesContent(nil), nil
	case KindSelection:
		return SelectionContent(selection.NewTarget(nil)), nil
	}
	return Content{}, fmt.Errorf("new content %q: %w", kind, ErrUnknownKind)
}

// TextContent returns flat text content.
func TextContent(text string) Content {
	return Content{Kind: KindText, Text: text}
}

// LinesContent returns line-structured content.
func LinesContent(lines []string) Content {
	return Content{Kind: KindLines, Lines: lines}
}

// SelectionContent returns line-structured content with selections.
func SelectionContent(target selection.Target) Content {
	return Content{Kind: KindSelection, Target: &target}
}

// Validate checks that the value of the tagged kind is present and that
// text is valid UTF-8.
func (c Content) Validate() error {
	switch c.Kind {
	case KindText:
		if !utf8.ValidString(c.Text) {
			return fmt.Errorf("content %s: %w", c.Kind, charwise.ErrInvalidText)
		}
		return nil
	case KindLines:
		return nil
	case KindSelection:
		if c.Target == nil {
			return fmt.Errorf("content %s: %w", c.Kind, ErrMissingValue)
		}
		return nil
	}
	return fmt.Errorf("content %q: %w", c.Kind, ErrUnknownKind)
}

// Len returns the length of the content in the units its operations count:
// runes for text, lines otherwise.
func (c Content) Len() int {
	switch c.Kind {
	case KindText:
		return len([]rune(c.Text))
	case KindLines:
		return len(c.Lines)
	case KindSelection:
		return len(c.Target.Lines)
	}
	return 0
}

// String returns the text of the content.
func (c Content) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindLines:
		return linewise.JoinLines(c.Lines)
	case KindSelection:
		return linewise.JoinLines(c.Target.Lines)
	}
	return ""
}

// Selections returns the selections of the content. It is nil for kinds
// without selections.
func (c Content) Selections() selection.Selections {
	if c.Kind != KindSelection || c.Target == nil {
		return nil
	}
	return c.Target.Selections
}

// Clone returns a deep copy of the content.
func (c Content) Clone() Content {
	clone := Content{Kind: c.Kind, Text: c.Text}
	if c.Lines != nil {
		clone.Lines = append([]string{}, c.Lines...)
	}
	if c.Target != nil {
		target := c.Target.Clone()
		clone.Target = &target
	}
	return clone
}

// Operation is an edit of a document.
type Operation struct {
	Kind      Kind                 `json:"kind"`
	Text      *charwise.Operation  `json:"text,omitempty"`
	Lines     *linewise.Operation  `json:"lines,omitempty"`
	Selection *selection.Operation `json:"selection,omitempty"`
}

// TextOperation wraps a charwise operation.
func TextOperation(op *charwise.Operation) Operation {
	return Operation{Kind: KindText, Text: op}
}

// LinesOperation wraps a linewise operation.
func LinesOperation(op *linewise.Operation) Operation {
	return Operation{Kind: KindLines, Lines: op}
}

// SelectionOperation wraps a selection operation.
func SelectionOperation(op *selection.Operation) Operation {
	return Operation{Kind: KindSelection, Selection: op}
}

// Validate checks that the value of the tagged kind is present and well
// formed.
func (o Operation) Validate() error {
	var ok bool
	switch o.Kind {
	case KindText:
		ok = o.Text != nil
	case KindLines:
		ok = o.Lines != nil
	case KindSelection:
		ok = o.Selection != nil && o.Selection.Lines != nil
	default:
		return fmt.Errorf("operation %q: %w", o.Kind, ErrUnknownKind)
	}

	if !ok {
		return fmt.Errorf("operation %s: %w", o.Kind, ErrMissingValue)
	}

	var err error
	switch o.Kind {
	case KindText:
		err = o.Text.Validate()
	case KindLines:
		err = o.Lines.Validate()
	case KindSelection:
		err = o.Selection.Validate()
	}
	if err != nil {
		return fmt.Errorf("operation %s: %w", o.Kind, err)
	}
	return nil
}

// BaseLen returns the length of the documents this operation applies to.
func (o Operation) BaseLen() int {
	switch o.Kind {
	case KindText:
		return o.Text.BaseLen()
	case KindLines:
		return o.Lines.BaseLen()
	case KindSelection:
		return o.Selection.BaseLen()
	}
	return 0
}

// IsNoop returns whether the operation changes nothing.
func (o Operation) IsNoop() bool {
	switch o.Kind {
	case KindText:
		return o.Text.IsNoop()
	case KindLines:
		return o.Lines.IsNoop()
	case KindSelection:
		return o.Selection.IsNoop()
	}
	return true
}

// String returns a readable form of the operation, used for debugging.
func (o Operation) String() string {
	switch o.Kind {
	case KindText:
		return o.Text.String()
	case KindLines:
		return o.Lines.String()
	case KindSelection:
		return o.Selection.String()
	}
	return ""
}
