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

package document

import (
	"fmt"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
	"github.com/yorkie-team/otsync/pkg/ot/linewise"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
)

// Identity returns the operation that leaves the given content unchanged.
func Identity(c Content) Operation {
	switch c.Kind {
	case KindText:
		return TextOperation(charwise.Identity(c.Len()))
	case KindLines:
		return LinesOperation(linewise.Identity(c.Len()))
	case KindSelection:
		return SelectionOperation(selection.Identity(c.Len()))
	}
	return Operation{Kind: c.Kind}
}

// Apply applies the operation to the content.
func Apply(c Content, op Operation) (Content, error) {
	if c.Kind != op.Kind {
		return Content{}, fmt.Errorf("apply %s to %s: %w", op.Kind, c.Kind, ErrKindMismatch)
	}

	switch op.Kind {
	case KindText:
		text, err := op.Text.Apply(c.Text)
		if err != nil {
			return Content{}, err
		}
		return TextContent(text), nil
	case KindLines:
		lines, err := op.Lines.Apply(c.Lines)
		if err != nil {
			return Content{}, err
		}
		return LinesContent(lines), nil
	case KindSelection:
		target, err := selection.Apply(*c.Target, op.Selection)
		if err != nil {
			return Content{}, err
		}
		return SelectionContent(target), nil
	}
	return Content{}, fmt.Errorf("apply %q: %w", op.Kind, ErrUnknownKind)
}

// Compose returns an operation equivalent to applying a then b.
func Compose(a, b Operation) (Operation, error) {
	if a.Kind != b.Kind {
		return Operation{}, fmt.Errorf("compose %s with %s: %w", a.Kind, b.Kind, ErrKindMismatch)
	}

	switch a.Kind {
	case KindText:
		op, err := charwise.Compose(a.Text, b.Text)
		if err != nil {
			return Operation{}, err
		}
		return TextOperation(op), nil
	case KindLines:
		op, err := linewise.Compose(a.Lines, b.Lines)
		if err != nil {
			return Operation{}, err
		}
		return LinesOperation(op), nil
	case KindSelection:
		op, err := selection.Compose(a.Selection, b.Selection)
		if err != nil {
			return Operation{}, err
		}
		return SelectionOperation(op), nil
	}
	return Operation{}, fmt.Errorf("compose %q: %w", a.Kind, ErrUnknownKind)
}

// ComposeAll composes ops in order, starting from the identity of a document
// of baseLen units.
func ComposeAll(kind Kind, baseLen int, ops ...Operation) (Operation, error) {
	var composed Operation
	switch kind {
	case KindText:
		composed = TextOperation(charwise.Identity(baseLen))
	case KindLines:
		composed = LinesOperation(linewise.Identity(baseLen))
	case KindSelection:
		composed = SelectionOperation(selection.Identity(baseLen))
	default:
		return Operation{}, fmt.Errorf("compose %q: %w", kind, ErrUnknownKind)
	}

	for _, op := range ops {
		var err error
		if composed, err = Compose(composed, op); err != nil {
			return Operation{}, err
		}
	}
	return composed, nil
}

// Transform takes two operations a and b that apply to the same document and
// returns a' and b' such that applying a then b' equals applying b then a'.
// b takes priority: it is the operation that is ordered first.
func Transform(a, b Operation) (Operation, Operation, error) {
	if a.Kind != b.Kind {
		return Operation{}, Operation{}, fmt.Errorf("transform %s against %s: %w", a.Kind, b.Kind, ErrKindMismatch)
	}

	switch a.Kind {
	case KindText:
		aPrime, bPrime, err := charwise.Transform(a.Text, b.Text)
		if err != nil {
			return Operation{}, Operation{}, err
		}
		return TextOperation(aPrime), TextOperation(bPrime), nil
	case KindLines:
		aPrime, bPrime, err := linewise.Transform(a.Lines, b.Lines)
		if err != nil {
			return Operation{}, Operation{}, err
		}
		return LinesOperation(aPrime), LinesOperation(bPrime), nil
	case KindSelection:
		aPrime, bPrime, err := selection.Transform(a.Selection, b.Selection)
		if err != nil {
			return Operation{}, Operation{}, err
		}
		return SelectionOperation(aPrime), SelectionOperation(bPrime), nil
	}
	return Operation{}, Operation{}, fmt.Errorf("transform %q: %w", a.Kind, ErrUnknownKind)
}

// Invert returns the operation that undoes op. c is the content op was
// applied to.
func Invert(c Content, op Operation) (Operation, error) {
	if c.Kind != op.Kind {
		return Operation{}, fmt.Errorf("invert %s against %s: %w", op.Kind, c.Kind, ErrKindMismatch)
	}

	switch op.Kind {
	case KindText:
		inverse, err := op.Text.Invert(c.Text)
		if err != nil {
			return Operation{}, err
		}
		return TextOperation(inverse), nil
	case KindLines:
		inverse, err := op.Lines.Invert(c.Lines)
		if err != nil {
			return Operation{}, err
		}
		return LinesOperation(inverse), nil
	case KindSelection:
		inverse, err := selection.Invert(*c.Target, op.Selection)
		if err != nil {
			return Operation{}, err
		}
		return SelectionOperation(inverse), nil
	}
	return Operation{}, fmt.Errorf("invert %q: %w", op.Kind, ErrUnknownKind)
}

// Diff returns an operation that replaces the text of c with text. Line
// based kinds diff line by line.
func Diff(c Content, text string) Operation {
	switch c.Kind {
	case KindText:
		return TextOperation(charwise.Diff(c.Text, text))
	case KindLines:
		return LinesOperation(linewise.Diff(c.Lines, linewise.SplitLines(text)))
	case KindSelection:
		return SelectionOperation(selection.Edit(linewise.Diff(c.Target.Lines, linewise.SplitLines(text))))
	}
	return Operation{Kind: c.Kind}
}
