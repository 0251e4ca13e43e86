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
	"fmt"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
)

// Compose returns an operation equivalent to applying a then b.
func Compose(a, b *Operation) (*Operation, error) {
	if a.targetLen != b.baseLen {
		return nil, fmt.Errorf("compose %d lines with %d: %w", a.targetLen, b.baseLen, ErrLengthMismatch)
	}

	composed := New()
	ia, ib := newIterator(a), newIterator(b)
	for ia.hasNext() || ib.hasNext() {
		if ia.hasNext() && ia.peekKind() == KindDelete {
			composed.DeleteLines(ia.take(0).Count)
			continue
		}
		if ib.hasNext() && ib.peekKind() == KindInsert {
			composed.InsertLines(ib.take(0).Lines...)
			continue
		}
		if !ia.hasNext() || !ib.hasNext() {
			return nil, fmt.Errorf("compose: operations end unevenly: %w", ErrLengthMismatch)
		}

		n := min(ia.peekLen(), ib.peekLen())
		sa, sb := ia.take(n), ib.take(n)
		switch sa.Kind {
		case KindRetain:
			switch sb.Kind {
			case KindRetain:
				composed.RetainLines(n)
			case KindDelete:
				composed.DeleteLines(n)
			case KindModify:
				composed.ModifyLine(sb.Modify)
			}
		case KindInsert:
			switch sb.Kind {
			case KindRetain:
				composed.InsertLines(sa.Lines...)
			case KindDelete:
				// the inserted lines are deleted again
			case KindModify:
				line, err := sb.Modify.Apply(sa.Lines[0])
				if err != nil {
					return nil, fmt.Errorf("compose inserted line: %w", err)
				}
				composed.InsertLines(line)
			}
		case KindModify:
			switch sb.Kind {
			case KindRetain:
				composed.ModifyLine(sa.Modify)
			case KindDelete:
				composed.DeleteLines(1)
			case KindModify:
				op, err := charwise.Compose(sa.Modify, sb.Modify)
				if err != nil {
					return nil, fmt.Errorf("compose modified line: %w", err)
				}
				composed.ModifyLine(op)
			}
		}
	}

	return composed, nil
}

// Transform takes two operations a and b that apply to the same document and
// returns a' and b' such that applying a then b' equals applying b then a'.
// b takes priority over a: lines both insert at the same place are ordered
// with b's first, and the same rule applies inside a line edited by both.
func Transform(a, b *Operation) (*Operation, *Operation, error) {
	if a.baseLen != b.baseLen {
		return nil, nil, fmt.Errorf("transform %d lines against %d: %w", a.baseLen, b.baseLen, ErrLengthMismatch)
	}

	aPrime, bPrime := New(), New()
	ia, ib := newIterator(a), newIterator(b)
	for ia.hasNext() || ib.hasNext() {
		if ib.hasNext() && ib.peekKind() == KindInsert {
			seg := ib.take(0)
			aPrime.RetainLines(seg.Count)
			bPrime.InsertLines(seg.Lines...)
			continue
		}
		if ia.hasNext() && ia.peekKind() == KindInsert {
			seg := ia.take(0)
			aPrime.InsertLines(seg.Lines...)
			bPrime.RetainLines(seg.Count)
			continue
		}
		if !ia.hasNext() || !ib.hasNext() {
			return nil, nil, fmt.Errorf("transform: operations end unevenly: %w", ErrLengthMismatch)
		}

		n := min(ia.peekLen(), ib.peekLen())
		sa, sb := ia.take(n), ib.take(n)
		switch sa.Kind {
		case KindRetain:
			switch sb.Kind {
			case KindRetain:
				aPrime.RetainLines(n)
				bPrime.RetainLines(n)
			case KindDelete:
				bPrime.DeleteLines(n)
			case KindModify:
				aPrime.RetainLines(1)
				bPrime.ModifyLine(sb.Modify)
			}
		case KindDelete:
			switch sb.Kind {
			case KindRetain, KindModify:
				aPrime.DeleteLines(n)
			case KindDelete:
				// both sides deleted the same lines
			}
		case KindModify:
			switch sb.Kind {
			case KindRetain:
				aPrime.ModifyLine(sa.Modify)
				bPrime.RetainLines(1)
			case KindDelete:
				bPrime.DeleteLines(1)
			case KindModify:
				opA, opB, err := charwise.Transform(sa.Modify, sb.Modify)
				if err != nil {
					return nil, nil, fmt.Errorf("transform modified line: %w", err)
				}
				aPrime.ModifyLine(opA)
				bPrime.ModifyLine(opB)
			}
		}
	}

	return aPrime, bPrime, nil
}

// ComposeAll composes the given operations in order. It returns the identity
// over baseLen when ops is empty.
func ComposeAll(baseLen int, ops ...*Operation) (*Operation, error) {
	composed := Identity(baseLen)
	for _, op := range ops {
		var err error
		if composed, err = Compose(composed, op); err != nil {
			return nil, err
		}
	}
	return composed, nil
}
