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

package charwise

import "fmt"

// Compose returns an operation equivalent to applying a then b.
func Compose(a, b *Operation) (*Operation, error) {
	if a.targetLen != b.baseLen {
		return nil, fmt.Errorf("compose %d with %d: %w", a.targetLen, b.baseLen, ErrLengthMismatch)
	}

	composed := New()
	ia, ib := newIterator(a), newIterator(b)
	for ia.hasNext() || ib.hasNext() {
		if ia.hasNext() && ia.peekKind() == KindDelete {
			composed.Delete(ia.next(0).Count)
			continue
		}
		if ib.hasNext() && ib.peekKind() == KindInsert {
			composed.Insert(ib.next(0).Text)
			continue
		}
		if !ia.hasNext() || !ib.hasNext() {
			return nil, fmt.Errorf("compose: operations end unevenly: %w", ErrLengthMismatch)
		}

		n := min(ia.peekLen(), ib.peekLen())
		sa, sb := ia.next(n), ib.next(n)
		switch {
		case sa.Kind == KindRetain && sb.Kind == KindRetain:
			composed.Retain(n)
		case sa.Kind == KindRetain && sb.Kind == KindDelete:
			composed.Delete(n)
		case sa.Kind == KindInsert && sb.Kind == KindRetain:
			composed.Insert(sa.Text)
		case sa.Kind == KindInsert && sb.Kind == KindDelete:
			// the insertion is deleted again
		}
	}

	return composed, nil
}

// Transform takes two operations a and b that apply to the same document and
// returns a' and b' such that applying a then b' equals applying b then a'.
//
// b takes priority over a: when both insert at the same offset, b's text is
// placed first.
func Transform(a, b *Operation) (*Operation, *Operation, error) {
	if a.baseLen != b.baseLen {
		return nil, nil, fmt.Errorf("transform %d against %d: %w", a.baseLen, b.baseLen, ErrLengthMismatch)
	}

	aPrime, bPrime := New(), New()
	ia, ib := newIterator(a), newIterator(b)
	for ia.hasNext() || ib.hasNext() {
		if ib.hasNext() && ib.peekKind() == KindInsert {
			seg := ib.next(0)
			aPrime.Retain(seg.Count)
			bPrime.Insert(seg.Text)
			continue
		}
		if ia.hasNext() && ia.peekKind() == KindInsert {
			seg := ia.next(0)
			aPrime.Insert(seg.Text)
			bPrime.Retain(seg.Count)
			continue
		}
		if !ia.hasNext() || !ib.hasNext() {
			return nil, nil, fmt.Errorf("transform: operations end unevenly: %w", ErrLengthMismatch)
		}

		n := min(ia.peekLen(), ib.peekLen())
		sa, sb := ia.next(n), ib.next(n)
		switch {
		case sa.Kind == KindRetain && sb.Kind == KindRetain:
			aPrime.Retain(n)
			bPrime.Retain(n)
		case sa.Kind == KindDelete && sb.Kind == KindRetain:
			aPrime.Delete(n)
		case sa.Kind == KindRetain && sb.Kind == KindDelete:
			bPrime.Delete(n)
		case sa.Kind == KindDelete && sb.Kind == KindDelete:
			// both sides deleted the same span
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
