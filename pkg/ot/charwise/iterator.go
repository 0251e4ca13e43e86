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

// iterator walks the segments of an operation, splitting them on demand.
type iterator struct {
	segments []Segment
	index    int
	offset   int
}

func newIterator(op *Operation) *iterator {
	return &iterator{segments: op.segments}
}

func (it *iterator) hasNext() bool {
	return it.index < len(it.segments)
}

func (it *iterator) peekKind() SegmentKind {
	return it.segments[it.index].Kind
}

// peekLen returns the remaining count of the current segment.
func (it *iterator) peekLen() int {
	return it.segments[it.index].Count - it.offset
}

// next consumes up to n runes of the current segment. A non-positive n
// consumes the rest of it.
func (it *iterator) next(n int) Segment {
	seg := it.segments[it.index]
	remaining := seg.Count - it.offset
	if n <= 0 || n >= remaining {
		n = remaining
	}

	taken := Segment{Kind: seg.Kind, Count: n}
	if seg.Kind == KindInsert {
		if it.offset == 0 && n == seg.Count {
			taken.Text = seg.Text
		} else {
			taken.Text = string([]rune(seg.Text)[it.offset : it.offset+n])
		}
	}

	if n == remaining {
		it.index++
		it.offset = 0
	} else {
		it.offset += n
	}
	return taken
}
