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

// iterator walks the segments of an operation. Retains, inserts and deletes
// are split on demand so that both sides of a compose or transform advance
// over the same number of lines. A modify always covers exactly one line.
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

func (it *iterator) peekLen() int {
	return it.segments[it.index].Count - it.offset
}

// take consumes up to n lines of the current segment. A non-positive n
// consumes the rest of it.
func (it *iterator) take(n int) Segment {
	seg := it.segments[it.index]
	remaining := seg.Count - it.offset
	if n <= 0 || n >= remaining {
		n = remaining
	}

	taken := Segment{Kind: seg.Kind, Count: n, Modify: seg.Modify}
	if seg.Kind == KindInsert {
		taken.Lines = seg.Lines[it.offset : it.offset+n]
	}

	if n == remaining {
		it.index++
		it.offset = 0
	} else {
		it.offset += n
	}
	return taken
}
