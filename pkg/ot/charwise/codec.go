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

import (
	"encoding/json"
	"fmt"
)

// segmentJSON is the wire form of a segment. Exactly one field is set.
type segmentJSON struct {
	Retain *int    `json:"retain,omitempty"`
	Insert *string `json:"insert,omitempty"`
	Delete *int    `json:"delete,omitempty"`
}

// MarshalJSON encodes the operation as a list of single-key objects, e.g.
// [{"retain":2},{"insert":"x"},{"delete":1}].
func (o *Operation) MarshalJSON() ([]byte, error) {
	segments := make([]segmentJSON, 0, len(o.segments))
	for _, seg := range o.segments {
		seg := seg
		switch seg.Kind {
		case KindRetain:
			segments = append(segments, segmentJSON{Retain: &seg.Count})
		case KindInsert:
			segments = append(segments, segmentJSON{Insert: &seg.Text})
		case KindDelete:
			segments = append(segments, segmentJSON{Delete: &seg.Count})
		}
	}
	return json.Marshal(segments)
}

// UnmarshalJSON decodes the form produced by MarshalJSON. Lengths that do
// not fit in an int are rejected.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var segments []segmentJSON
	if err := json.Unmarshal(data, &segments); err != nil {
		return fmt.Errorf("unmarshal text operation: %w", err)
	}

	decoded := New()
	for i, seg := range segments {
		set := 0
		if seg.Retain != nil {
			set++
		}
		if seg.Insert != nil {
			set++
		}
		if seg.Delete != nil {
			set++
		}
		if set != 1 {
			return fmt.Errorf("segment %d: %w", i, ErrInvalidSegment)
		}

		switch {
		case seg.Retain != nil:
			if *seg.Retain <= 0 {
				return fmt.Errorf("segment %d: retain %d: %w", i, *seg.Retain, ErrInvalidSegment)
			}
			decoded.Retain(*seg.Retain)
		case seg.Insert != nil:
			if *seg.Insert == "" {
				return fmt.Errorf("segment %d: empty insert: %w", i, ErrInvalidSegment)
			}
			decoded.Insert(*seg.Insert)
		case seg.Delete != nil:
			if *seg.Delete <= 0 {
				return fmt.Errorf("segment %d: delete %d: %w", i, *seg.Delete, ErrInvalidSegment)
			}
			decoded.Delete(*seg.Delete)
		}
	}
	if err := decoded.Validate(); err != nil {
		return fmt.Errorf("unmarshal text operation: %w", err)
	}

	*o = *decoded
	return nil
}
