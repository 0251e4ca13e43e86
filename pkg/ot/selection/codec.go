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
	"encoding/json"
	"fmt"

	"github.com/yorkie-team/otsync/pkg/ot/linewise"
)

// UnmarshalJSON decodes an operation. A missing content edit decodes as the
// empty edit.
func (o *Operation) UnmarshalJSON(data []byte) error {
	type operation Operation
	var decoded operation
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshal selection operation: %w", err)
	}
	if decoded.Lines == nil {
		decoded.Lines = linewise.New()
	}

	*o = Operation(decoded)
	return nil
}

// UnmarshalJSON decodes a target, making sure the selections are never nil.
func (t *Target) UnmarshalJSON(data []byte) error {
	type target Target
	var decoded target
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshal selection target: %w", err)
	}
	if decoded.Selections == nil {
		decoded.Selections = Selections{}
	}

	*t = Target(decoded)
	return nil
}
