/*
 * Copyright 2023 The Yorkie Authors. All rights reserved.
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

package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/api/types"
)

func TestValidation(t *testing.T) {
	t.Run("ValidateValue test", func(t *testing.T) {
		assert.NoError(t, ValidateValue("lines", "required,document_kind"))

		err := ValidateValue("tree", "required,document_kind")
		assert.Equal(t, "document_kind", err.(Violation).Tag)
		assert.Contains(t, err.(Violation).Description, "text, lines and selection")

		assert.NoError(t, ValidateValue(types.NewID().String(), "session_id"))

		err = ValidateValue("not-an-id", "session_id")
		assert.Equal(t, "session_id", err.(Violation).Tag)
	})

	t.Run("ValidateStruct test", func(t *testing.T) {
		err := ValidateStruct(types.CreateSessionRequest{Kind: "tree"})
		structError := err.(*StructError)
		assert.Len(t, structError.Violations, 1)
		assert.Equal(t, "Kind", structError.Violations[0].Field)

		assert.NoError(t, ValidateStruct(types.CreateSessionRequest{}))
		assert.NoError(t, ValidateStruct(types.CreateSessionRequest{Kind: "selection", Content: "a"}))

		err = ValidateStruct(types.SendOperationRequest{Version: 1})
		assert.Equal(t, "required", err.(*StructError).Violations[0].Tag)
	})

	t.Run("custom rule test", func(t *testing.T) {
		// register custom rule tag and validation function
		_ = RegisterValidation("custom", func(v FieldLevel) bool {
			return v.Field().String() == "custom"
		})

		// custom error message for custom rule
		myError := errors.New("custom error")
		_ = RegisterTranslation("custom", myError.Error())

		// validate value
		err := ValidateValue("custom-invalid-value", "required,custom")
		assert.NotNil(t, err, "value is must 'custom' string")
	})

	t.Run("tag and custom rule mix test", func(t *testing.T) {
		err := Validate(
			"invalid custom rule",
			[]any{
				"required",
				CustomRule{
					Tag: "custom",
					Func: func(v FieldLevel) bool {
						return v.Field().String() == "custom"
					},
				},
			},
		)
		assert.Equal(t, "custom", err.(Violation).Tag)

		err = Validate(
			"invalid custom rule",
			[]interface{}{
				"required",
				"min=3",
				"max=10",
			},
		)
		assert.Equal(t, "max", err.(Violation).Tag)
	})
}
