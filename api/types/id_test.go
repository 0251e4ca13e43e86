/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/api/types"
)

func TestID(t *testing.T) {
	t.Run("new ID test", func(t *testing.T) {
		id := types.NewID()
		assert.NoError(t, id.Validate())
		assert.Len(t, id.String(), 24)
		assert.NotEqual(t, id, types.NewID())

		b, err := id.Bytes()
		assert.NoError(t, err)
		assert.Equal(t, id, types.IDFromBytes(b))
	})

	t.Run("invalid ID test", func(t *testing.T) {
		assert.ErrorIs(t, types.ID("").Validate(), types.ErrInvalidID)
		assert.ErrorIs(t, types.ID("not-hex").Validate(), types.ErrInvalidID)
		assert.ErrorIs(t, types.ID("0123").Validate(), types.ErrInvalidID)
		assert.NoError(t, types.ID("0123456789abcdef01234567").Validate())
	})
}
