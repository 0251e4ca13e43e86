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

package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
)

func TestUTF16(t *testing.T) {
	lines := []string{"a🌷b", "plain"}

	t.Run("round trip test", func(t *testing.T) {
		units := selection.Range(pos(0, 4), pos(1, 2))
		runes, err := selection.FromUTF16(lines, units)
		assert.NoError(t, err)
		assert.Equal(t, selection.Range(pos(0, 3), pos(1, 2)), runes)

		back, err := selection.ToUTF16(lines, runes)
		assert.NoError(t, err)
		assert.Equal(t, units, back)

		end, err := selection.FromUTF16(lines, selection.Cursor(pos(2, 0)))
		assert.NoError(t, err)
		assert.Equal(t, selection.Cursor(pos(2, 0)), end)
	})

	t.Run("invalid column test", func(t *testing.T) {
		_, err := selection.FromUTF16(lines, selection.Cursor(pos(0, 2)))
		assert.ErrorIs(t, err, charwise.ErrInvalidOffset)
		_, err = selection.FromUTF16(lines, selection.Cursor(pos(2, 1)))
		assert.ErrorIs(t, err, charwise.ErrInvalidOffset)
		_, err = selection.ToUTF16(lines, selection.Cursor(pos(3, 0)))
		assert.ErrorIs(t, err, charwise.ErrInvalidOffset)
	})

	t.Run("start and end test", func(t *testing.T) {
		backward := selection.Range(pos(1, 2), pos(0, 4))
		assert.Equal(t, pos(0, 4), backward.Start())
		assert.Equal(t, pos(1, 2), backward.End())

		forward := selection.Range(pos(0, 1), pos(0, 3))
		assert.Equal(t, pos(0, 1), forward.Start())
		assert.Equal(t, pos(0, 3), forward.End())
	})
}
