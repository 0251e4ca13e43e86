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

package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/pkg/document"
	"github.com/yorkie-team/otsync/pkg/ot/charwise"
	"github.com/yorkie-team/otsync/pkg/ot/linewise"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
)

func TestKind(t *testing.T) {
	for _, kind := range document.Kinds() {
		parsed, err := document.ParseKind(string(kind))
		assert.NoError(t, err)
		assert.Equal(t, kind, parsed)

		content, err := document.NewContent(kind)
		assert.NoError(t, err)
		assert.NoError(t, content.Validate())
		assert.Equal(t, 0, content.Len())
		assert.True(t, document.Identity(content).IsNoop())
	}

	_, err := document.ParseKind("tree")
	assert.ErrorIs(t, err, document.ErrUnknownKind)
	_, err = document.NewContent("tree")
	assert.ErrorIs(t, err, document.ErrUnknownKind)
}

func TestAlgebra(t *testing.T) {
	t.Run("text test", func(t *testing.T) {
		content := document.TextContent("ab")
		a := document.TextOperation(charwise.New().Retain(1).Insert("X").Retain(1))
		b := document.TextOperation(charwise.New().Delete(1).Retain(1))

		aPrime, bPrime, err := document.Transform(a, b)
		assert.NoError(t, err)

		afterA, err := document.Apply(content, a)
		assert.NoError(t, err)
		left, err := document.Apply(afterA, bPrime)
		assert.NoError(t, err)

		afterB, err := document.Apply(content, b)
		assert.NoError(t, err)
		right, err := document.Apply(afterB, aPrime)
		assert.NoError(t, err)

		assert.Equal(t, "Xb", left.String())
		assert.Equal(t, left, right)

		composed, err := document.Compose(a, bPrime)
		assert.NoError(t, err)
		direct, err := document.Apply(content, composed)
		assert.NoError(t, err)
		assert.Equal(t, left, direct)

		inverse, err := document.Invert(content, a)
		assert.NoError(t, err)
		restored, err := document.Apply(afterA, inverse)
		assert.NoError(t, err)
		assert.Equal(t, content, restored)
	})

	t.Run("lines test", func(t *testing.T) {
		content := document.LinesContent([]string{"a", "b"})
		op := document.LinesOperation(linewise.New().RetainLines(1).InsertLines("c").RetainLines(1))
		applied, err := document.Apply(content, op)
		assert.NoError(t, err)
		assert.Equal(t, "a\nc\nb", applied.String())

		all, err := document.ComposeAll(document.KindLines, 2, op, document.Diff(applied, "a\nc"))
		assert.NoError(t, err)
		final, err := document.Apply(content, all)
		assert.NoError(t, err)
		assert.Equal(t, "a\nc", final.String())
	})

	t.Run("selection test", func(t *testing.T) {
		content := document.SelectionContent(selection.NewTarget([]string{"abc"}))
		op := document.SelectionOperation(selection.Select(*content.Target, selection.Selections{
			"alice": {selection.Cursor(selection.Position{Line: 0, Column: 2})},
		}))
		applied, err := document.Apply(content, op)
		assert.NoError(t, err)
		assert.Equal(t, "abc", applied.String())
		assert.Len(t, applied.Selections(), 1)
		assert.Empty(t, content.Selections())
	})

	t.Run("kind mismatch test", func(t *testing.T) {
		text := document.TextOperation(charwise.Identity(1))
		lines := document.LinesOperation(linewise.Identity(1))

		_, err := document.Apply(document.TextContent("a"), lines)
		assert.ErrorIs(t, err, document.ErrKindMismatch)
		_, err = document.Compose(text, lines)
		assert.ErrorIs(t, err, document.ErrKindMismatch)
		_, _, err = document.Transform(text, lines)
		assert.ErrorIs(t, err, document.ErrKindMismatch)
		_, err = document.Invert(document.TextContent("a"), lines)
		assert.ErrorIs(t, err, document.ErrKindMismatch)
	})

	t.Run("length mismatch test", func(t *testing.T) {
		_, err := document.Apply(document.TextContent("abc"), document.TextOperation(charwise.Identity(1)))
		assert.ErrorIs(t, err, document.ErrLengthMismatch)
	})
}

func TestCodec(t *testing.T) {
	t.Run("operation test", func(t *testing.T) {
		op := document.TextOperation(charwise.New().Retain(1).Insert("x"))
		data, err := json.Marshal(op)
		assert.NoError(t, err)
		assert.Equal(t, `{"kind":"text","text":[{"retain":1},{"insert":"x"}]}`, string(data))

		var decoded document.Operation
		assert.NoError(t, json.Unmarshal(data, &decoded))
		assert.NoError(t, decoded.Validate())
		assert.True(t, op.Text.Equal(decoded.Text))
	})

	t.Run("validate test", func(t *testing.T) {
		var op document.Operation
		assert.NoError(t, json.Unmarshal([]byte(`{"kind":"lines"}`), &op))
		assert.ErrorIs(t, op.Validate(), document.ErrMissingValue)

		assert.NoError(t, json.Unmarshal([]byte(`{"kind":"tree"}`), &op))
		assert.ErrorIs(t, op.Validate(), document.ErrUnknownKind)

		content := document.Content{Kind: document.KindSelection}
		assert.ErrorIs(t, content.Validate(), document.ErrMissingValue)
	})

	t.Run("snapshot test", func(t *testing.T) {
		snapshot := document.Snapshot{Version: 3, Content: document.TextContent("hi")}
		data, err := json.Marshal(snapshot)
		assert.NoError(t, err)
		assert.Equal(t, `{"version":3,"content":{"kind":"text","text":"hi"}}`, string(data))

		v, err := document.ParseVersion("42")
		assert.NoError(t, err)
		assert.Equal(t, document.Version(43), v.Next())
		assert.Equal(t, "42", v.String())
	})
}
