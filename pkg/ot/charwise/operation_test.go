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

package charwise_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/otsync/pkg/ot/charwise"
)

const alphabet = "abcdeé한글🌷\n"

func randomString(r *rand.Rand, n int) string {
	letters := []rune(alphabet)
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = letters[r.Intn(len(letters))]
	}
	return string(runes)
}

func randomOperation(r *rand.Rand, doc string) *charwise.Operation {
	op := charwise.New()
	remaining := len([]rune(doc))
	for remaining > 0 {
		n := 1 + r.Intn(remaining)
		switch r.Intn(3) {
		case 0:
			op.Retain(n)
			remaining -= n
		case 1:
			op.Insert(randomString(r, 1+r.Intn(4)))
		case 2:
			op.Delete(n)
			remaining -= n
		}
	}
	if r.Intn(2) == 0 {
		op.Insert(randomString(r, 1+r.Intn(4)))
	}
	return op
}

func TestOperation(t *testing.T) {
	t.Run("builder coalescing test", func(t *testing.T) {
		op := charwise.New().Retain(1).Retain(2).Insert("a").Insert("b").Delete(1).Delete(2)
		assert.Equal(t, []charwise.Segment{
			{Kind: charwise.KindRetain, Count: 3},
			{Kind: charwise.KindInsert, Count: 2, Text: "ab"},
			{Kind: charwise.KindDelete, Count: 3},
		}, op.Segments())
		assert.Equal(t, 6, op.BaseLen())
		assert.Equal(t, 5, op.TargetLen())
	})

	t.Run("insert before delete canonical form test", func(t *testing.T) {
		a := charwise.New().Retain(1).Delete(2).Insert("x")
		b := charwise.New().Retain(1).Insert("x").Delete(2)
		assert.True(t, a.Equal(b))
		assert.Equal(t, `retain(1) insert("x") delete(2)`, a.String())

		c := charwise.New().Insert("x").Delete(1).Insert("y")
		assert.Equal(t, `insert("xy") delete(1)`, c.String())
	})

	t.Run("zero length segments are ignored test", func(t *testing.T) {
		op := charwise.New().Retain(0).Insert("").Delete(0)
		assert.Empty(t, op.Segments())
		assert.True(t, op.IsNoop())
		assert.True(t, charwise.Identity(3).IsNoop())
	})

	t.Run("apply test", func(t *testing.T) {
		op := charwise.New().Retain(6).Delete(5).Insert("Yorkie")
		doc, err := op.Apply("Hello World")
		assert.NoError(t, err)
		assert.Equal(t, "Hello Yorkie", doc)

		emoji := charwise.New().Retain(1).Insert("🎁").Retain(1)
		doc, err = emoji.Apply("🌷한")
		assert.NoError(t, err)
		assert.Equal(t, "🌷🎁한", doc)
	})

	t.Run("apply length mismatch test", func(t *testing.T) {
		_, err := charwise.New().Retain(3).Apply("ab")
		assert.ErrorIs(t, err, charwise.ErrLengthMismatch)

		_, err = charwise.New().Delete(1).Apply("ab")
		assert.ErrorIs(t, err, charwise.ErrLengthMismatch)
	})

	t.Run("invert test", func(t *testing.T) {
		r := rand.New(rand.NewSource(7))
		for i := 0; i < 200; i++ {
			doc := randomString(r, r.Intn(12))
			op := randomOperation(r, doc)

			applied, err := op.Apply(doc)
			require.NoError(t, err)
			inverse, err := op.Invert(doc)
			require.NoError(t, err)
			restored, err := inverse.Apply(applied)
			require.NoError(t, err)
			assert.Equal(t, doc, restored)
		}
	})

	t.Run("transform position test", func(t *testing.T) {
		op := charwise.New().Retain(2).Insert("xx").Retain(1).Delete(3).Retain(2)
		tests := []struct {
			pos      int
			expected int
		}{
			{0, 0},
			{1, 1},
			{2, 4}, // at an insertion point: moved after the text
			{3, 5},
			{4, 5}, // inside the deletion
			{5, 5},
			{6, 5},
			{7, 6},
			{8, 7},
		}
		for _, test := range tests {
			assert.Equal(t, test.expected, op.TransformPosition(test.pos), "pos %d", test.pos)
		}
	})
}

func TestCompose(t *testing.T) {
	t.Run("compose test", func(t *testing.T) {
		a := charwise.New().Retain(1).Insert("X").Retain(1)
		b := charwise.New().Retain(2).Delete(1)
		composed, err := charwise.Compose(a, b)
		assert.NoError(t, err)

		doc, err := composed.Apply("ab")
		assert.NoError(t, err)
		assert.Equal(t, "aX", doc)
	})

	t.Run("compose length mismatch test", func(t *testing.T) {
		_, err := charwise.Compose(charwise.Identity(2), charwise.Identity(3))
		assert.ErrorIs(t, err, charwise.ErrLengthMismatch)
	})

	t.Run("compose matches sequential apply test", func(t *testing.T) {
		r := rand.New(rand.NewSource(42))
		for i := 0; i < 300; i++ {
			doc := randomString(r, r.Intn(15))
			a := randomOperation(r, doc)
			afterA, err := a.Apply(doc)
			require.NoError(t, err)
			b := randomOperation(r, afterA)
			afterB, err := b.Apply(afterA)
			require.NoError(t, err)

			ab, err := charwise.Compose(a, b)
			require.NoError(t, err)
			applied, err := ab.Apply(doc)
			require.NoError(t, err)
			assert.Equal(t, afterB, applied)
		}
	})

	t.Run("compose associativity test", func(t *testing.T) {
		r := rand.New(rand.NewSource(11))
		for i := 0; i < 200; i++ {
			doc := randomString(r, r.Intn(10))
			a := randomOperation(r, doc)
			d1, _ := a.Apply(doc)
			b := randomOperation(r, d1)
			d2, _ := b.Apply(d1)
			c := randomOperation(r, d2)

			ab, err := charwise.Compose(a, b)
			require.NoError(t, err)
			left, err := charwise.Compose(ab, c)
			require.NoError(t, err)

			bc, err := charwise.Compose(b, c)
			require.NoError(t, err)
			right, err := charwise.Compose(a, bc)
			require.NoError(t, err)

			assert.True(t, left.Equal(right), "%s != %s", left, right)
		}
	})

	t.Run("identity test", func(t *testing.T) {
		op := charwise.New().Retain(2).Insert("q").Delete(1)
		left, err := charwise.Compose(charwise.Identity(3), op)
		assert.NoError(t, err)
		assert.True(t, op.Equal(left))

		right, err := charwise.Compose(op, charwise.Identity(3))
		assert.NoError(t, err)
		assert.True(t, op.Equal(right))

		all, err := charwise.ComposeAll(4)
		assert.NoError(t, err)
		assert.True(t, all.Equal(charwise.Identity(4)))
	})
}

func TestTransform(t *testing.T) {
	t.Run("convergence test", func(t *testing.T) {
		r := rand.New(rand.NewSource(2024))
		for i := 0; i < 500; i++ {
			doc := randomString(r, r.Intn(15))
			a := randomOperation(r, doc)
			b := randomOperation(r, doc)

			aPrime, bPrime, err := charwise.Transform(a, b)
			require.NoError(t, err)

			afterA, _ := a.Apply(doc)
			left, err := bPrime.Apply(afterA)
			require.NoError(t, err)

			afterB, _ := b.Apply(doc)
			right, err := aPrime.Apply(afterB)
			require.NoError(t, err)

			assert.Equal(t, left, right)
		}
	})

	t.Run("concurrent insert tie-break test", func(t *testing.T) {
		a := charwise.New().Retain(1).Insert("A").Retain(1)
		b := charwise.New().Retain(1).Insert("B").Retain(1)
		aPrime, bPrime, err := charwise.Transform(a, b)
		assert.NoError(t, err)

		afterB, _ := b.Apply("xy")
		doc, err := aPrime.Apply(afterB)
		assert.NoError(t, err)
		assert.Equal(t, "xBAy", doc)

		afterA, _ := a.Apply("xy")
		doc, err = bPrime.Apply(afterA)
		assert.NoError(t, err)
		assert.Equal(t, "xBAy", doc)
	})

	t.Run("overlapping delete test", func(t *testing.T) {
		a := charwise.New().Retain(1).Delete(3).Retain(1)
		b := charwise.New().Retain(2).Delete(3)
		aPrime, bPrime, err := charwise.Transform(a, b)
		assert.NoError(t, err)

		afterB, _ := b.Apply("abcde")
		doc, _ := aPrime.Apply(afterB)
		assert.Equal(t, "a", doc)

		afterA, _ := a.Apply("abcde")
		doc, _ = bPrime.Apply(afterA)
		assert.Equal(t, "a", doc)
	})

	t.Run("transform length mismatch test", func(t *testing.T) {
		_, _, err := charwise.Transform(charwise.Identity(1), charwise.Identity(2))
		assert.ErrorIs(t, err, charwise.ErrLengthMismatch)
	})
}

func TestCodec(t *testing.T) {
	t.Run("marshal test", func(t *testing.T) {
		op := charwise.New().Retain(2).Insert("한글").Delete(1)
		data, err := json.Marshal(op)
		assert.NoError(t, err)
		assert.Equal(t, `[{"retain":2},{"insert":"한글"},{"delete":1}]`, string(data))

		decoded := charwise.New()
		assert.NoError(t, json.Unmarshal(data, decoded))
		assert.True(t, op.Equal(decoded))
		assert.Equal(t, op.BaseLen(), decoded.BaseLen())
		assert.Equal(t, op.TargetLen(), decoded.TargetLen())
	})

	t.Run("invalid segment test", func(t *testing.T) {
		for _, data := range []string{
			`[{}]`,
			`[{"retain":1,"delete":1}]`,
			`[{"retain":0}]`,
			`[{"delete":-1}]`,
			`[{"insert":""}]`,
		} {
			err := json.Unmarshal([]byte(data), charwise.New())
			assert.ErrorIs(t, err, charwise.ErrInvalidSegment, data)
		}
	})

	t.Run("overflowing lengths test", func(t *testing.T) {
		decoded := charwise.New()
		err := json.Unmarshal([]byte(`[{"retain":9223372036854775807},{"delete":9223372036854775807},{"retain":4}]`), decoded)
		assert.ErrorIs(t, err, charwise.ErrTooLong)
		assert.Equal(t, 0, decoded.BaseLen())

		err = json.Unmarshal([]byte(`[{"retain":9223372036854775807},{"retain":9223372036854775807}]`), decoded)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	assert.NoError(t, charwise.New().Retain(2).Insert("한글").Delete(1).Validate())
	assert.NoError(t, charwise.New().Validate())

	err := charwise.New().Retain(1).Insert("\xff").Validate()
	assert.ErrorIs(t, err, charwise.ErrInvalidText)

	_, err = charwise.Identity(1).Apply("\xff")
	assert.ErrorIs(t, err, charwise.ErrInvalidText)
	_, err = charwise.Identity(1).Invert("\xfe")
	assert.ErrorIs(t, err, charwise.ErrInvalidText)
}

func TestUTF16(t *testing.T) {
	doc := "a🌷b"

	t.Run("offset conversion test", func(t *testing.T) {
		tests := []struct {
			units int
			runes int
		}{
			{0, 0}, {1, 1}, {3, 2}, {4, 3},
		}
		for _, test := range tests {
			runes, err := charwise.FromUTF16Offset(doc, test.units)
			assert.NoError(t, err)
			assert.Equal(t, test.runes, runes)

			units, err := charwise.ToUTF16Offset(doc, test.runes)
			assert.NoError(t, err)
			assert.Equal(t, test.units, units)
		}
	})

	t.Run("invalid offset test", func(t *testing.T) {
		_, err := charwise.FromUTF16Offset(doc, 2)
		assert.ErrorIs(t, err, charwise.ErrInvalidOffset)
		_, err = charwise.FromUTF16Offset(doc, 5)
		assert.ErrorIs(t, err, charwise.ErrInvalidOffset)
		_, err = charwise.ToUTF16Offset(doc, 4)
		assert.ErrorIs(t, err, charwise.ErrInvalidOffset)
		_, err = charwise.FromUTF16Offset(doc, -1)
		assert.ErrorIs(t, err, charwise.ErrInvalidOffset)
	})
}

func TestDiff(t *testing.T) {
	tests := []struct{ from, to string }{
		{"", "hello"},
		{"hello", ""},
		{"Hello World", "Hello Yorkie"},
		{"fn main() {}", "fn main() {\n    println!(\"🌷\");\n}"},
	}
	for _, test := range tests {
		op := charwise.Diff(test.from, test.to)
		doc, err := op.Apply(test.from)
		assert.NoError(t, err)
		assert.Equal(t, test.to, doc)
	}
}
