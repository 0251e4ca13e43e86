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

package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContext(t *testing.T) {
	t.Run("default logger test", func(t *testing.T) {
		assert.Same(t, DefaultLogger(), From(context.Background()))
		//nolint:staticcheck
		assert.Same(t, DefaultLogger(), From(nil))
	})

	t.Run("session field test", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		ctx := With(context.Background(), zap.New(core).Sugar())

		assert.Equal(t, ctx, WithSession(ctx, ""))

		From(WithSession(ctx, "6540ed5c4a2f9b0d1c3e7a81")).Info("modified")
		entries := logs.All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, "6540ed5c4a2f9b0d1c3e7a81", entries[0].ContextMap()["session"])
		}
	})
}
