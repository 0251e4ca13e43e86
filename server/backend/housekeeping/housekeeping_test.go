/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

package housekeeping_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/otsync/server/backend/housekeeping"
)

func TestHousekeeping(t *testing.T) {
	conf := &housekeeping.Config{Interval: "10ms", IdleTimeout: "1m", CandidatesLimit: 10}

	t.Run("run registered task test", func(t *testing.T) {
		h, err := housekeeping.New(conf)
		require.NoError(t, err)

		var runs atomic.Int32
		require.NoError(t, h.RegisterTask(5*time.Millisecond, func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))
		require.NoError(t, h.Start())

		assert.Eventually(t, func() bool {
			return runs.Load() >= 2
		}, time.Second, 5*time.Millisecond)
		assert.NoError(t, h.Stop())

		stopped := runs.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, stopped, runs.Load())
	})

	t.Run("register after start test", func(t *testing.T) {
		h, err := housekeeping.New(conf)
		require.NoError(t, err)
		require.NoError(t, h.Start())
		defer func() { assert.NoError(t, h.Stop()) }()

		err = h.RegisterTask(time.Second, func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, housekeeping.ErrAlreadyStarted)
		assert.ErrorIs(t, h.Start(), housekeeping.ErrAlreadyStarted)
	})

	t.Run("invalid config test", func(t *testing.T) {
		_, err := housekeeping.New(&housekeeping.Config{Interval: "1s", IdleTimeout: "1m"})
		assert.Error(t, err)
	})
}
