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

package sessions

import (
	"context"
	"errors"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/document"
	"github.com/yorkie-team/otsync/pkg/ot/charwise"
	"github.com/yorkie-team/otsync/pkg/sequencer"
	"github.com/yorkie-team/otsync/server/backend"
	"github.com/yorkie-team/otsync/server/backend/database"
	"github.com/yorkie-team/otsync/server/profiling/prometheus"
)

func newTestService(t *testing.T) *Service {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(&backend.Config{PersistTimeout: "5s"}, nil, nil, metrics)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})
	return NewService(be)
}

func appendText(baseLen int, text string) document.Operation {
	return document.TextOperation(charwise.New().Retain(baseLen).Insert(text))
}

// withinDeadline fails the test when f does not return in time.
func withinDeadline(t *testing.T, f func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	select {
	case <-done:
	case <-gotime.After(5 * gotime.Second):
		t.Fatal("session stayed locked")
	}
}

func TestPersist(t *testing.T) {
	ctx := context.Background()

	t.Run("encode failure keeps the accepted edit test", func(t *testing.T) {
		service := newTestService(t)
		id, _, err := service.Create(ctx, document.KindText, "ab")
		require.NoError(t, err)

		service.encode = func(types.ID, *sequencer.Server, gotime.Time) (*database.SessionInfo, error) {
			return nil, errors.New("encode failed")
		}
		patch, err := service.Modify(ctx, id, 1, appendText(2, "c"), "alice")
		require.NoError(t, err)
		assert.Equal(t, document.Version(2), patch.Version)

		snapshot, err := service.GetLatestState(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, "abc", snapshot.Content.String())

		// nothing was written, so the session is not evictable
		sess, ok := service.sessions.Get(id.String())
		require.True(t, ok)
		assert.Equal(t, int64(1), sess.persisted.Load())
		assert.Equal(t, 0, service.EvictIdle(ctx, 0, 10))

		stored, err := NewService(service.be).GetLatestState(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, document.Version(1), stored.Version)

		// the next edit writes the whole session
		service.encode = database.NewSessionInfo
		_, err = service.Modify(ctx, id, 2, appendText(3, "d"), "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(3), sess.persisted.Load())

		stored, err = NewService(service.be).GetLatestState(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, document.Version(3), stored.Version)
		assert.Equal(t, "abcd", stored.Content.String())
	})

	t.Run("panicking encode releases the session test", func(t *testing.T) {
		service := newTestService(t)
		id, _, err := service.Create(ctx, document.KindText, "ab")
		require.NoError(t, err)

		service.encode = func(types.ID, *sequencer.Server, gotime.Time) (*database.SessionInfo, error) {
			panic("encode")
		}
		assert.Panics(t, func() {
			_, _ = service.Modify(ctx, id, 1, appendText(2, "c"), "alice")
		})

		service.encode = database.NewSessionInfo
		withinDeadline(t, func() {
			snapshot, err := service.GetLatestState(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, "abc", snapshot.Content.String())

			_, err = service.Modify(ctx, id, 2, appendText(3, "d"), "alice")
			assert.NoError(t, err)
		})
	})
}
