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

// Package testcases contains testcases for database. It is used by database
// implementations to test their own implementations with the same testcases.
package testcases

import (
	"context"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/document"
	"github.com/yorkie-team/otsync/pkg/ot/charwise"
	"github.com/yorkie-team/otsync/pkg/sequencer"
	"github.com/yorkie-team/otsync/server/backend/database"
)

func newSessionInfo(t *testing.T, text string) (*database.SessionInfo, *sequencer.Server) {
	server, err := sequencer.NewWithText(document.KindText, text)
	require.NoError(t, err)

	info, err := database.NewSessionInfo(types.NewID(), server, gotime.Now().UTC().Truncate(gotime.Millisecond))
	require.NoError(t, err)
	return info, server
}

// RunCreateSessionInfoTest runs the CreateSessionInfo test for the given db.
func RunCreateSessionInfoTest(t *testing.T, db database.Database) {
	t.Run("create and find session test", func(t *testing.T) {
		ctx := context.Background()
		info, _ := newSessionInfo(t, "hello")

		_, err := db.FindSessionInfoByID(ctx, info.ID)
		assert.ErrorIs(t, err, database.ErrSessionNotFound)

		assert.NoError(t, db.CreateSessionInfo(ctx, info))
		assert.ErrorIs(t, db.CreateSessionInfo(ctx, info), database.ErrSessionAlreadyExists)

		found, err := db.FindSessionInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, info.ID, found.ID)
		assert.Equal(t, info.Kind, found.Kind)
		assert.Equal(t, info.Version, found.Version)
		assert.Equal(t, info.State, found.State)
		assert.True(t, info.CreatedAt.Equal(found.CreatedAt))

		server, err := found.Server()
		assert.NoError(t, err)
		assert.Equal(t, "hello", server.Latest().Content.String())
	})
}

// RunUpdateSessionInfoTest runs the UpdateSessionInfo test for the given db.
func RunUpdateSessionInfoTest(t *testing.T, db database.Database) {
	t.Run("update session test", func(t *testing.T) {
		ctx := context.Background()
		info, server := newSessionInfo(t, "ab")
		assert.NoError(t, db.CreateSessionInfo(ctx, info))

		_, err := server.Modify(server.Version(), document.TextOperation(charwise.New().Retain(2).Insert("c")))
		require.NoError(t, err)
		newer := info.DeepCopy()
		require.NoError(t, newer.SetServer(server, gotime.Now().UTC()))

		updated, err := db.UpdateSessionInfo(ctx, newer)
		assert.NoError(t, err)
		assert.True(t, updated)

		found, err := db.FindSessionInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, document.Version(2), found.Version)
		assert.True(t, info.CreatedAt.Equal(found.CreatedAt))

		// the older record arrives late and must not replace the newer one
		updated, err = db.UpdateSessionInfo(ctx, info)
		assert.NoError(t, err)
		assert.False(t, updated)

		found, err = db.FindSessionInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, document.Version(2), found.Version)
		restored, err := found.Server()
		assert.NoError(t, err)
		assert.Equal(t, "abc", restored.Latest().Content.String())
	})

	t.Run("update missing session test", func(t *testing.T) {
		info, _ := newSessionInfo(t, "ab")
		_, err := db.UpdateSessionInfo(context.Background(), info)
		assert.ErrorIs(t, err, database.ErrSessionNotFound)
	})
}

// RunFindSessionInfosTest runs the FindSessionInfos test for the given db.
// It expects a database without sessions.
func RunFindSessionInfosTest(t *testing.T, db database.Database) {
	t.Run("find session infos test", func(t *testing.T) {
		ctx := context.Background()

		var ids []types.ID
		for i := 0; i < 5; i++ {
			info, _ := newSessionInfo(t, "text")
			assert.NoError(t, db.CreateSessionInfo(ctx, info))
			ids = append(ids, info.ID)
		}

		infos, err := db.FindSessionInfos(ctx, 0)
		assert.NoError(t, err)
		assert.Len(t, infos, 5)
		for i, info := range infos {
			assert.Equal(t, ids[i], info.ID)
		}

		infos, err = db.FindSessionInfos(ctx, 3)
		assert.NoError(t, err)
		assert.Len(t, infos, 3)
		assert.Equal(t, ids[2], infos[2].ID)
	})
}
