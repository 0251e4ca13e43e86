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

package sync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/locker"
	"github.com/yorkie-team/otsync/server/backend/sync"
)

func TestLockerManager(t *testing.T) {
	t.Run("lock and unlock test", func(t *testing.T) {
		manager := sync.New()
		key := sync.SessionKey(types.ID("0123456789abcdef01234567"))
		assert.Equal(t, "session-0123456789abcdef01234567", key.String())

		l := manager.Locker(key)
		l.Lock()
		assert.ErrorIs(t, manager.Locker(key).TryLock(), sync.ErrAlreadyLocked)
		assert.NoError(t, l.Unlock())

		assert.NoError(t, manager.Locker(key).TryLock())
		assert.NoError(t, manager.Locker(key).Unlock())
	})

	t.Run("readers share the lock test", func(t *testing.T) {
		manager := sync.New()
		key := sync.NewKey("shared")

		manager.Locker(key).RLock()
		manager.Locker(key).RLock()
		assert.ErrorIs(t, manager.Locker(key).TryLock(), sync.ErrAlreadyLocked)
		assert.NoError(t, manager.Locker(key).RUnlock())
		assert.NoError(t, manager.Locker(key).RUnlock())
	})

	t.Run("unlock without lock test", func(t *testing.T) {
		manager := sync.New()
		assert.ErrorIs(t, manager.Locker(sync.NewKey("missing")).Unlock(), locker.ErrNoSuchLock)
	})
}
