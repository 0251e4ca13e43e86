/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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

package pubsub_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/errors"
	"github.com/yorkie-team/otsync/server/backend/pubsub"
)

func TestPubSub(t *testing.T) {
	t.Run("publish subscribe test", func(t *testing.T) {
		pubSub := pubsub.New()
		id := types.NewID()
		event := types.SessionEvent{
			Type:      types.SessionChangedEvent,
			SessionID: id,
			Version:   3,
			Publisher: "alice",
		}

		ctx := context.Background()
		// subscribe the session by bob and alice
		subBob, err := pubSub.Subscribe(ctx, "bob", id, 0)
		assert.NoError(t, err)
		defer pubSub.Unsubscribe(ctx, id, subBob)

		subAlice, err := pubSub.Subscribe(ctx, "alice", id, 0)
		assert.NoError(t, err)
		defer pubSub.Unsubscribe(ctx, id, subAlice)

		assert.Equal(t, []string{"alice", "bob"}, pubSub.Subscribers(id))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := <-subBob.Events()
			assert.Equal(t, e, event)
		}()

		// publish the event to the session by alice
		pubSub.Publish(ctx, event)
		wg.Wait()

		select {
		case <-subAlice.Events():
			assert.Fail(t, "publisher must not receive its own event")
		default:
		}
	})

	t.Run("unsubscribe test", func(t *testing.T) {
		pubSub := pubsub.New()
		id := types.NewID()
		ctx := context.Background()

		sub, err := pubSub.Subscribe(ctx, "bob", id, 0)
		assert.NoError(t, err)
		pubSub.Unsubscribe(ctx, id, sub)

		_, ok := <-sub.Events()
		assert.False(t, ok)
		assert.False(t, sub.Publish(types.SessionEvent{SessionID: id}))
		assert.Empty(t, pubSub.Subscribers(id))
	})

	t.Run("subscription limit test", func(t *testing.T) {
		pubSub := pubsub.New()
		id := types.NewID()
		ctx := context.Background()

		_, err := pubSub.Subscribe(ctx, "bob", id, 1)
		assert.NoError(t, err)
		_, err = pubSub.Subscribe(ctx, "alice", id, 1)
		assert.ErrorIs(t, err, pubsub.ErrTooManySubscribers)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeFailedPrecondition))
	})
}
