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

// Package pubsub delivers session events to the watchers of a session on a
// single server.
package pubsub

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/errors"
	"github.com/yorkie-team/otsync/server/logging"
)

// ErrTooManySubscribers is returned when the subscription limit is exceeded.
var ErrTooManySubscribers = errors.FailedPrecond("subscription limit exceeded")

// PubSub is the memory implementation of PubSub, used for single server.
type PubSub struct {
	mu      sync.RWMutex
	subsMap map[types.ID]map[string]*Subscription
}

// New creates an instance of PubSub.
func New() *PubSub {
	return &PubSub{
		subsMap: make(map[types.ID]map[string]*Subscription),
	}
}

// Subscribe subscribes to the events of the given session. A limit of zero
// means no limit.
func (m *PubSub) Subscribe(
	ctx context.Context,
	subscriber string,
	sessionID types.ID,
	limit int,
) (*Subscription, error) {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Subscribe(%s,%s) Start`, sessionID, subscriber)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	subs, ok := m.subsMap[sessionID]
	if !ok {
		subs = make(map[string]*Subscription)
		m.subsMap[sessionID] = subs
	}
	if limit > 0 && len(subs) >= limit {
		return nil, fmt.Errorf("%d subscribers allowed per session: %w", limit, ErrTooManySubscribers)
	}

	sub := NewSubscription(subscriber)
	subs[sub.ID()] = sub

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Subscribe(%s,%s) End`, sessionID, subscriber)
	}
	return sub, nil
}

// Unsubscribe unsubscribes the given subscription and closes it.
func (m *PubSub) Unsubscribe(
	ctx context.Context,
	sessionID types.ID,
	sub *Subscription,
) {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Unsubscribe(%s,%s) Start`, sessionID, sub.Subscriber())
	}

	m.mu.Lock()
	if subs, ok := m.subsMap[sessionID]; ok {
		delete(subs, sub.ID())
		if len(subs) == 0 {
			delete(m.subsMap, sessionID)
		}
	}
	m.mu.Unlock()

	sub.Close()

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Unsubscribe(%s,%s) End`, sessionID, sub.Subscriber())
	}
}

// Publish publishes the given event to the watchers of its session. The
// publisher does not receive its own events.
func (m *PubSub) Publish(ctx context.Context, event types.SessionEvent) {
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Publish(%s,%s) Start`, event.SessionID, event.Publisher)
	}

	m.mu.RLock()
	var targets []*Subscription
	for _, sub := range m.subsMap[event.SessionID] {
		if event.Publisher != "" && sub.Subscriber() == event.Publisher {
			continue
		}
		targets = append(targets, sub)
	}
	m.mu.RUnlock()

	for _, sub := range targets {
		if ok := sub.Publish(event); !ok {
			logging.From(ctx).Warnf(
				`Publish(%s,%s) to %s timeout or closed`,
				event.SessionID,
				event.Publisher,
				sub.Subscriber(),
			)
		}
	}

	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf(`Publish(%s,%s) End`, event.SessionID, event.Publisher)
	}
}

// Subscribers returns the subscribers of the given session in sorted order.
func (m *PubSub) Subscribers(sessionID types.ID) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var subscribers []string
	for _, sub := range m.subsMap[sessionID] {
		subscribers = append(subscribers, sub.Subscriber())
	}
	sort.Strings(subscribers)
	return subscribers
}
