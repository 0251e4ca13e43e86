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

// Package cmap provides a concurrent map keyed by strings.
package cmap

import (
	"hash/fnv"
	"sort"
	"sync"
)

// numShards is the number of shards.
const numShards = 32

type shard[V any] struct {
	sync.RWMutex
	items map[string]V
}

// Map is a concurrent map that is safe for multiple routines. Keys are spread
// over shards to reduce lock contention.
type Map[V any] struct {
	shards [numShards]shard[V]
}

// New creates a new Map.
func New[V any]() *Map[V] {
	m := &Map[V]{}
	for i := 0; i < numShards; i++ {
		m.shards[i].items = make(map[string]V)
	}
	return m
}

func (m *Map[V]) shardForKey(key string) *shard[V] {
	hash := fnv.New32a()
	// hash.Write never returns an error.
	_, _ = hash.Write([]byte(key))
	return &m.shards[hash.Sum32()%numShards]
}

// Set sets a key-value pair.
func (m *Map[V]) Set(key string, value V) {
	shard := m.shardForKey(key)

	shard.Lock()
	defer shard.Unlock()

	shard.items[key] = value
}

// Get retrieves a value from the map.
func (m *Map[V]) Get(key string) (V, bool) {
	shard := m.shardForKey(key)

	shard.RLock()
	defer shard.RUnlock()

	value, exists := shard.items[key]
	return value, exists
}

// GetOrInsert returns the value of key, inserting the value returned by
// create if the key is missing. create runs under the shard lock, and when it
// fails nothing is inserted. The boolean reports whether the value was
// already present.
func (m *Map[V]) GetOrInsert(key string, create func() (V, error)) (V, bool, error) {
	shard := m.shardForKey(key)

	shard.Lock()
	defer shard.Unlock()

	if value, exists := shard.items[key]; exists {
		return value, true, nil
	}

	value, err := create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	shard.items[key] = value
	return value, false, nil
}

// Delete removes a value from the map and reports whether it was present.
func (m *Map[V]) Delete(key string) bool {
	shard := m.shardForKey(key)

	shard.Lock()
	defer shard.Unlock()

	_, exists := shard.items[key]
	delete(shard.items, key)
	return exists
}

// Len returns the number of items in the map
func (m *Map[V]) Len() int {
	count := 0

	for i := 0; i < numShards; i++ {
		shard := &m.shards[i]

		shard.RLock()
		count += len(shard.items)
		shard.RUnlock()
	}

	return count
}

// Keys returns all keys in the map in sorted order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0)

	for i := 0; i < numShards; i++ {
		shard := &m.shards[i]

		shard.RLock()
		for k := range shard.items {
			keys = append(keys, k)
		}
		shard.RUnlock()
	}

	sort.Strings(keys)
	return keys
}
