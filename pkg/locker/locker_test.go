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
 *
 * This file was written with reference to moby/locker.
 *   https://github.com/moby/locker
 */

package locker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockerLock(t *testing.T) {
	l := New()
	l.Lock("test")

	chDone := make(chan struct{})
	go func() {
		l.Lock("test")
		close(chDone)
	}()

	select {
	case <-chDone:
		t.Fatal("lock should not have returned while it was still held")
	case <-time.After(50 * time.Millisecond):
	}

	assert.NoError(t, l.Unlock("test"))

	select {
	case <-chDone:
	case <-time.After(3 * time.Second):
		t.Fatalf("lock should have completed")
	}

	assert.NoError(t, l.Unlock("test"))
	assert.Equal(t, 0, l.size())
}

func TestLockerReaders(t *testing.T) {
	t.Run("readers share the lock test", func(t *testing.T) {
		l := New()
		l.RLock("session")
		l.RLock("session")
		assert.False(t, l.TryLock("session"))

		assert.NoError(t, l.RUnlock("session"))
		assert.False(t, l.TryLock("session"))

		assert.NoError(t, l.RUnlock("session"))
		assert.Equal(t, 0, l.size())
		assert.True(t, l.TryLock("session"))
		assert.NoError(t, l.Unlock("session"))
	})

	t.Run("writer waits for readers test", func(t *testing.T) {
		l := New()
		l.RLock("session")

		chDone := make(chan struct{})
		go func() {
			l.Lock("session")
			close(chDone)
		}()

		select {
		case <-chDone:
			t.Fatal("writer should wait for the reader")
		case <-time.After(50 * time.Millisecond):
		}

		assert.NoError(t, l.RUnlock("session"))
		select {
		case <-chDone:
		case <-time.After(3 * time.Second):
			t.Fatal("writer should have acquired the lock")
		}
		assert.NoError(t, l.Unlock("session"))
	})
}

func TestLockerUnlock(t *testing.T) {
	l := New()
	assert.ErrorIs(t, l.Unlock("missing"), ErrNoSuchLock)
	assert.ErrorIs(t, l.RUnlock("missing"), ErrNoSuchLock)

	l.Lock("test")
	assert.NoError(t, l.Unlock("test"))

	chDone := make(chan struct{})
	go func() {
		l.Lock("test")
		close(chDone)
	}()

	select {
	case <-chDone:
	case <-time.After(3 * time.Second):
		t.Fatalf("lock should not be blocked")
	}
}

func TestLockerConcurrency(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	for i := 0; i <= 1000; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				l.RLock("test")
				assert.NoError(t, l.RUnlock("test"))
				return
			}
			l.Lock("test")
			assert.NoError(t, l.Unlock("test"))
		}(i)
	}

	chDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(chDone)
	}()

	select {
	case <-chDone:
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for locks to complete")
	}

	// Since everything has unlocked this should not exist anymore
	assert.Equal(t, 0, l.size())
}

func TestTryLock(t *testing.T) {
	l := New()

	for i := 0; i < 2; i++ {
		assert.True(t, l.TryLock("test"))
		assert.False(t, l.TryLock("test"))
		assert.False(t, l.TryLock("test"))
		assert.NoError(t, l.Unlock("test"))
	}
	assert.Equal(t, 0, l.size())
}
