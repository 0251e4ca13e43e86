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

/*
Package locker provides named reader/writer locks, so that every session can
be locked on its own without a global lock.

If a lock with a given name does not exist when it is acquired, one is
created. Lock references are cleaned up once nothing holds or waits for them.
*/
package locker

import (
	"errors"
	"sync"
)

// ErrNoSuchLock is returned when the requested lock does not exist
var ErrNoSuchLock = errors.New("no such lock")

// Locker provides a locking mechanism based on the passed in reference name
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockCtr
}

// lockCtr is used by Locker to represent a lock with a given name.
type lockCtr struct {
	mu sync.RWMutex

	// refs is the number of callers holding or waiting for the lock. It is
	// only read and written under Locker.mu.
	refs int
}

// New creates a new Locker
func New() *Locker {
	return &Locker{
		locks: make(map[string]*lockCtr),
	}
}

// acquire returns the lock with the given name, counting the caller as a
// reference.
func (l *Locker) acquire(name string) *lockCtr {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locks == nil {
		l.locks = make(map[string]*lockCtr)
	}

	nameLock, exists := l.locks[name]
	if !exists {
		nameLock = &lockCtr{}
		l.locks[name] = nameLock
	}
	nameLock.refs++
	return nameLock
}

// release drops the caller's reference and returns the lock to unlock.
func (l *Locker) release(name string) (*lockCtr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nameLock, exists := l.locks[name]
	if !exists {
		return nil, ErrNoSuchLock
	}

	nameLock.refs--
	if nameLock.refs == 0 {
		delete(l.locks, name)
	}
	return nameLock, nil
}

// Lock locks the lock with the given name for writing.
func (l *Locker) Lock(name string) {
	l.acquire(name).mu.Lock()
}

// Unlock unlocks the lock with the given name for writing.
func (l *Locker) Unlock(name string) error {
	nameLock, err := l.release(name)
	if err != nil {
		return err
	}
	nameLock.mu.Unlock()
	return nil
}

// RLock locks the lock with the given name for reading.
func (l *Locker) RLock(name string) {
	l.acquire(name).mu.RLock()
}

// RUnlock unlocks the lock with the given name for reading.
func (l *Locker) RUnlock(name string) error {
	nameLock, err := l.release(name)
	if err != nil {
		return err
	}
	nameLock.mu.RUnlock()
	return nil
}

// TryLock locks the lock with the given name for writing if it is free.
func (l *Locker) TryLock(name string) bool {
	nameLock := l.acquire(name)
	if nameLock.mu.TryLock() {
		return true
	}

	_, _ = l.release(name)
	return false
}

// size returns the number of live locks.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
