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

// Package future provides a single-assignment value that one goroutine
// settles and any number of goroutines wait on.
package future

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotReady is returned by Poll before the future is settled.
	ErrNotReady = errors.New("future not ready")

	// ErrAlreadySettled is the panic value of a second settlement.
	ErrAlreadySettled = errors.New("future already settled")
)

// Future is a value that is settled at most once, either with a value or an
// error.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// New creates a new unsettled future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn on a new goroutine and returns a future settled with its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := New[T]()
	go func() {
		value, err := fn()
		if err != nil {
			f.Reject(err)
			return
		}
		f.Resolve(value)
	}()
	return f
}

// Resolve settles the future with the given value. It panics if the future
// is already settled.
func (f *Future[T]) Resolve(value T) {
	f.settle(value, nil)
}

// Reject settles the future with the given error. It panics if the future is
// already settled.
func (f *Future[T]) Reject(err error) {
	var zero T
	f.settle(zero, err)
}

func (f *Future[T]) settle(value T, err error) {
	settled := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		settled = true
		close(f.done)
	})

	if !settled {
		panic(ErrAlreadySettled)
	}
}

// Done returns a channel that is closed once the future is settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Poll returns the settled value without blocking. It returns ErrNotReady if
// the future is not settled yet.
func (f *Future[T]) Poll() (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
		var zero T
		return zero, ErrNotReady
	}
}

// Await blocks until the future is settled or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
