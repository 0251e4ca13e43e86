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
 */

// Package background runs the goroutines the backend starts on behalf of
// sessions, such as event fan-out, and waits for them on shutdown.
package background

import (
	"context"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/server/logging"
	"github.com/yorkie-team/otsync/server/profiling/prometheus"
)

// Task describes a goroutine run by Background.
type Task struct {
	// Type groups tasks in metrics, e.g. "publish-session-event".
	Type string

	// SessionID is the session the task works for, if any.
	SessionID types.ID
}

// String returns the name the task is logged with.
func (t Task) String() string {
	if t.SessionID == "" {
		return t.Type
	}
	return t.Type + "(" + t.SessionID.String() + ")"
}

type routineID int32

func (c *routineID) next() string {
	next := atomic.AddInt32((*int32)(c), 1)
	return "b" + strconv.Itoa(int(next))
}

// Background tracks the goroutines of session tasks.
type Background struct {
	// closing is closed once Close starts; no task is attached after it.
	closing chan struct{}

	// closeMu orders attaching against closing, so wg.Add never races
	// wg.Wait.
	closeMu sync.RWMutex
	wg      sync.WaitGroup

	routineID routineID
	metrics   *prometheus.Metrics
}

// New creates a new background service.
func New(metrics *prometheus.Metrics) *Background {
	return &Background{
		closing: make(chan struct{}),
		metrics: metrics,
	}
}

// AttachGoroutine runs f for task in a new goroutine. f gets a context
// carrying a logger named after the task. A panic in f is logged and
// counted without taking the server down. It returns false when the
// service is already closed and f was not run.
func (b *Background) AttachGoroutine(f func(ctx context.Context), task Task) bool {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	select {
	case <-b.closing:
		logging.DefaultLogger().Warnf("background closed, dropping %s", task)
		return false
	default:
	}

	fields := []logging.Field{logging.NewField("task", task.Type)}
	if task.SessionID != "" {
		fields = append(fields, logging.NewField("session", task.SessionID.String()))
	}
	logger := logging.New(b.routineID.next(), fields...)

	b.wg.Add(1)
	b.metrics.AddBackgroundGoroutines(task.Type)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Errorf("%s panicked: %v\n%s", task, p, debug.Stack())
				b.metrics.AddBackgroundPanics(task.Type)
			}
			b.metrics.RemoveBackgroundGoroutines(task.Type)
			b.wg.Done()
		}()
		f(logging.With(context.Background(), logger))
	}()
	return true
}

// Close stops accepting tasks and waits for the running ones.
func (b *Background) Close() {
	b.closeMu.Lock()
	close(b.closing)
	b.closeMu.Unlock()

	b.wg.Wait()
}
