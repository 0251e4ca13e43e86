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

package housekeeping

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yorkie-team/otsync/server/logging"
)

// ErrAlreadyStarted is returned when a task is registered after Start.
var ErrAlreadyStarted = errors.New("housekeeping already started")

type task struct {
	interval time.Duration
	run      func(ctx context.Context) error
}

// Housekeeping is the housekeeping service. It periodically runs the
// registered tasks until it is stopped.
type Housekeeping struct {
	Config *Config

	lock    sync.Mutex
	tasks   []task
	started bool
	wg      sync.WaitGroup

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// New creates a new housekeeping instance.
func New(conf *Config) (*Housekeeping, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	return &Housekeeping{
		Config: conf,

		ctx:        ctx,
		cancelFunc: cancelFunc,
	}, nil
}

// RegisterTask registers a task that runs every interval once started.
func (h *Housekeeping) RegisterTask(interval time.Duration, run func(ctx context.Context) error) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.started {
		return ErrAlreadyStarted
	}
	h.tasks = append(h.tasks, task{interval: interval, run: run})
	return nil
}

// Start starts the housekeeping service.
func (h *Housekeeping) Start() error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.started {
		return ErrAlreadyStarted
	}
	h.started = true

	for _, t := range h.tasks {
		h.wg.Add(1)
		go h.run(t)
	}
	return nil
}

// Stop stops the housekeeping service and waits for running tasks.
func (h *Housekeeping) Stop() error {
	h.cancelFunc()
	h.wg.Wait()

	return nil
}

// run is the housekeeping loop of a single task.
func (h *Housekeeping) run(t task) {
	defer h.wg.Done()

	for {
		select {
		case <-time.After(t.interval):
		case <-h.ctx.Done():
			return
		}

		if err := t.run(h.ctx); err != nil && h.ctx.Err() == nil {
			logging.From(h.ctx).Errorf("HSKP: %v", err)
		}
	}
}
