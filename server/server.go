/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
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

// Package server provides the OTSync server which is the main entry point of
// the system. The server is responsible for starting the RPC server and the
// profiling server.
package server

import (
	"context"
	gosync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/yorkie-team/otsync/server/backend"
	"github.com/yorkie-team/otsync/server/logging"
	"github.com/yorkie-team/otsync/server/profiling"
	"github.com/yorkie-team/otsync/server/profiling/prometheus"
	"github.com/yorkie-team/otsync/server/rpc"
	"github.com/yorkie-team/otsync/server/sessions"
)

// OTSync is a server of OTSync.
// The server receives operations from clients, rebases them onto the
// history of the session and propagates the result to watchers.
type OTSync struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	sessions        *sessions.Service
	rpcServer       *rpc.Server
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of OTSync.
func New(conf *Config) (*OTSync, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(conf.Backend, conf.Mongo, conf.Housekeeping, metrics)
	if err != nil {
		return nil, err
	}

	service := sessions.NewService(be)
	if err := registerHousekeepingTasks(be, service); err != nil {
		return nil, err
	}
	rpcServer := rpc.NewServer(conf.RPC, be, service)

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	return &OTSync{
		conf:            conf,
		backend:         be,
		sessions:        service,
		rpcServer:       rpcServer,
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the server by opening the rpc port.
func (r *OTSync) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.backend.Start(); err != nil {
		return err
	}

	var g errgroup.Group
	if r.profilingServer != nil {
		g.Go(r.profilingServer.Start)
	}
	g.Go(r.rpcServer.Start)

	if err := g.Wait(); err != nil {
		r.rpcServer.Shutdown(false)
		if r.profilingServer != nil {
			r.profilingServer.Shutdown(false)
		}
		return err
	}

	logging.DefaultLogger().Infof("otsync server is running on %s", r.conf.RPCAddr())
	return nil
}

// Shutdown shuts down this OTSync server.
func (r *OTSync) Shutdown(graceful bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.shutdown {
		return nil
	}

	var g errgroup.Group
	g.Go(func() error {
		r.rpcServer.Shutdown(graceful)
		return nil
	})
	if r.profilingServer != nil {
		g.Go(func() error {
			r.profilingServer.Shutdown(graceful)
			return nil
		})
	}
	_ = g.Wait()

	if err := r.backend.Shutdown(); err != nil {
		return err
	}

	close(r.shutdownCh)
	r.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (r *OTSync) ShutdownCh() <-chan struct{} {
	return r.shutdownCh
}

// RPCAddr returns the address of the RPC.
func (r *OTSync) RPCAddr() string {
	return r.conf.RPCAddr()
}

// registerHousekeepingTasks registers the task evicting idle sessions.
func registerHousekeepingTasks(be *backend.Backend, service *sessions.Service) error {
	interval, err := be.Housekeeping.Config.ParseInterval()
	if err != nil {
		return err
	}
	idleTimeout, err := be.Housekeeping.Config.ParseIdleTimeout()
	if err != nil {
		return err
	}
	limit := be.Housekeeping.Config.CandidatesLimit

	return be.Housekeeping.RegisterTask(interval, func(ctx context.Context) error {
		service.EvictIdle(ctx, idleTimeout, limit)
		return nil
	})
}

// Sessions returns the session service. It is used for testing.
func (r *OTSync) Sessions() *sessions.Service {
	return r.sessions
}
