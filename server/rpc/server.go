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

// Package rpc provides the HTTP server that serves the realtime sessions.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"

	"github.com/yorkie-team/otsync/server/backend"
	"github.com/yorkie-team/otsync/server/logging"
	"github.com/yorkie-team/otsync/server/rpc/httphealth"
	"github.com/yorkie-team/otsync/server/sessions"
)

// Server is a normal server that processes the logic requested by the client.
type Server struct {
	conf       *Config
	router     *mux.Router
	httpServer *http.Server
	realtime   *realtimeServer

	shuttingDown atomic.Bool
}

// NewServer creates a new instance of Server.
func NewServer(conf *Config, be *backend.Backend, service *sessions.Service) *Server {
	router := mux.NewRouter()
	realtime := newRealtimeServer(conf, service)
	realtime.register(router, newInterceptor(be.Metrics))

	s := &Server{
		conf:     conf,
		router:   router,
		realtime: realtime,
	}

	path, health := httphealth.NewHandler(httphealth.CheckerFunc(s.check))
	router.Handle(path, health).Methods(http.MethodGet, http.MethodHead)

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", conf.Port),
		Handler:     router,
		ReadTimeout: conf.ParseReadTimeout(),
	}
	return s
}

// Handler returns the handler of this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts this server by opening the rpc port.
func (s *Server) Start() error {
	return s.listenAndServe()
}

// Shutdown shuts down this server. Watch streams are closed either way.
func (s *Server) Shutdown(graceful bool) {
	if !s.shuttingDown.CompareAndSwap(false, true) {
		return
	}
	s.realtime.close()

	if graceful {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			logging.DefaultLogger().Errorf("HTTP server Shutdown: %v", err)
		}
		return
	}

	if err := s.httpServer.Close(); err != nil {
		logging.DefaultLogger().Errorf("HTTP server close: %v", err)
	}
}

func (s *Server) check(_ context.Context) httphealth.Status {
	if s.shuttingDown.Load() {
		return httphealth.StatusNotServing
	}
	return httphealth.StatusServing
}

func (s *Server) listenAndServe() error {
	lis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		logging.DefaultLogger().Infof("serving RPC on %d", s.conf.Port)

		var err error
		if s.conf.CertFile != "" && s.conf.KeyFile != "" {
			err = s.httpServer.ServeTLS(lis, s.conf.CertFile, s.conf.KeyFile)
		} else {
			err = s.httpServer.Serve(lis)
		}
		if !errors.Is(err, http.ErrServerClosed) {
			logging.DefaultLogger().Errorf("HTTP server Serve: %v", err)
		}
	}()
	return nil
}
