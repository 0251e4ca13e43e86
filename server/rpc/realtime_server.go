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

package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/internal/validation"
	"github.com/yorkie-team/otsync/internal/version"
	"github.com/yorkie-team/otsync/pkg/document"
	pkgerrors "github.com/yorkie-team/otsync/pkg/errors"
	"github.com/yorkie-team/otsync/server/logging"
	"github.com/yorkie-team/otsync/server/sessions"
)

// errEmptyBody is returned when a request has no body.
var errEmptyBody = pkgerrors.InvalidArgument("empty request body")

// realtimeServer serves the realtime sessions over HTTP.
type realtimeServer struct {
	conf     *Config
	service  *sessions.Service
	upgrader websocket.Upgrader

	// closing is closed when the server shuts down, ending watch streams.
	closing chan struct{}
}

func newRealtimeServer(conf *Config, service *sessions.Service) *realtimeServer {
	return &realtimeServer{
		conf:    conf,
		service: service,
		closing: make(chan struct{}),
	}
}

func (s *realtimeServer) register(router *mux.Router, i *interceptor) {
	router.Handle("/version", i.wrap("GetServerVersion", s.getServerVersion)).Methods(http.MethodGet)
	router.Handle("/realtime", i.wrap("ListSessions", s.listSessions)).Methods(http.MethodGet)
	router.Handle("/realtime/new", i.wrap("CreateSession", s.createSession)).Methods(http.MethodPost)
	router.Handle("/realtime/{id}", i.wrap("GetLatestState", s.getLatestState)).Methods(http.MethodGet)
	router.Handle("/realtime/{id}/patch", i.wrap("GetPatch", s.getPatch)).Methods(http.MethodGet)
	router.Handle("/realtime/{id}/patch", i.wrap("SendOperation", s.sendOperation)).Methods(http.MethodPost)
	router.Handle("/realtime/{id}/undo", i.wrap("Undo", s.undo)).Methods(http.MethodPost)
	router.Handle("/realtime/{id}/watch", i.wrap("WatchSession", s.watchSession)).Methods(http.MethodGet)
}

func (s *realtimeServer) getServerVersion(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, types.NewVersionDetail(version.Version, version.BuildDate))
	return nil
}

func (s *realtimeServer) listSessions(w http.ResponseWriter, r *http.Request) error {
	summaries, err := s.service.List(r.Context())
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, &types.ListSessionsResponse{Sessions: summaries})
	return nil
}

func (s *realtimeServer) createSession(w http.ResponseWriter, r *http.Request) error {
	req := &types.CreateSessionRequest{}
	if err := s.decode(r, req); err != nil && !errors.Is(err, errEmptyBody) {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	id, snapshot, err := s.service.Create(r.Context(), document.Kind(req.Kind), req.Content)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, &types.CreateSessionResponse{ID: id, Snapshot: snapshot})
	return nil
}

func (s *realtimeServer) getLatestState(w http.ResponseWriter, r *http.Request) error {
	id, err := sessionID(r)
	if err != nil {
		return err
	}

	snapshot, err := s.service.GetLatestState(r.Context(), id)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, &snapshot)
	return nil
}

func (s *realtimeServer) getPatch(w http.ResponseWriter, r *http.Request) error {
	id, err := sessionID(r)
	if err != nil {
		return err
	}

	since, err := document.ParseVersion(r.URL.Query().Get("since_id"))
	if err != nil {
		return pkgerrors.WithStatus(fmt.Errorf("since_id: %w", err), pkgerrors.ErrCodeInvalidArgument)
	}

	patch, err := s.service.GetPatch(r.Context(), id, since)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, &patch)
	return nil
}

func (s *realtimeServer) sendOperation(w http.ResponseWriter, r *http.Request) error {
	id, err := sessionID(r)
	if err != nil {
		return err
	}

	req := &types.SendOperationRequest{}
	if err := s.decode(r, req); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	patch, err := s.service.Modify(r.Context(), id, req.Version, *req.Operation, r.URL.Query().Get("key"))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, &patch)
	return nil
}

func (s *realtimeServer) undo(w http.ResponseWriter, r *http.Request) error {
	id, err := sessionID(r)
	if err != nil {
		return err
	}

	req := &types.UndoRequest{}
	if err := s.decode(r, req); err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	patch, err := s.service.Undo(r.Context(), id, req.Version, r.URL.Query().Get("key"))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, &patch)
	return nil
}

// watchSession streams the events of the session over a websocket. Errors
// that happen before the upgrade are reported as usual; after it the
// stream is closed.
func (s *realtimeServer) watchSession(w http.ResponseWriter, r *http.Request) error {
	id, err := sessionID(r)
	if err != nil {
		return err
	}

	ctx := r.Context()
	sub, _, err := s.service.Watch(ctx, id, r.URL.Query().Get("key"))
	if err != nil {
		return err
	}
	defer s.service.Unwatch(ctx, id, sub)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logging.From(ctx).Warnf("upgrade watch of %s: %v", id, err)
		return nil
	}
	defer func() {
		_ = conn.Close()
	}()

	// The client sends nothing; reading only notices that it went away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(event); err != nil {
				logging.From(ctx).Debugf("write event of %s: %v", id, err)
				return nil
			}
		case <-gone:
			return nil
		case <-s.closing:
			_ = conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			)
			return nil
		}
	}
}

func (s *realtimeServer) close() {
	close(s.closing)
}

// decode reads the JSON body of r into v.
func (s *realtimeServer) decode(r *http.Request, v any) error {
	body := io.Reader(r.Body)
	if s.conf.MaxRequestBytes > 0 {
		body = io.LimitReader(r.Body, int64(s.conf.MaxRequestBytes)+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return pkgerrors.WithStatus(fmt.Errorf("read request: %w", err), pkgerrors.ErrCodeInvalidArgument)
	}
	if s.conf.MaxRequestBytes > 0 && uint64(len(data)) > s.conf.MaxRequestBytes {
		return pkgerrors.InvalidArgument(fmt.Sprintf("request larger than %d bytes", s.conf.MaxRequestBytes))
	}
	if len(data) == 0 {
		return errEmptyBody
	}

	if err := json.Unmarshal(data, v); err != nil {
		return pkgerrors.WithStatus(fmt.Errorf("decode request: %w", err), pkgerrors.ErrCodeInvalidArgument)
	}
	return nil
}

func validateRequest(req any) error {
	if err := validation.ValidateStruct(req); err != nil {
		var structErr *validation.StructError
		if errors.As(err, &structErr) && len(structErr.Violations) > 0 {
			return pkgerrors.InvalidArgument(structErr.Violations[0].Description)
		}
		return pkgerrors.WithStatus(err, pkgerrors.ErrCodeInvalidArgument)
	}
	return nil
}

func sessionID(r *http.Request) (types.ID, error) {
	id := mux.Vars(r)["id"]
	if err := validation.ValidateValue(id, "session_id"); err != nil {
		var violation validation.Violation
		if errors.As(err, &violation) {
			return "", pkgerrors.InvalidArgument(fmt.Sprintf("%s: %s", id, violation.Description))
		}
		return "", pkgerrors.WithStatus(err, pkgerrors.ErrCodeInvalidArgument)
	}
	return types.ID(id), nil
}
