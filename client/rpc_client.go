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

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/document"
	pkgerrors "github.com/yorkie-team/otsync/pkg/errors"
)

const defaultRequestTimeout = 10 * time.Second

// WatchResponse is a response of Watch.
type WatchResponse struct {
	Event types.SessionEvent
	Err   error
}

// RPCClient talks to the HTTP API of an otsync server.
type RPCClient struct {
	baseURL        *url.URL
	httpClient     *http.Client
	requestTimeout time.Duration
	options        Options
	logger         *zap.Logger
}

// NewRPCClient creates an instance of RPCClient. rpcAddr is either a
// host:port pair or a full http(s) URL.
func NewRPCClient(rpcAddr string, opts ...Option) (*RPCClient, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	if options.Key == "" {
		options.Key = uuid.New().String()
	}

	if !strings.HasPrefix(rpcAddr, "http://") && !strings.HasPrefix(rpcAddr, "https://") {
		rpcAddr = "http://" + rpcAddr
	}
	baseURL, err := url.Parse(rpcAddr)
	if err != nil {
		return nil, fmt.Errorf("parse rpc address %s: %w", rpcAddr, err)
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	requestTimeout := options.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = defaultRequestTimeout
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RPCClient{
		baseURL:        baseURL,
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
		options:        options,
		logger:         logger,
	}, nil
}

// Key returns the key this client edits and watches sessions with.
func (c *RPCClient) Key() string {
	return c.options.Key
}

// CreateSession creates a new session of the given kind seeded with content.
func (c *RPCClient) CreateSession(
	ctx context.Context,
	kind document.Kind,
	content string,
) (*types.CreateSessionResponse, error) {
	resp := &types.CreateSessionResponse{}
	if err := c.do(ctx, http.MethodPost, "/realtime/new", nil, &types.CreateSessionRequest{
		Kind:    string(kind),
		Content: content,
	}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetServerVersion returns the version of the server.
func (c *RPCClient) GetServerVersion(ctx context.Context) (*types.VersionDetail, error) {
	resp := &types.VersionDetail{}
	if err := c.do(ctx, http.MethodGet, "/version", nil, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListSessions returns the summaries of the sessions of the server.
func (c *RPCClient) ListSessions(ctx context.Context) ([]types.SessionSummary, error) {
	resp := &types.ListSessionsResponse{}
	if err := c.do(ctx, http.MethodGet, "/realtime", nil, nil, resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// Connection returns the Connection to the session with the given ID.
func (c *RPCClient) Connection(id types.ID) Connection {
	return &sessionConnection{rpc: c, id: id}
}

// Undo asks the server to undo the edit accepted as version in the session
// with the given ID. It returns the version the undo was accepted as.
func (c *RPCClient) Undo(ctx context.Context, id types.ID, version document.Version) (document.Patch, error) {
	var patch document.Patch
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/realtime/%s/undo", id), c.keyQuery(), &types.UndoRequest{
		Version: version,
	}, &patch); err != nil {
		return document.Patch{}, err
	}
	return patch, nil
}

// Attach creates a Client of the session with the given ID.
func (c *RPCClient) Attach(ctx context.Context, id types.ID) (*Client, error) {
	return New(ctx, c.Connection(id),
		WithKey(c.options.Key),
		WithLogger(c.logger),
	)
}

// Watch subscribes to the events of the session with the given ID. The
// returned channel is closed when ctx is done or the stream fails.
func (c *RPCClient) Watch(ctx context.Context, id types.ID) (<-chan WatchResponse, error) {
	watchURL := c.url(fmt.Sprintf("/realtime/%s/watch", id), c.keyQuery())
	switch watchURL.Scheme {
	case "https":
		watchURL.Scheme = "wss"
	default:
		watchURL.Scheme = "ws"
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, watchURL.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, responseError(resp)
		}
		return nil, fmt.Errorf("watch %s: %w", id, err)
	}

	rch := make(chan WatchResponse)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go func() {
		defer close(rch)
		for {
			var event types.SessionEvent
			if err := conn.ReadJSON(&event); err != nil {
				if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return
				}
				select {
				case rch <- WatchResponse{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case rch <- WatchResponse{Event: event}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return rch, nil
}

func (c *RPCClient) keyQuery() url.Values {
	return url.Values{"key": []string{c.options.Key}}
}

func (c *RPCClient) url(path string, query url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return &u
}

// do sends a request with args as the JSON body and decodes the JSON
// response into result.
func (c *RPCClient) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	args any,
	result any,
) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var body io.Reader
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query).String(), body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", method, path, err)
	}
	return nil
}

// responseError converts a failed response into an error carrying the
// status the server reported.
func responseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error response: %w", err)
	}

	errResp := &types.ErrorResponse{}
	if err := json.Unmarshal(body, errResp); err != nil || errResp.Code == "" {
		return pkgerrors.WithStatus(
			errors.New(strings.TrimSpace(string(body))),
			statusFromHTTP(resp.StatusCode),
		)
	}
	return pkgerrors.WithStatus(errors.New(errResp.Message), pkgerrors.ParseStatusCode(errResp.Code))
}

func statusFromHTTP(status int) pkgerrors.StatusCode {
	switch status {
	case http.StatusBadRequest:
		return pkgerrors.ErrCodeInvalidArgument
	case http.StatusNotFound:
		return pkgerrors.ErrCodeNotFound
	case http.StatusConflict:
		return pkgerrors.ErrCodeFailedPrecondition
	case http.StatusServiceUnavailable:
		return pkgerrors.ErrCodeUnavailable
	default:
		return pkgerrors.ErrCodeInternal
	}
}

// sessionConnection is the Connection to one session of the server.
type sessionConnection struct {
	rpc *RPCClient
	id  types.ID
}

// GetLatestState returns the current snapshot of the session.
func (s *sessionConnection) GetLatestState(ctx context.Context) (document.Snapshot, error) {
	var snapshot document.Snapshot
	if err := s.rpc.do(ctx, http.MethodGet, s.path(""), nil, nil, &snapshot); err != nil {
		return document.Snapshot{}, err
	}
	return snapshot, nil
}

// GetPatchSince returns the edits made after the given version.
func (s *sessionConnection) GetPatchSince(ctx context.Context, since document.Version) (document.Patch, error) {
	var patch document.Patch
	query := url.Values{"since_id": []string{since.String()}}
	if err := s.rpc.do(ctx, http.MethodGet, s.path("/patch"), query, nil, &patch); err != nil {
		return document.Patch{}, err
	}
	return patch, nil
}

// SendOperation submits an operation made against the given base version.
func (s *sessionConnection) SendOperation(
	ctx context.Context,
	base document.Version,
	op document.Operation,
) (document.Patch, error) {
	var patch document.Patch
	if err := s.rpc.do(ctx, http.MethodPost, s.path("/patch"), s.rpc.keyQuery(), &types.SendOperationRequest{
		Version:   base,
		Operation: &op,
	}, &patch); err != nil {
		return document.Patch{}, err
	}
	return patch, nil
}

func (s *sessionConnection) path(suffix string) string {
	return fmt.Sprintf("/realtime/%s%s", s.id, suffix)
}
