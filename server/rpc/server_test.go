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

package rpc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/client"
	"github.com/yorkie-team/otsync/internal/version"
	"github.com/yorkie-team/otsync/pkg/document"
	"github.com/yorkie-team/otsync/pkg/errors"
	"github.com/yorkie-team/otsync/server/backend"
	"github.com/yorkie-team/otsync/server/profiling/prometheus"
	"github.com/yorkie-team/otsync/server/rpc"
	"github.com/yorkie-team/otsync/server/sessions"
)

func newTestServer(t *testing.T) (*httptest.Server, *rpc.Server) {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(&backend.Config{PersistTimeout: "5s"}, nil, nil, metrics)
	require.NoError(t, err)

	server := rpc.NewServer(&rpc.Config{
		Port:            21101,
		ReadTimeout:     "10s",
		MaxRequestBytes: 1 << 20,
	}, be, sessions.NewService(be))
	ts := httptest.NewServer(server.Handler())

	t.Cleanup(func() {
		server.Shutdown(true)
		ts.Close()
		assert.NoError(t, be.Shutdown())
	})
	return ts, server
}

func newRPCClient(t *testing.T, ts *httptest.Server, key string) *client.RPCClient {
	cli, err := client.NewRPCClient(ts.URL, client.WithKey(key))
	require.NoError(t, err)
	return cli
}

func TestRealtimeServer(t *testing.T) {
	ctx := context.Background()

	t.Run("create and edit session test", func(t *testing.T) {
		ts, _ := newTestServer(t)
		alice := newRPCClient(t, ts, "alice")
		bob := newRPCClient(t, ts, "bob")

		resp, err := alice.CreateSession(ctx, document.KindText, "hello")
		require.NoError(t, err)
		assert.Equal(t, document.Version(1), resp.Snapshot.Version)
		assert.Equal(t, "hello", resp.Snapshot.Content.String())

		c1, err := alice.Attach(ctx, resp.ID)
		require.NoError(t, err)
		c2, err := bob.Attach(ctx, resp.ID)
		require.NoError(t, err)

		assert.NoError(t, c1.Edit("hello world"))
		assert.NoError(t, c1.Sync(ctx))

		assert.NoError(t, c2.Edit("Hello"))
		assert.NoError(t, c2.Sync(ctx))
		assert.NoError(t, c1.Sync(ctx))

		assert.Equal(t, c1.Content().String(), c2.Content().String())
		assert.Equal(t, "Hello world", c1.Content().String())
		assert.Equal(t, client.Synced, c1.State())

		snapshot, err := alice.Connection(resp.ID).GetLatestState(ctx)
		assert.NoError(t, err)
		assert.Equal(t, c1.Version(), snapshot.Version)
		assert.Equal(t, "Hello world", snapshot.Content.String())
	})

	t.Run("create session with defaults test", func(t *testing.T) {
		ts, _ := newTestServer(t)

		res, err := http.Post(ts.URL+"/realtime/new", "application/json", nil)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, res.Body.Close())
		}()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		resp := &types.CreateSessionResponse{}
		assert.NoError(t, json.NewDecoder(res.Body).Decode(resp))
		assert.Equal(t, document.KindText, resp.Snapshot.Content.Kind)
		assert.Equal(t, sessions.DefaultContent, resp.Snapshot.Content.String())
	})

	t.Run("list sessions test", func(t *testing.T) {
		ts, _ := newTestServer(t)
		cli := newRPCClient(t, ts, "alice")

		first, err := cli.CreateSession(ctx, document.KindText, "a")
		require.NoError(t, err)
		second, err := cli.CreateSession(ctx, document.KindLines, "b\nc")
		require.NoError(t, err)

		summaries, err := cli.ListSessions(ctx)
		assert.NoError(t, err)
		assert.Len(t, summaries, 2)
		assert.Equal(t, first.ID, summaries[0].ID)
		assert.Equal(t, second.ID, summaries[1].ID)
		assert.Equal(t, document.KindLines, summaries[1].Kind)
	})

	t.Run("error response test", func(t *testing.T) {
		ts, _ := newTestServer(t)
		cli := newRPCClient(t, ts, "alice")

		_, err := cli.CreateSession(ctx, document.Kind("tree"), "a")
		assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))

		_, err = cli.Connection(types.NewID()).GetLatestState(ctx)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeNotFound))

		_, err = cli.Connection(types.ID("not-an-id")).GetLatestState(ctx)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))

		resp, err := cli.CreateSession(ctx, document.KindText, "ab")
		require.NoError(t, err)

		_, err = cli.Connection(resp.ID).GetPatchSince(ctx, 9)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeNotFound))

		_, err = cli.Connection(resp.ID).SendOperation(ctx, 1, document.Diff(document.TextContent("abc"), "x"))
		assert.ErrorContains(t, err, "length mismatch")
		assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))

		res, err := http.Get(ts.URL + "/realtime/" + resp.ID.String() + "/patch?since_id=one")
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, res.Body.Close())
		}()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		errResp := &types.ErrorResponse{}
		assert.NoError(t, json.NewDecoder(res.Body).Decode(errResp))
		assert.Equal(t, "invalid_argument", errResp.Code)

		res, err = http.Post(ts.URL+"/realtime/"+resp.ID.String()+"/patch", "application/json", strings.NewReader(`{"version":1}`))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, res.Body.Close())
		}()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("undo test", func(t *testing.T) {
		ts, _ := newTestServer(t)
		cli := newRPCClient(t, ts, "alice")

		resp, err := cli.CreateSession(ctx, document.KindText, "ab")
		require.NoError(t, err)
		conn := cli.Connection(resp.ID)
		_, err = conn.SendOperation(ctx, 1, document.Diff(document.TextContent("ab"), "abc"))
		require.NoError(t, err)

		patch, err := cli.Undo(ctx, resp.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, document.Version(3), patch.Version)

		snapshot, err := conn.GetLatestState(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ab", snapshot.Content.String())

		_, err = cli.Undo(ctx, resp.ID, 0)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeInvalidArgument))
		_, err = cli.Undo(ctx, resp.ID, 8)
		assert.True(t, errors.IsStatus(err, errors.ErrCodeNotFound))
	})

	t.Run("server version test", func(t *testing.T) {
		ts, _ := newTestServer(t)
		cli := newRPCClient(t, ts, "alice")

		detail, err := cli.GetServerVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, version.Version, detail.OTSyncVersion)
		assert.Equal(t, runtime.Version(), detail.GoVersion)
	})

	t.Run("overflowing operation test", func(t *testing.T) {
		ts, _ := newTestServer(t)
		cli := newRPCClient(t, ts, "alice")

		resp, err := cli.CreateSession(ctx, document.KindText, "abcd")
		require.NoError(t, err)

		body := `{"version":1,"operation":{"kind":"text","text":[` +
			`{"retain":9223372036854775807},{"delete":9223372036854775807},{"retain":4}]}}`
		res, err := http.Post(ts.URL+"/realtime/"+resp.ID.String()+"/patch", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, res.Body.Close())
		}()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		errResp := &types.ErrorResponse{}
		assert.NoError(t, json.NewDecoder(res.Body).Decode(errResp))
		assert.Equal(t, "invalid_argument", errResp.Code)
		assert.Contains(t, errResp.Message, "too long")

		conn := cli.Connection(resp.ID)
		snapshot, err := conn.GetLatestState(ctx)
		require.NoError(t, err)
		assert.Equal(t, document.Version(1), snapshot.Version)
		assert.Equal(t, "abcd", snapshot.Content.String())

		patch, err := conn.SendOperation(ctx, 1, document.Diff(document.TextContent("abcd"), "abcde"))
		require.NoError(t, err)
		assert.Equal(t, document.Version(2), patch.Version)
	})

	t.Run("watch session test", func(t *testing.T) {
		ts, _ := newTestServer(t)
		alice := newRPCClient(t, ts, "alice")
		bob := newRPCClient(t, ts, "bob")

		resp, err := alice.CreateSession(ctx, document.KindText, "ab")
		require.NoError(t, err)

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		rch, err := bob.Watch(watchCtx, resp.ID)
		require.NoError(t, err)

		c1, err := alice.Attach(ctx, resp.ID)
		require.NoError(t, err)
		assert.NoError(t, c1.Edit("abc"))
		assert.NoError(t, c1.Flush(ctx))

		select {
		case wr := <-rch:
			assert.NoError(t, wr.Err)
			assert.Equal(t, types.SessionChangedEvent, wr.Event.Type)
			assert.Equal(t, resp.ID, wr.Event.SessionID)
			assert.Equal(t, document.Version(2), wr.Event.Version)
			assert.Equal(t, "alice", wr.Event.Publisher)
		case <-time.After(3 * time.Second):
			assert.Fail(t, "session changed event was not delivered")
		}

		_, err = bob.Watch(watchCtx, types.NewID())
		assert.True(t, errors.IsStatus(err, errors.ErrCodeNotFound))
	})

	t.Run("health check test", func(t *testing.T) {
		ts, server := newTestServer(t)

		res, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.NoError(t, res.Body.Close())

		server.Shutdown(true)
		res, err = http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
		assert.NoError(t, res.Body.Close())
	})
}
