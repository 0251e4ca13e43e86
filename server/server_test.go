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
package server_test

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/otsync/client"
	"github.com/yorkie-team/otsync/pkg/document"
	"github.com/yorkie-team/otsync/server"
)

func freePort(t *testing.T) int {
	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestOTSync(t *testing.T) {
	ctx := context.Background()

	t.Run("start edit and shutdown test", func(t *testing.T) {
		conf := server.NewConfig()
		conf.RPC.Port = freePort(t)
		conf.Profiling.Port = freePort(t)

		srv, err := server.New(conf)
		require.NoError(t, err)
		require.NoError(t, srv.Start())

		cli, err := client.NewRPCClient(srv.RPCAddr(), client.WithKey("alice"))
		require.NoError(t, err)

		resp, err := cli.CreateSession(ctx, document.KindText, "abc")
		require.NoError(t, err)

		c, err := cli.Attach(ctx, resp.ID)
		require.NoError(t, err)
		require.NoError(t, c.Edit("abcd"))
		require.NoError(t, c.Sync(ctx))

		snapshot, err := srv.Sessions().GetLatestState(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, document.Version(2), snapshot.Version)
		assert.Equal(t, "abcd", snapshot.Content.String())

		metricsResp, err := http.Get("http://" + net.JoinHostPort("localhost", strconv.Itoa(conf.Profiling.Port)) + "/metrics")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
		assert.NoError(t, metricsResp.Body.Close())

		assert.NoError(t, srv.Shutdown(true))
		<-srv.ShutdownCh()
		assert.NoError(t, srv.Shutdown(true))
	})

	t.Run("invalid config test", func(t *testing.T) {
		conf := server.NewConfig()
		conf.RPC.Port = 0
		_, err := server.New(conf)
		assert.Error(t, err)
	})
}
