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
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/server"
	"github.com/yorkie-team/otsync/server/profiling"
)

func TestNewConfigFromFile(t *testing.T) {
	t.Run("fail read config file test", func(t *testing.T) {
		conf := server.NewConfig()
		assert.Equal(t, conf.RPCAddr(), "localhost:"+strconv.Itoa(server.DefaultRPCPort))
		_, err := server.NewConfigFromFile("nowhere.yml")
		assert.Error(t, err)
		assert.Equal(t, conf.RPC.Port, server.DefaultRPCPort)
		assert.Equal(t, conf.RPC.CertFile, "")
		assert.Equal(t, conf.RPC.KeyFile, "")
		assert.Equal(t, conf.Backend.SessionListLimit, server.DefaultSessionListLimit)
		assert.Nil(t, conf.Mongo)
		assert.NoError(t, conf.Validate())
	})

	t.Run("read config file test", func(t *testing.T) {
		filePath := "config.sample.yml"
		conf, err := server.NewConfigFromFile(filePath)
		assert.NoError(t, err)

		assert.Equal(t, conf.RPC.Port, server.DefaultRPCPort)
		assert.Equal(t, conf.RPC.CertFile, "")
		assert.Equal(t, conf.RPC.KeyFile, "")
		assert.Equal(t, conf.RPC.MaxRequestBytes, uint64(server.DefaultRPCMaxRequestBytes))

		connTimeout, err := time.ParseDuration(conf.Mongo.ConnectionTimeout)
		assert.NoError(t, err)
		assert.Equal(t, connTimeout, server.DefaultMongoConnectionTimeout)
		assert.Equal(t, conf.Mongo.ConnectionURI, server.DefaultMongoConnectionURI)
		assert.Equal(t, conf.Mongo.OTSyncDatabase, server.DefaultMongoOTSyncDatabase)

		pingTimeout, err := time.ParseDuration(conf.Mongo.PingTimeout)
		assert.NoError(t, err)
		assert.Equal(t, pingTimeout, server.DefaultMongoPingTimeout)

		interval, err := conf.Housekeeping.ParseInterval()
		assert.NoError(t, err)
		assert.Equal(t, interval, server.DefaultHousekeepingInterval)
		assert.Equal(t, conf.Housekeeping.CandidatesLimit, server.DefaultHousekeepingCandidatesLimit)

		persistTimeout, err := time.ParseDuration(conf.Backend.PersistTimeout)
		assert.NoError(t, err)
		assert.Equal(t, persistTimeout, server.DefaultPersistTimeout)
		assert.Equal(t, conf.Backend.SessionListLimit, server.DefaultSessionListLimit)
		assert.NoError(t, conf.Validate())
	})

	t.Run("ensure default value test", func(t *testing.T) {
		conf, err := server.NewConfigFromFile("testdata/minimal.yml")
		assert.NoError(t, err)
		assert.Equal(t, server.DefaultRPCPort, conf.RPC.Port)
		assert.Equal(t, server.DefaultRPCReadTimeout.String(), conf.RPC.ReadTimeout)
		assert.Equal(t, server.DefaultPersistTimeout.String(), conf.Backend.PersistTimeout)
		assert.Equal(t, server.DefaultHousekeepingIdleTimeout.String(), conf.Housekeeping.IdleTimeout)
		assert.Nil(t, conf.Profiling)
		assert.Nil(t, conf.Mongo)
		assert.NoError(t, conf.Validate())
	})

	t.Run("profiling config test", func(t *testing.T) {
		conf := server.NewConfig()
		assert.Equal(t, profiling.DefaultMetricsPath, conf.Profiling.MetricsPath)

		conf.Profiling.Port = conf.RPC.Port
		assert.ErrorIs(t, conf.Validate(), server.ErrPortConflict)

		conf.Profiling.Port = server.DefaultProfilingPort
		conf.Profiling.MetricsPath = "/debug/pprof/metrics"
		assert.ErrorIs(t, conf.Validate(), profiling.ErrInvalidMetricsPath)
	})
}
