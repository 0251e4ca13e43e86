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

package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/otsync/server/backend"
	"github.com/yorkie-team/otsync/server/backend/database/mongo"
	"github.com/yorkie-team/otsync/server/backend/housekeeping"
	"github.com/yorkie-team/otsync/server/profiling"
	"github.com/yorkie-team/otsync/server/rpc"
)

// Below are the values of the default values of otsync config.
const (
	DefaultRPCPort            = 8080
	DefaultRPCReadTimeout     = 10 * time.Second
	DefaultRPCMaxRequestBytes = 4 * 1024 * 1024
	DefaultProfilingPort      = 8081

	DefaultMongoConnectionURI                = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout            = 5 * time.Second
	DefaultMongoPingTimeout                  = 5 * time.Second
	DefaultMongoOTSyncDatabase               = "otsync-meta"
	DefaultMongoMonitoringSlowQueryThreshold = 100 * time.Millisecond

	DefaultHousekeepingInterval        = time.Minute
	DefaultHousekeepingIdleTimeout     = 30 * time.Minute
	DefaultHousekeepingCandidatesLimit = 500

	DefaultPersistTimeout   = 5 * time.Second
	DefaultSessionListLimit = 100

	DefaultHostname = ""
)

// ErrPortConflict occurs when the RPC and profiling servers share a port.
var ErrPortConflict = errors.New("rpc and profiling servers share a port")

// Config is the configuration for creating an OTSync instance.
type Config struct {
	RPC          *rpc.Config          `yaml:"RPC"`
	Profiling    *profiling.Config    `yaml:"Profiling"`
	Housekeeping *housekeeping.Config `yaml:"Housekeeping"`
	Backend      *backend.Config      `yaml:"Backend"`
	Mongo        *mongo.Config        `yaml:"Mongo"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultRPCPort, DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// RPCAddr returns the RPC address.
func (c *Config) RPCAddr() string {
	return fmt.Sprintf("localhost:%d", c.RPC.Port)
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.RPC.Validate(); err != nil {
		return err
	}

	if c.Profiling != nil {
		if err := c.Profiling.Validate(); err != nil {
			return err
		}
		if c.Profiling.Port == c.RPC.Port {
			return fmt.Errorf("port %d: %w", c.RPC.Port, ErrPortConflict)
		}
	}

	if err := c.Housekeeping.Validate(); err != nil {
		return err
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	if c.RPC == nil {
		c.RPC = &rpc.Config{}
	}
	if c.RPC.Port == 0 {
		c.RPC.Port = DefaultRPCPort
	}
	if c.RPC.ReadTimeout == "" {
		c.RPC.ReadTimeout = DefaultRPCReadTimeout.String()
	}
	if c.RPC.MaxRequestBytes == 0 {
		c.RPC.MaxRequestBytes = DefaultRPCMaxRequestBytes
	}

	if c.Profiling != nil && c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}
	if c.Profiling != nil && c.Profiling.MetricsPath == "" {
		c.Profiling.MetricsPath = profiling.DefaultMetricsPath
	}

	if c.Housekeeping == nil {
		c.Housekeeping = &housekeeping.Config{}
	}
	if c.Housekeeping.Interval == "" {
		c.Housekeeping.Interval = DefaultHousekeepingInterval.String()
	}
	if c.Housekeeping.IdleTimeout == "" {
		c.Housekeeping.IdleTimeout = DefaultHousekeepingIdleTimeout.String()
	}
	if c.Housekeeping.CandidatesLimit == 0 {
		c.Housekeeping.CandidatesLimit = DefaultHousekeepingCandidatesLimit
	}

	if c.Backend == nil {
		c.Backend = &backend.Config{}
	}
	if c.Backend.PersistTimeout == "" {
		c.Backend.PersistTimeout = DefaultPersistTimeout.String()
	}
	if c.Backend.SessionListLimit == 0 {
		c.Backend.SessionListLimit = DefaultSessionListLimit
	}

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}

		if c.Mongo.ConnectionTimeout == "" {
			c.Mongo.ConnectionTimeout = DefaultMongoConnectionTimeout.String()
		}

		if c.Mongo.OTSyncDatabase == "" {
			c.Mongo.OTSyncDatabase = DefaultMongoOTSyncDatabase
		}

		if c.Mongo.PingTimeout == "" {
			c.Mongo.PingTimeout = DefaultMongoPingTimeout.String()
		}

		if c.Mongo.MonitoringEnabled {
			if c.Mongo.MonitoringSlowQueryThreshold == "" {
				c.Mongo.MonitoringSlowQueryThreshold = DefaultMongoMonitoringSlowQueryThreshold.String()
			}
		}
	}
}

func newConfig(port int, profilingPort int) *Config {
	return &Config{
		RPC: &rpc.Config{
			Port:            port,
			ReadTimeout:     DefaultRPCReadTimeout.String(),
			MaxRequestBytes: DefaultRPCMaxRequestBytes,
		},
		Profiling: &profiling.Config{
			Port:        profilingPort,
			MetricsPath: profiling.DefaultMetricsPath,
		},
		Housekeeping: &housekeeping.Config{
			Interval:        DefaultHousekeepingInterval.String(),
			IdleTimeout:     DefaultHousekeepingIdleTimeout.String(),
			CandidatesLimit: DefaultHousekeepingCandidatesLimit,
		},
		Backend: &backend.Config{
			Hostname:         DefaultHostname,
			PersistTimeout:   DefaultPersistTimeout.String(),
			SessionListLimit: DefaultSessionListLimit,
		},
	}
}
