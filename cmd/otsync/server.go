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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/otsync/server"
	"github.com/yorkie-team/otsync/server/backend/database/mongo"
	"github.com/yorkie-team/otsync/server/logging"
	"github.com/yorkie-team/otsync/server/profiling"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath  string
	flagLogLevel  string
	flagLogFormat string

	rpcReadTimeout time.Duration
	persistTimeout time.Duration

	disableProfiling bool

	housekeepingInterval    time.Duration
	housekeepingIdleTimeout time.Duration

	mongoConnectionURI     string
	mongoConnectionTimeout time.Duration
	mongoOTSyncDatabase    string
	mongoPingTimeout       time.Duration

	conf = server.NewConfig()
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start OTSync server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.RPC.ReadTimeout = rpcReadTimeout.String()
			conf.Backend.PersistTimeout = persistTimeout.String()
			conf.Housekeeping.Interval = housekeepingInterval.String()
			conf.Housekeeping.IdleTimeout = housekeepingIdleTimeout.String()
			if disableProfiling {
				conf.Profiling = nil
			}

			if mongoConnectionURI != "" {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     mongoConnectionURI,
					ConnectionTimeout: mongoConnectionTimeout.String(),
					OTSyncDatabase:    mongoOTSyncDatabase,
					PingTimeout:       mongoPingTimeout.String(),
				}
			}

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if err := logging.SetLogLevel(flagLogLevel); err != nil {
				return err
			}
			if err := logging.SetLogFormat(flagLogFormat); err != nil {
				return err
			}

			r, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := r.Start(); err != nil {
				return err
			}

			if code := handleSignal(r); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(r *server.OTSync) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-r.ShutdownCh():
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := r.Shutdown(graceful); err != nil {
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().StringVar(
		&flagLogFormat,
		"log-format",
		"console",
		"Log format: console, json",
	)
	cmd.Flags().IntVar(
		&conf.RPC.Port,
		"rpc-port",
		server.DefaultRPCPort,
		"RPC port",
	)
	cmd.Flags().StringVar(
		&conf.RPC.CertFile,
		"rpc-cert-file",
		"",
		"RPC certification file's path",
	)
	cmd.Flags().StringVar(
		&conf.RPC.KeyFile,
		"rpc-key-file",
		"",
		"RPC key file's path",
	)
	cmd.Flags().Uint64Var(
		&conf.RPC.MaxRequestBytes,
		"rpc-max-requests-bytes",
		server.DefaultRPCMaxRequestBytes,
		"Maximum client request size in bytes the server will accept.",
	)
	cmd.Flags().DurationVar(
		&rpcReadTimeout,
		"rpc-read-timeout",
		server.DefaultRPCReadTimeout,
		"Maximum duration for reading an entire request.",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().StringVar(
		&conf.Profiling.MetricsPath,
		"profiling-metrics-path",
		profiling.DefaultMetricsPath,
		"Path the profiling server serves metrics at.",
	)
	cmd.Flags().BoolVar(
		&disableProfiling,
		"disable-profiling",
		false,
		"Do not start the profiling server.",
	)
	cmd.Flags().DurationVar(
		&housekeepingInterval,
		"housekeeping-interval",
		server.DefaultHousekeepingInterval,
		"housekeeping interval between housekeeping runs",
	)
	cmd.Flags().DurationVar(
		&housekeepingIdleTimeout,
		"housekeeping-idle-timeout",
		server.DefaultHousekeepingIdleTimeout,
		"how long an unused session stays in memory",
	)
	cmd.Flags().IntVar(
		&conf.Housekeeping.CandidatesLimit,
		"housekeeping-candidates-limit",
		server.DefaultHousekeepingCandidatesLimit,
		"maximum number of sessions evicted in a single housekeeping run",
	)
	cmd.Flags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	cmd.Flags().DurationVar(
		&mongoConnectionTimeout,
		"mongo-connection-timeout",
		server.DefaultMongoConnectionTimeout,
		"Mongo DB's connection timeout",
	)
	cmd.Flags().StringVar(
		&mongoOTSyncDatabase,
		"mongo-otsync-database",
		server.DefaultMongoOTSyncDatabase,
		"OTSync's database name in MongoDB",
	)
	cmd.Flags().DurationVar(
		&mongoPingTimeout,
		"mongo-ping-timeout",
		server.DefaultMongoPingTimeout,
		"Mongo DB's ping timeout",
	)
	cmd.Flags().IntVar(
		&conf.Backend.SubscriptionLimitPerSession,
		"backend-subscription-limit-per-session",
		0,
		"Maximum number of watchers of a session, 0 for no limit.",
	)
	cmd.Flags().DurationVar(
		&persistTimeout,
		"backend-persist-timeout",
		server.DefaultPersistTimeout,
		"Timeout of writing a session after an accepted edit.",
	)
	cmd.Flags().IntVar(
		&conf.Backend.SessionListLimit,
		"backend-session-list-limit",
		server.DefaultSessionListLimit,
		"Maximum number of sessions a listing returns.",
	)
	cmd.Flags().StringVar(
		&conf.Backend.DefaultContent,
		"backend-default-content",
		"",
		"Content of a session created without one. A built-in snippet is used when empty.",
	)
	cmd.Flags().StringVar(
		&conf.Backend.Hostname,
		"hostname",
		server.DefaultHostname,
		"OTSync Server Hostname",
	)

	rootCmd.AddCommand(cmd)
}
