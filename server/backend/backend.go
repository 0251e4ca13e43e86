/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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

// Package backend provides the backend implementation of otsync.
// This package is responsible for managing the database and other
// resources required to run the sequencers.
package backend

import (
	"fmt"
	"os"

	"github.com/yorkie-team/otsync/server/backend/background"
	"github.com/yorkie-team/otsync/server/backend/database"
	memdb "github.com/yorkie-team/otsync/server/backend/database/memory"
	"github.com/yorkie-team/otsync/server/backend/database/mongo"
	"github.com/yorkie-team/otsync/server/backend/housekeeping"
	"github.com/yorkie-team/otsync/server/backend/pubsub"
	"github.com/yorkie-team/otsync/server/backend/sync"
	"github.com/yorkie-team/otsync/server/logging"
	"github.com/yorkie-team/otsync/server/profiling/prometheus"
)

// Backend manages otsync's backend such as Database. It also provides
// pubsub and per-session lockers.
type Backend struct {
	Config *Config

	// PubSub is used to publish/subscribe session events to/from clients.
	PubSub *pubsub.PubSub
	// Lockers is used to lock/unlock sessions.
	Lockers *sync.LockerManager

	// Background is used to manage background tasks.
	Background *background.Background
	// Housekeeping is used to evict idle sessions from memory. It is nil
	// when housekeeping is not configured.
	Housekeeping *housekeeping.Housekeeping

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
	// DB is the database instance.
	DB database.Database
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	housekeepingConf *housekeeping.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	// 01. Fill the hostname with the hostname of the current machine.
	if conf.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = hostname
	}

	// 02. Create the database instance. If the MongoDB configuration is given,
	// create a MongoDB instance. Otherwise, create a memory database instance.
	var db database.Database
	var err error
	if mongoConf != nil {
		db, err = mongo.Dial(mongoConf)
	} else {
		db, err = memdb.New()
	}
	if err != nil {
		return nil, err
	}

	// 03. Create the housekeeping instance. The tasks are registered by the
	// services that own the resources to clean up.
	var keeping *housekeeping.Housekeeping
	if housekeepingConf != nil {
		keeping, err = housekeeping.New(housekeepingConf)
		if err != nil {
			return nil, err
		}
	}

	dbInfo := "memory"
	if mongoConf != nil {
		dbInfo = mongoConf.ConnectionURI
	}
	logging.DefaultLogger().Infof("backend created: db: %s", dbInfo)

	return &Backend{
		Config: conf,

		PubSub:  pubsub.New(),
		Lockers: sync.New(),

		Background:   background.New(metrics),
		Housekeeping: keeping,

		Metrics: metrics,
		DB:      db,
	}, nil
}

// Start starts the housekeeping tasks of this instance.
func (b *Backend) Start() error {
	if b.Housekeeping == nil {
		return nil
	}

	if err := b.Housekeeping.Start(); err != nil {
		return err
	}
	logging.DefaultLogger().Infof("backend started: housekeeping every %s", b.Housekeeping.Config.Interval)
	return nil
}

// Shutdown closes all resources of this instance. Background routines, such
// as pending session writes, finish before the database is closed.
func (b *Backend) Shutdown() error {
	if b.Housekeeping != nil {
		if err := b.Housekeeping.Stop(); err != nil {
			return err
		}
	}

	b.Background.Close()

	if err := b.DB.Close(); err != nil {
		return err
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}
