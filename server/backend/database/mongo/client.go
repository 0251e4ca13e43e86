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

// Package mongo implements database interfaces using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	gotime "time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/server/backend/database"
	"github.com/yorkie-team/otsync/server/logging"
)

// Client is a client that connects to Mongo DB and reads or saves sessions.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(conf.ConnectionURI).
		SetRegistry(NewRegistryBuilder().Build())

	if conf.MonitoringEnabled {
		var threshold gotime.Duration
		if conf.MonitoringSlowQueryThreshold != "" {
			var err error
			if threshold, err = gotime.ParseDuration(conf.MonitoringSlowQueryThreshold); err != nil {
				return nil, fmt.Errorf("parse slow query threshold: %w", err)
			}
		}

		monitor := NewQueryMonitor(&MonitorConfig{
			Enabled:            conf.MonitoringEnabled,
			SlowQueryThreshold: threshold,
		})
		clientOptions.SetMonitor(monitor.CreateCommandMonitor())
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, conf.ParsePingTimeout())
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if err := ensureIndexes(ctx, client.Database(conf.OTSyncDatabase)); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.OTSyncDatabase)

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}

	return nil
}

// CreateSessionInfo stores a new session.
func (c *Client) CreateSessionInfo(ctx context.Context, info *database.SessionInfo) error {
	if _, err := c.collection(ColSessions).InsertOne(ctx, info); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", info.ID, database.ErrSessionAlreadyExists)
		}
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// FindSessionInfoByID returns the session of the given ID.
func (c *Client) FindSessionInfoByID(ctx context.Context, id types.ID) (*database.SessionInfo, error) {
	result := c.collection(ColSessions).FindOne(ctx, bson.M{"_id": id})
	if errors.Is(result.Err(), mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", id, database.ErrSessionNotFound)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("find session by id: %w", result.Err())
	}

	info := &database.SessionInfo{}
	if err := result.Decode(info); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return info, nil
}

// UpdateSessionInfo replaces the stored session if info carries a newer
// version. The version condition is part of the filter, so concurrent
// writers never move a session back.
func (c *Client) UpdateSessionInfo(ctx context.Context, info *database.SessionInfo) (bool, error) {
	result, err := c.collection(ColSessions).UpdateOne(ctx, bson.M{
		"_id":     info.ID,
		"version": bson.M{"$lt": info.Version},
	}, bson.M{
		"$set": bson.M{
			"kind":       info.Kind,
			"version":    info.Version,
			"state":      info.State,
			"updated_at": info.UpdatedAt,
		},
	})
	if err != nil {
		return false, fmt.Errorf("update session: %w", err)
	}
	if result.MatchedCount > 0 {
		return true, nil
	}

	count, err := c.collection(ColSessions).CountDocuments(ctx, bson.M{"_id": info.ID})
	if err != nil {
		return false, fmt.Errorf("count session: %w", err)
	}
	if count == 0 {
		return false, fmt.Errorf("%s: %w", info.ID, database.ErrSessionNotFound)
	}

	return false, nil
}

// FindSessionInfos returns at most limit sessions ordered by creation.
func (c *Client) FindSessionInfos(ctx context.Context, limit int) ([]*database.SessionInfo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: int32(1)}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := c.collection(ColSessions).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}

	var infos []*database.SessionInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}

	return infos, nil
}

func (c *Client) collection(name string, opts ...*options.CollectionOptions) *mongo.Collection {
	return c.client.
		Database(c.config.OTSyncDatabase).
		Collection(name, opts...)
}
