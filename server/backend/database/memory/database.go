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

// Package memory implements the database interface using in-memory database.
package memory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/server/backend/database"
)

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// CreateSessionInfo stores a new session.
func (d *DB) CreateSessionInfo(_ context.Context, info *database.SessionInfo) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblSessions, "id", info.ID.String())
	if err != nil {
		return fmt.Errorf("find session by id: %w", err)
	}
	if raw != nil {
		return fmt.Errorf("%s: %w", info.ID, database.ErrSessionAlreadyExists)
	}

	if err := txn.Insert(tblSessions, info.DeepCopy()); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	txn.Commit()

	return nil
}

// FindSessionInfoByID returns the session of the given ID.
func (d *DB) FindSessionInfoByID(_ context.Context, id types.ID) (*database.SessionInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblSessions, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find session by id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrSessionNotFound)
	}

	return raw.(*database.SessionInfo).DeepCopy(), nil
}

// UpdateSessionInfo replaces the stored session if info carries a newer
// version.
func (d *DB) UpdateSessionInfo(_ context.Context, info *database.SessionInfo) (bool, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblSessions, "id", info.ID.String())
	if err != nil {
		return false, fmt.Errorf("find session by id: %w", err)
	}
	if raw == nil {
		return false, fmt.Errorf("%s: %w", info.ID, database.ErrSessionNotFound)
	}

	stored := raw.(*database.SessionInfo)
	if stored.Version >= info.Version {
		return false, nil
	}

	updated := info.DeepCopy()
	updated.CreatedAt = stored.CreatedAt
	if err := txn.Insert(tblSessions, updated); err != nil {
		return false, fmt.Errorf("update session: %w", err)
	}
	txn.Commit()

	return true, nil
}

// FindSessionInfos returns at most limit sessions ordered by creation. IDs
// start with their creation time, so the id index keeps that order.
func (d *DB) FindSessionInfos(_ context.Context, limit int) ([]*database.SessionInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblSessions, "id")
	if err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}

	var infos []*database.SessionInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		if limit > 0 && len(infos) >= limit {
			break
		}
		infos = append(infos, raw.(*database.SessionInfo).DeepCopy())
	}

	return infos, nil
}
