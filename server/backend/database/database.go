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

// Package database provides the database interface for the otsync backend.
package database

import (
	"context"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/errors"
)

var (
	// ErrSessionNotFound is returned when the session could not be found.
	ErrSessionNotFound = errors.NotFound("session not found")

	// ErrSessionAlreadyExists is returned when the session already exists.
	ErrSessionAlreadyExists = errors.AlreadyExists("session already exists")
)

// Database represents database which reads or saves the sessions.
type Database interface {
	// Close all resources of this database.
	Close() error

	// CreateSessionInfo stores a new session.
	CreateSessionInfo(ctx context.Context, info *SessionInfo) error

	// FindSessionInfoByID returns the session of the given ID.
	FindSessionInfoByID(ctx context.Context, id types.ID) (*SessionInfo, error)

	// UpdateSessionInfo replaces the stored session if info carries a newer
	// version. It reports whether the session was replaced.
	UpdateSessionInfo(ctx context.Context, info *SessionInfo) (bool, error)

	// FindSessionInfos returns at most limit sessions ordered by creation,
	// oldest first. A non-positive limit returns every session.
	FindSessionInfos(ctx context.Context, limit int) ([]*SessionInfo, error)
}
