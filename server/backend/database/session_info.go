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

package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/document"
	"github.com/yorkie-team/otsync/pkg/sequencer"
)

// SessionInfo is a structure representing information of the session.
type SessionInfo struct {
	// ID is the unique ID of the session.
	ID types.ID `bson:"_id"`

	// Kind is the kind of the document of the session.
	Kind document.Kind `bson:"kind"`

	// Version is the current version of the document.
	Version document.Version `bson:"version"`

	// State is the encoded sequencer of the session, its whole history
	// included.
	State []byte `bson:"state"`

	// CreatedAt is the time when the session is created.
	CreatedAt time.Time `bson:"created_at"`

	// UpdatedAt is the time when the session is updated.
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewSessionInfo returns the record of the given sequencer.
func NewSessionInfo(id types.ID, server *sequencer.Server, now time.Time) (*SessionInfo, error) {
	info := &SessionInfo{
		ID:        id,
		CreatedAt: now,
	}
	if err := info.SetServer(server, now); err != nil {
		return nil, err
	}
	return info, nil
}

// SetServer encodes the given sequencer into this record.
func (i *SessionInfo) SetServer(server *sequencer.Server, now time.Time) error {
	state, err := json.Marshal(server)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", i.ID, err)
	}

	i.Kind = server.Kind()
	i.Version = server.Version()
	i.State = state
	i.UpdatedAt = now
	return nil
}

// Server decodes the sequencer stored in this record.
func (i *SessionInfo) Server() (*sequencer.Server, error) {
	server := &sequencer.Server{}
	if err := json.Unmarshal(i.State, server); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", i.ID, err)
	}
	return server, nil
}

// Summary returns the summary of the session.
func (i *SessionInfo) Summary() types.SessionSummary {
	return types.SessionSummary{
		ID:        i.ID,
		Kind:      i.Kind,
		Version:   i.Version,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// DeepCopy returns a deep copy of this SessionInfo.
func (i *SessionInfo) DeepCopy() *SessionInfo {
	if i == nil {
		return nil
	}

	return &SessionInfo{
		ID:        i.ID,
		Kind:      i.Kind,
		Version:   i.Version,
		State:     append([]byte(nil), i.State...),
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
