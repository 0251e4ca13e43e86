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

package types

import (
	"time"

	"github.com/yorkie-team/otsync/pkg/document"
)

// SessionSummary represents a summary of a session.
type SessionSummary struct {
	// ID is the unique identifier of the session.
	ID ID `json:"id"`

	// Kind is the kind of the document in the session.
	Kind document.Kind `json:"kind"`

	// Version is the current version of the session.
	Version document.Version `json:"version"`

	// CreatedAt is the time when the session was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the time when the session was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateSessionRequest is the body of a request that creates a session.
type CreateSessionRequest struct {
	// Kind is the kind of the document. The server picks text when empty.
	Kind string `json:"kind" validate:"omitempty,document_kind"`

	// Content is the initial text of the document. The server seeds a
	// default snippet when it is empty.
	Content string `json:"content"`
}

// CreateSessionResponse is the body of a response to a created session.
type CreateSessionResponse struct {
	ID       ID                `json:"id"`
	Snapshot document.Snapshot `json:"snapshot"`
}

// SendOperationRequest is the body of a request that submits an operation
// made against the given base version.
type SendOperationRequest struct {
	Version   document.Version    `json:"version"`
	Operation *document.Operation `json:"operation" validate:"required"`
}

// UndoRequest is the body of a request that undoes the edit accepted as
// the given version.
type UndoRequest struct {
	Version document.Version `json:"version" validate:"min=1"`
}

// ListSessionsResponse is the body of a response that lists sessions.
type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
