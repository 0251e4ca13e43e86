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

package client

import (
	"context"

	"github.com/yorkie-team/otsync/pkg/document"
)

// Connection is the channel a Client uses to talk to the sequencer of one
// session.
type Connection interface {
	// GetLatestState returns the current snapshot of the session.
	GetLatestState(ctx context.Context) (document.Snapshot, error)

	// GetPatchSince returns one operation that brings a document at the
	// given version up to the current version.
	GetPatchSince(ctx context.Context, since document.Version) (document.Patch, error)

	// SendOperation submits an operation made against the given base
	// version and returns the version it was accepted as, together with
	// the operation rebased onto the history the client had not seen.
	SendOperation(ctx context.Context, base document.Version, op document.Operation) (document.Patch, error)
}
