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

// Package client provides the client side of a session. A Client keeps the
// last version confirmed by the server, at most one submitted operation and
// a buffer of local edits, and rebases them onto the edits of others.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yorkie-team/otsync/pkg/document"
	"github.com/yorkie-team/otsync/pkg/future"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
)

var (
	// ErrOutOfOrder is returned when a response or patch does not follow the
	// synced version. The client must Resync before it is used again.
	ErrOutOfOrder = errors.New("out of order")

	// ErrSubmissionOutstanding is returned when a network call is started
	// while another one has not been applied or cancelled yet.
	ErrSubmissionOutstanding = errors.New("submission outstanding")

	// ErrNothingToSend is returned when there is no operation to submit.
	ErrNothingToSend = errors.New("nothing to send")

	// ErrNoSubmission is returned when a response arrives while no
	// operation was submitted.
	ErrNoSubmission = errors.New("no submission to confirm")
)

// State is the synchronization state of a client.
type State int

const (
	// Synced means every local edit is confirmed by the server.
	Synced State = iota

	// AwaitingConfirm means one operation waits for the server.
	AwaitingConfirm

	// AwaitingWithBuffer means one operation waits for the server and
	// later edits are buffered behind it.
	AwaitingWithBuffer
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Synced:
		return "synced"
	case AwaitingConfirm:
		return "awaiting-confirm"
	case AwaitingWithBuffer:
		return "awaiting-with-buffer"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type call int

const (
	callNone call = iota
	callSubmit
	callPull
)

// Client is the client side of one session. It is not safe for concurrent
// use; the network calls it starts run on their own goroutines but only the
// Apply methods change its state.
type Client struct {
	conn   Connection
	key    string
	logger *zap.Logger

	// synced is the last snapshot confirmed by the server.
	synced document.Snapshot

	// local is synced with inflight and buffer applied.
	local document.Content

	inflight *document.Operation
	buffer   *document.Operation

	outstanding call
	broken      bool
}

// New creates a client of the session behind conn, starting from the
// latest snapshot of the server.
func New(ctx context.Context, conn Connection, opts ...Option) (*Client, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	key := options.Key
	if key == "" {
		key = uuid.New().String()
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	snapshot, err := conn.GetLatestState(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest state: %w", err)
	}
	if err := snapshot.Content.Validate(); err != nil {
		return nil, fmt.Errorf("get latest state: %w", err)
	}

	return &Client{
		conn:   conn,
		key:    key,
		logger: logger.With(zap.String("client", key)),
		synced: snapshot,
		local:  snapshot.Content.Clone(),
	}, nil
}

// Key returns the key of this client.
func (c *Client) Key() string {
	return c.key
}

// State returns the synchronization state of this client.
func (c *Client) State() State {
	switch {
	case c.buffer != nil:
		return AwaitingWithBuffer
	case c.inflight != nil:
		return AwaitingConfirm
	default:
		return Synced
	}
}

// Version returns the last version confirmed by the server.
func (c *Client) Version() document.Version {
	return c.synced.Version
}

// Synced returns the last snapshot confirmed by the server.
func (c *Client) Synced() document.Snapshot {
	return document.Snapshot{Version: c.synced.Version, Content: c.synced.Content.Clone()}
}

// Content returns the content as the user sees it, including the edits not
// confirmed yet.
func (c *Client) Content() document.Content {
	return c.local.Clone()
}

// Pending returns the edits not confirmed yet, oldest first.
func (c *Client) Pending() []document.Operation {
	var pending []document.Operation
	if c.inflight != nil {
		pending = append(pending, *c.inflight)
	}
	if c.buffer != nil {
		pending = append(pending, *c.buffer)
	}
	return pending
}

// IsBroken returns whether the client lost track of the server and needs a
// Resync.
func (c *Client) IsBroken() bool {
	return c.broken
}

// PushOperation records a local edit. The edit becomes the in-flight
// operation if there is none, otherwise it is composed into the buffer.
func (c *Client) PushOperation(op document.Operation) error {
	if c.broken {
		return ErrOutOfOrder
	}
	if err := op.Validate(); err != nil {
		return fmt.Errorf("push operation: %w", err)
	}

	local, err := document.Apply(c.local, op)
	if err != nil {
		return fmt.Errorf("push operation: %w", err)
	}
	if op.IsNoop() {
		return nil
	}

	switch {
	case c.buffer != nil:
		buffer, err := document.Compose(*c.buffer, op)
		if err != nil {
			return fmt.Errorf("push operation: %w", err)
		}
		c.buffer = &buffer
	case c.inflight != nil:
		c.buffer = &op
	default:
		c.inflight = &op
	}
	c.local = local

	c.logger.Debug("push operation", zap.Stringer("op", op), zap.Stringer("state", c.State()))
	return nil
}

// Edit records a local edit that turns the current text into text.
func (c *Client) Edit(text string) error {
	return c.PushOperation(document.Diff(c.local, text))
}

// Select records the selections of this client. Only selection documents
// carry selections.
func (c *Client) Select(sels ...selection.Selection) error {
	if c.local.Kind != document.KindSelection {
		return fmt.Errorf("select on %s: %w", c.local.Kind, document.ErrKindMismatch)
	}

	op := selection.Select(*c.local.Target, selection.Selections{c.key: sels})
	return c.PushOperation(document.SelectionOperation(op))
}

// SendToServer submits the in-flight operation. The returned future settles
// with the version the server accepted it as, which is handed back through
// ApplyResponse.
func (c *Client) SendToServer(ctx context.Context) *future.Future[document.Patch] {
	switch {
	case c.broken:
		return rejected[document.Patch](ErrOutOfOrder)
	case c.outstanding != callNone:
		return rejected[document.Patch](ErrSubmissionOutstanding)
	case c.inflight == nil:
		return rejected[document.Patch](ErrNothingToSend)
	}

	c.outstanding = callSubmit
	conn, base, op := c.conn, c.synced.Version, *c.inflight
	c.logger.Debug("send operation", zap.Stringer("base", base), zap.Stringer("op", op))
	return future.Go(func() (document.Patch, error) {
		return conn.SendOperation(ctx, base, op)
	})
}

// ApplyResponse confirms the in-flight operation, which the server accepted
// as the given version. The buffer becomes the next in-flight operation.
func (c *Client) ApplyResponse(version document.Version, op document.Operation) error {
	if c.outstanding != callSubmit {
		return ErrNoSubmission
	}
	c.outstanding = callNone

	if version != c.synced.Version.Next() {
		c.broken = true
		return fmt.Errorf("response %s after %s: %w", version, c.synced.Version, ErrOutOfOrder)
	}
	if err := op.Validate(); err != nil {
		c.broken = true
		return fmt.Errorf("apply response: %w", err)
	}

	content, err := document.Apply(c.synced.Content, op)
	if err != nil {
		c.broken = true
		return fmt.Errorf("apply response: %w", err)
	}

	c.synced = document.Snapshot{Version: version, Content: content}
	c.inflight, c.buffer = c.buffer, nil
	if err := c.rebuild(); err != nil {
		c.broken = true
		return fmt.Errorf("apply response: %w", err)
	}

	c.logger.Debug("operation confirmed", zap.Stringer("version", version), zap.Stringer("state", c.State()))
	return nil
}

// SendGetPatch asks the server for the edits made since the synced version.
// The returned future settles with a patch that is handed back through
// ApplyPatch.
func (c *Client) SendGetPatch(ctx context.Context) *future.Future[document.Patch] {
	switch {
	case c.broken:
		return rejected[document.Patch](ErrOutOfOrder)
	case c.outstanding != callNone:
		return rejected[document.Patch](ErrSubmissionOutstanding)
	}

	c.outstanding = callPull
	conn, since := c.conn, c.synced.Version
	return future.Go(func() (document.Patch, error) {
		return conn.GetPatchSince(ctx, since)
	})
}

// ApplyPatch applies an edit of others that leads from the synced version to
// the given version. The in-flight and buffered operations are rebased onto
// it, and the returned operation is the edit as seen from the local content.
func (c *Client) ApplyPatch(version document.Version, op document.Operation) (document.Operation, error) {
	if c.outstanding == callSubmit {
		return document.Operation{}, ErrSubmissionOutstanding
	}
	c.outstanding = callNone

	if c.broken {
		return document.Operation{}, ErrOutOfOrder
	}
	if version < c.synced.Version {
		c.broken = true
		return document.Operation{}, fmt.Errorf("patch %s after %s: %w", version, c.synced.Version, ErrOutOfOrder)
	}
	if err := op.Validate(); err != nil {
		c.broken = true
		return document.Operation{}, fmt.Errorf("apply patch: %w", err)
	}

	synced, err := document.Apply(c.synced.Content, op)
	if err != nil {
		c.broken = true
		return document.Operation{}, fmt.Errorf("apply patch: %w", err)
	}

	// Rebase the local operations in order; the incoming operation is
	// already sequenced, so it wins ties.
	incoming := op
	var inflight, buffer *document.Operation
	if c.inflight != nil {
		rebased, transformed, err := document.Transform(*c.inflight, incoming)
		if err != nil {
			c.broken = true
			return document.Operation{}, fmt.Errorf("apply patch: %w", err)
		}
		inflight, incoming = &rebased, transformed
	}
	if c.buffer != nil {
		rebased, transformed, err := document.Transform(*c.buffer, incoming)
		if err != nil {
			c.broken = true
			return document.Operation{}, fmt.Errorf("apply patch: %w", err)
		}
		buffer, incoming = &rebased, transformed
	}

	c.synced = document.Snapshot{Version: version, Content: synced}
	c.inflight, c.buffer = inflight, buffer
	if err := c.rebuild(); err != nil {
		c.broken = true
		return document.Operation{}, fmt.Errorf("apply patch: %w", err)
	}

	c.logger.Debug("patch applied", zap.Stringer("version", version), zap.Stringer("op", incoming))
	return incoming, nil
}

// rebuild recomputes the local content from the synced snapshot and the
// pending operations.
func (c *Client) rebuild() error {
	local := c.synced.Content.Clone()
	for _, op := range c.Pending() {
		var err error
		if local, err = document.Apply(local, op); err != nil {
			return err
		}
	}
	c.local = local
	return nil
}

// Cancel forgets the outstanding network call, for when its future failed.
// A cancelled submission may still have been accepted by the server, so the
// client needs a Resync after it.
func (c *Client) Cancel() {
	if c.outstanding == callSubmit {
		c.broken = true
	}
	c.outstanding = callNone
}

// Resync starts over from the latest snapshot of the server. The edits that
// were not confirmed are discarded and returned.
func (c *Client) Resync(ctx context.Context) ([]document.Operation, error) {
	snapshot, err := c.conn.GetLatestState(ctx)
	if err != nil {
		return nil, fmt.Errorf("resync: %w", err)
	}
	if err := snapshot.Content.Validate(); err != nil {
		return nil, fmt.Errorf("resync: %w", err)
	}

	discarded := c.Pending()
	c.synced = snapshot
	c.local = snapshot.Content.Clone()
	c.inflight, c.buffer = nil, nil
	c.outstanding = callNone
	c.broken = false

	c.logger.Info("resynced", zap.Stringer("version", snapshot.Version), zap.Int("discarded", len(discarded)))
	return discarded, nil
}

// Pull fetches and applies the edits of others. It returns the edit as seen
// from the local content.
func (c *Client) Pull(ctx context.Context) (document.Operation, error) {
	if c.outstanding != callNone {
		return document.Operation{}, ErrSubmissionOutstanding
	}

	patch, err := c.SendGetPatch(ctx).Await(ctx)
	if err != nil {
		c.Cancel()
		return document.Operation{}, err
	}
	return c.ApplyPatch(patch.Version, patch.Operation)
}

// Flush submits the in-flight operation and then the buffer until every
// local edit is confirmed.
func (c *Client) Flush(ctx context.Context) error {
	if c.outstanding != callNone {
		return ErrSubmissionOutstanding
	}

	for c.inflight != nil {
		patch, err := c.SendToServer(ctx).Await(ctx)
		if err != nil {
			c.Cancel()
			return err
		}
		if err := c.ApplyResponse(patch.Version, patch.Operation); err != nil {
			return err
		}
	}
	return nil
}

// Sync pulls the edits of others and then flushes the local edits.
func (c *Client) Sync(ctx context.Context) error {
	if _, err := c.Pull(ctx); err != nil {
		return err
	}
	return c.Flush(ctx)
}

func rejected[T any](err error) *future.Future[T] {
	f := future.New[T]()
	f.Reject(err)
	return f
}
