/*
 * Copyright 2024 The Yorkie Authors. All rights reserved.
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

// Package sequencer orders the operations of a document. Every accepted
// operation gets the next version; an operation written against an older
// version is rebased over everything accepted since.
package sequencer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yorkie-team/otsync/pkg/document"
)

var (
	// ErrVersionNotFound is returned when a version is newer than the
	// current version.
	ErrVersionNotFound = errors.New("version not found")

	// ErrInvalidState is returned when a decoded state is inconsistent.
	ErrInvalidState = errors.New("invalid state")
)

// Server keeps the history of a document and its current snapshot.
// history[i] is the operation that produced version i+1, so the current
// version always equals the length of the history.
//
// Server is not safe for concurrent use; callers serialize access per
// document.
type Server struct {
	kind    document.Kind
	history []document.Operation
	current document.Snapshot
}

// New creates a server for an empty document of the given kind.
func New(kind document.Kind) (*Server, error) {
	content, err := document.NewContent(kind)
	if err != nil {
		return nil, err
	}

	return &Server{
		kind:    kind,
		current: document.Snapshot{Version: document.InitialVersion, Content: content},
	}, nil
}

// NewWithText creates a server whose first accepted operation inserts text.
// The empty text leaves the document at the initial version.
func NewWithText(kind document.Kind, text string) (*Server, error) {
	s, err := New(kind)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return s, nil
	}

	if _, err := s.Modify(document.InitialVersion, document.Diff(s.current.Content, text)); err != nil {
		return nil, fmt.Errorf("seed %s document: %w", kind, err)
	}
	return s, nil
}

// Kind returns the kind of the document.
func (s *Server) Kind() document.Kind {
	return s.kind
}

// Latest returns the current snapshot.
func (s *Server) Latest() document.Snapshot {
	return document.Snapshot{
		Version: s.current.Version,
		Content: s.current.Content.Clone(),
	}
}

// Version returns the current version.
func (s *Server) Version() document.Version {
	return s.current.Version
}

// Modify accepts an operation written against the base version. If other
// operations were accepted after base, op is transformed past them first.
// It returns the new version and the operation as it was applied.
//
// Nothing changes when an error is returned.
func (s *Server) Modify(base document.Version, op document.Operation) (document.Patch, error) {
	if err := op.Validate(); err != nil {
		return document.Patch{}, err
	}
	if op.Kind != s.kind {
		return document.Patch{}, fmt.Errorf("modify %s document with %s: %w", s.kind, op.Kind, document.ErrKindMismatch)
	}
	if base > s.current.Version {
		return document.Patch{}, fmt.Errorf("base %d beyond %d: %w", base, s.current.Version, ErrVersionNotFound)
	}

	rebased := op
	if base < s.current.Version {
		catchUp, err := s.compose(base, s.current.Version)
		if err != nil {
			return document.Patch{}, err
		}
		if rebased, _, err = document.Transform(op, catchUp); err != nil {
			return document.Patch{}, fmt.Errorf("rebase from %d to %d: %w", base, s.current.Version, err)
		}
	}

	content, err := document.Apply(s.current.Content, rebased)
	if err != nil {
		return document.Patch{}, fmt.Errorf("apply at %d: %w", s.current.Version, err)
	}

	s.history = append(s.history, rebased)
	s.current = document.Snapshot{
		Version: s.current.Version.Next(),
		Content: content,
	}

	return document.Patch{Version: s.current.Version, Operation: rebased}, nil
}

// GetPatch returns the current version and a single operation that brings a
// document at version since up to it. It returns the identity when since is
// the current version.
func (s *Server) GetPatch(since document.Version) (document.Patch, error) {
	if since > s.current.Version {
		return document.Patch{}, fmt.Errorf("since %d beyond %d: %w", since, s.current.Version, ErrVersionNotFound)
	}
	if since == s.current.Version {
		return document.Patch{
			Version:   s.current.Version,
			Operation: document.Identity(s.current.Content),
		}, nil
	}

	op, err := s.compose(since, s.current.Version)
	if err != nil {
		return document.Patch{}, err
	}
	return document.Patch{Version: s.current.Version, Operation: op}, nil
}

// History returns the operations that produced versions from+1 to to.
func (s *Server) History(from, to document.Version) ([]document.Operation, error) {
	if to > s.current.Version {
		return nil, fmt.Errorf("history to %d beyond %d: %w", to, s.current.Version, ErrVersionNotFound)
	}
	if from > to {
		return nil, fmt.Errorf("history from %d after %d: %w", from, to, ErrVersionNotFound)
	}

	ops := make([]document.Operation, to-from)
	copy(ops, s.history[from:to])
	return ops, nil
}

// SnapshotAt returns the document as it was at version.
func (s *Server) SnapshotAt(version document.Version) (document.Snapshot, error) {
	if version == s.current.Version {
		return s.Latest(), nil
	}

	ops, err := s.History(document.InitialVersion, version)
	if err != nil {
		return document.Snapshot{}, err
	}
	content, err := document.NewContent(s.kind)
	if err != nil {
		return document.Snapshot{}, err
	}
	replayed, err := document.ComposeAll(s.kind, content.Len(), ops...)
	if err != nil {
		return document.Snapshot{}, fmt.Errorf("replay to %d: %w", version, err)
	}
	if content, err = document.Apply(content, replayed); err != nil {
		return document.Snapshot{}, fmt.Errorf("replay to %d: %w", version, err)
	}
	return document.Snapshot{Version: version, Content: content}, nil
}

// Inverse returns the operation that undoes the edit accepted as version.
// It applies to the document at version; submitting it with version as the
// base rebases it over everything accepted since.
func (s *Server) Inverse(version document.Version) (document.Operation, error) {
	if version == document.InitialVersion {
		return document.Operation{}, fmt.Errorf("inverse of %d: %w", version, ErrVersionNotFound)
	}

	ops, err := s.History(version-1, version)
	if err != nil {
		return document.Operation{}, err
	}
	before, err := s.SnapshotAt(version - 1)
	if err != nil {
		return document.Operation{}, err
	}

	inverse, err := document.Invert(before.Content, ops[0])
	if err != nil {
		return document.Operation{}, fmt.Errorf("invert %d: %w", version, err)
	}
	return inverse, nil
}

// compose returns the composition of history[from:to]. from must be less
// than to.
func (s *Server) compose(from, to document.Version) (document.Operation, error) {
	composed := s.history[from]
	for _, op := range s.history[from+1 : to] {
		var err error
		if composed, err = document.Compose(composed, op); err != nil {
			return document.Operation{}, fmt.Errorf("compose history %d..%d: %w", from, to, err)
		}
	}
	return composed, nil
}

type state struct {
	Kind    document.Kind        `json:"kind"`
	History []document.Operation `json:"history"`
	Current document.Snapshot    `json:"current"`
}

// MarshalJSON encodes the whole state of the server.
func (s *Server) MarshalJSON() ([]byte, error) {
	history := s.history
	if history == nil {
		history = []document.Operation{}
	}
	return json.Marshal(state{Kind: s.kind, History: history, Current: s.current})
}

// UnmarshalJSON decodes a state produced by MarshalJSON.
func (s *Server) UnmarshalJSON(data []byte) error {
	var decoded state
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("unmarshal server state: %w", err)
	}

	if _, err := document.ParseKind(string(decoded.Kind)); err != nil {
		return err
	}
	if decoded.Current.Content.Kind != decoded.Kind {
		return fmt.Errorf("content of kind %s: %w", decoded.Current.Content.Kind, ErrInvalidState)
	}
	if err := decoded.Current.Content.Validate(); err != nil {
		return err
	}
	if int(decoded.Current.Version) != len(decoded.History) {
		return fmt.Errorf("version %d with %d operations: %w", decoded.Current.Version, len(decoded.History), ErrInvalidState)
	}
	for i, op := range decoded.History {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("history %d: %w", i, err)
		}
		if op.Kind != decoded.Kind {
			return fmt.Errorf("history %d of kind %s: %w", i, op.Kind, ErrInvalidState)
		}
	}

	s.kind = decoded.Kind
	s.history = decoded.History
	s.current = decoded.Current
	return nil
}
