/*
 * Copyright 2023 The Yorkie Authors. All rights reserved.
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

// Package sessions provides the realtime editing sessions of the server.
// Each session owns one sequencer. Sequencers are kept in memory once used,
// written to the database after every accepted edit and evicted from memory
// by housekeeping once idle.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	gotime "time"

	"go.uber.org/zap"

	"github.com/yorkie-team/otsync/api/types"
	"github.com/yorkie-team/otsync/pkg/cmap"
	"github.com/yorkie-team/otsync/pkg/document"
	pkgerrors "github.com/yorkie-team/otsync/pkg/errors"
	"github.com/yorkie-team/otsync/pkg/ot/charwise"
	"github.com/yorkie-team/otsync/pkg/ot/linewise"
	"github.com/yorkie-team/otsync/pkg/ot/selection"
	"github.com/yorkie-team/otsync/pkg/sequencer"
	"github.com/yorkie-team/otsync/server/backend"
	"github.com/yorkie-team/otsync/server/backend/background"
	"github.com/yorkie-team/otsync/server/backend/database"
	"github.com/yorkie-team/otsync/server/backend/pubsub"
	"github.com/yorkie-team/otsync/server/backend/sync"
	"github.com/yorkie-team/otsync/server/logging"
)

// DefaultContent is the text a session starts with when it is created
// without content.
const DefaultContent = `@require: stdjabook

document (|
  title = {\SATySFi;概説};
  author = {Takashi SUWA};
  show-title = true;
  show-toc = false;
|) '<
    +p { Hello, \SATySFi; Playground! }
>`

// session is a sequencer held in memory.
type session struct {
	server *sequencer.Server

	// accessedAt is the unix nano time of the last read or write.
	accessedAt atomic.Int64
	// persisted is the latest version written to the database.
	persisted atomic.Int64
}

func newSession(server *sequencer.Server, persisted document.Version) *session {
	sess := &session{server: server}
	sess.persisted.Store(int64(persisted))
	sess.touch()
	return sess
}

func (s *session) touch() {
	s.accessedAt.Store(gotime.Now().UnixNano())
}

func (s *session) idleSince(now gotime.Time) gotime.Duration {
	return now.Sub(gotime.Unix(0, s.accessedAt.Load()))
}

// markPersisted records that version has been written.
func (s *session) markPersisted(version document.Version) {
	for {
		current := s.persisted.Load()
		if current >= int64(version) || s.persisted.CompareAndSwap(current, int64(version)) {
			return
		}
	}
}

// Service manages the sessions of the server.
type Service struct {
	be       *backend.Backend
	sessions *cmap.Map[*session]

	// encode builds the record written after an accepted edit.
	encode func(types.ID, *sequencer.Server, gotime.Time) (*database.SessionInfo, error)
}

// NewService creates a new instance of Service.
func NewService(be *backend.Backend) *Service {
	return &Service{
		be:       be,
		sessions: cmap.New[*session](),
		encode:   database.NewSessionInfo,
	}
}

// Create creates a new session of the given kind seeded with content. The
// seed is the first accepted edit, so a seeded session starts at version 1.
func (s *Service) Create(
	ctx context.Context,
	kind document.Kind,
	content string,
) (types.ID, document.Snapshot, error) {
	if kind == "" {
		kind = document.KindText
	}
	if content == "" {
		content = s.defaultContent()
	}

	server, err := sequencer.NewWithText(kind, content)
	if err != nil {
		return "", document.Snapshot{}, toStatusError(err)
	}

	id := types.NewID()
	info, err := database.NewSessionInfo(id, server, gotime.Now().UTC())
	if err != nil {
		return "", document.Snapshot{}, err
	}
	if err := s.be.DB.CreateSessionInfo(ctx, info); err != nil {
		return "", document.Snapshot{}, err
	}
	s.sessions.Set(id.String(), newSession(server, server.Version()))

	s.be.Metrics.AddSessionsCreated(s.be.Config.Hostname, kind)
	logging.From(ctx).Infof("session created: %s(%s) at v%d", id, kind, server.Version())

	return id, server.Latest(), nil
}

// GetLatestState returns the current snapshot of the session.
func (s *Service) GetLatestState(ctx context.Context, id types.ID) (document.Snapshot, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return document.Snapshot{}, err
	}

	locker := s.be.Lockers.Locker(sync.SessionKey(id))
	locker.RLock()
	defer s.runlock(ctx, locker)

	return sess.server.Latest(), nil
}

// GetPatch returns the composition of every operation accepted after since.
func (s *Service) GetPatch(
	ctx context.Context,
	id types.ID,
	since document.Version,
) (document.Patch, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return document.Patch{}, err
	}
	server := sess.server

	locker := s.be.Lockers.Locker(sync.SessionKey(id))
	locker.RLock()
	defer s.runlock(ctx, locker)

	patch, err := server.GetPatch(since)
	if err != nil {
		return document.Patch{}, toStatusError(fmt.Errorf("get patch of %s since v%d: %w", id, since, err))
	}

	s.be.Metrics.AddPatchSentVersions(s.be.Config.Hostname, server.Kind(), int(patch.Version-since))
	return patch, nil
}

// Modify submits op written against base to the session. It returns the
// version the operation was accepted as and the operation after rebasing.
// publisher names the client that sent it; its own watchers are not told.
func (s *Service) Modify(
	ctx context.Context,
	id types.ID,
	base document.Version,
	op document.Operation,
	publisher string,
) (document.Patch, error) {
	start := gotime.Now()
	sess, locker, err := s.lockLoaded(ctx, id)
	if err != nil {
		return document.Patch{}, err
	}

	patch, info, err := s.modifyLocked(ctx, id, sess, locker, base, op)
	if err != nil {
		return document.Patch{}, toStatusError(fmt.Errorf("modify %s at v%d: %w", id, base, err))
	}

	s.be.Metrics.AddModifyAccepted(s.be.Config.Hostname, op.Kind, int(patch.Version-base)-1)
	if logging.Enabled(zap.DebugLevel) {
		logging.From(ctx).Debugf("MODIFY: %s v%d -> v%d by %q", id, base, patch.Version, publisher)
	}

	if info != nil {
		s.persist(ctx, sess, info)
	}
	s.publish(ctx, types.SessionEvent{
		Type:      types.SessionChangedEvent,
		SessionID: id,
		Version:   patch.Version,
		Publisher: publisher,
	})

	s.be.Metrics.ObserveModifyResponseSeconds(gotime.Since(start).Seconds())
	return patch, nil
}

// Undo submits the inverse of the edit accepted as version. Edits accepted
// after version are kept; the inverse is rebased over them.
func (s *Service) Undo(
	ctx context.Context,
	id types.ID,
	version document.Version,
	publisher string,
) (document.Patch, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return document.Patch{}, err
	}

	locker := s.be.Lockers.Locker(sync.SessionKey(id))
	locker.RLock()
	inverse, err := sess.server.Inverse(version)
	s.runlock(ctx, locker)
	if err != nil {
		return document.Patch{}, toStatusError(fmt.Errorf("undo v%d of %s: %w", version, id, err))
	}

	logging.From(ctx).Infof("UNDO: %s v%d by %q", id, version, publisher)
	return s.Modify(ctx, id, version, inverse, publisher)
}

// modifyLocked runs op through the sequencer of the locked session and
// releases the lock. The returned info is nil when the new state could not
// be encoded; the edit stands and the next one writes the session.
func (s *Service) modifyLocked(
	ctx context.Context,
	id types.ID,
	sess *session,
	locker sync.Locker,
	base document.Version,
	op document.Operation,
) (document.Patch, *database.SessionInfo, error) {
	defer func() {
		if err := locker.Unlock(); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	patch, err := sess.server.Modify(base, op)
	if err != nil {
		return document.Patch{}, nil, err
	}

	info, err := s.encode(id, sess.server, gotime.Now().UTC())
	if err != nil {
		s.be.Metrics.AddPersistenceFailures(s.be.Config.Hostname)
		logging.From(ctx).Errorf("encode session %s at v%d: %v", id, patch.Version, err)
		return patch, nil, nil
	}
	return patch, info, nil
}

// List returns the summaries of the stored sessions in creation order.
func (s *Service) List(ctx context.Context) ([]types.SessionSummary, error) {
	infos, err := s.be.DB.FindSessionInfos(ctx, s.be.Config.SessionListLimit)
	if err != nil {
		return nil, err
	}

	summaries := make([]types.SessionSummary, 0, len(infos))
	for _, info := range infos {
		summaries = append(summaries, info.Summary())
	}
	return summaries, nil
}

// Watch subscribes subscriber to the events of the session. The other
// watchers are told that the session is watched.
func (s *Service) Watch(
	ctx context.Context,
	id types.ID,
	subscriber string,
) (*pubsub.Subscription, document.Version, error) {
	snapshot, err := s.GetLatestState(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	sub, err := s.be.PubSub.Subscribe(ctx, subscriber, id, s.be.Config.SubscriptionLimitPerSession)
	if err != nil {
		return nil, 0, err
	}
	s.be.Metrics.AddWatchSessionConnections(s.be.Config.Hostname)

	s.publish(ctx, types.SessionEvent{
		Type:      types.SessionWatchedEvent,
		SessionID: id,
		Version:   snapshot.Version,
		Publisher: subscriber,
	})
	return sub, snapshot.Version, nil
}

// Unwatch cancels the given subscription.
func (s *Service) Unwatch(ctx context.Context, id types.ID, sub *pubsub.Subscription) {
	s.be.PubSub.Unsubscribe(ctx, id, sub)
	s.be.Metrics.RemoveWatchSessionConnections(s.be.Config.Hostname)

	var version document.Version
	if sess, ok := s.sessions.Get(id.String()); ok {
		locker := s.be.Lockers.Locker(sync.SessionKey(id))
		locker.RLock()
		version = sess.server.Version()
		s.runlock(ctx, locker)
	}

	s.publish(ctx, types.SessionEvent{
		Type:      types.SessionUnwatchedEvent,
		SessionID: id,
		Version:   version,
		Publisher: sub.Subscriber(),
	})
}

// EvictIdle drops from memory the sessions that have not been used for
// idleTimeout, have no watchers and are fully written to the database. It
// evicts at most limit sessions and returns how many it evicted.
func (s *Service) EvictIdle(ctx context.Context, idleTimeout gotime.Duration, limit int) int {
	now := gotime.Now()
	evicted := 0
	for _, key := range s.sessions.Keys() {
		if evicted >= limit {
			break
		}

		sess, ok := s.sessions.Get(key)
		if !ok || sess.idleSince(now) < idleTimeout {
			continue
		}
		id := types.ID(key)
		if len(s.be.PubSub.Subscribers(id)) > 0 {
			continue
		}

		locker := s.be.Lockers.Locker(sync.SessionKey(id))
		if err := locker.TryLock(); err != nil {
			continue
		}
		if sess.persisted.Load() >= int64(sess.server.Version()) && sess.idleSince(now) >= idleTimeout {
			if s.sessions.Delete(key) {
				evicted++
			}
		}
		if err := locker.Unlock(); err != nil {
			logging.From(ctx).Error(err)
		}
	}

	if evicted > 0 {
		logging.From(ctx).Infof("HSKP: evicted %d idle sessions, %d in memory", evicted, s.sessions.Len())
	}
	return evicted
}

// Len returns the number of sessions held in memory.
func (s *Service) Len() int {
	return s.sessions.Len()
}

// lockLoaded loads the session and write-locks it. Housekeeping may evict a
// session between loading and locking, so the lookup is repeated until the
// locked session is the one in memory.
func (s *Service) lockLoaded(ctx context.Context, id types.ID) (*session, sync.Locker, error) {
	locker := s.be.Lockers.Locker(sync.SessionKey(id))
	for {
		sess, err := s.load(ctx, id)
		if err != nil {
			return nil, nil, err
		}

		locker.Lock()
		if current, ok := s.sessions.Get(id.String()); ok && current == sess {
			return sess, locker, nil
		}
		if err := locker.Unlock(); err != nil {
			logging.From(ctx).Error(err)
		}
	}
}

// load returns the session, reading it from the database when it is not in
// memory yet.
func (s *Service) load(ctx context.Context, id types.ID) (*session, error) {
	if err := id.Validate(); err != nil {
		return nil, pkgerrors.WithStatus(err, pkgerrors.ErrCodeInvalidArgument)
	}

	sess, _, err := s.sessions.GetOrInsert(id.String(), func() (*session, error) {
		info, err := s.be.DB.FindSessionInfoByID(ctx, id)
		if err != nil {
			return nil, err
		}

		server, err := info.Server()
		if err != nil {
			return nil, pkgerrors.WithStatus(err, pkgerrors.ErrCodeInternal)
		}

		s.be.Metrics.AddSessionsLoaded(s.be.Config.Hostname, info.Kind)
		logging.From(ctx).Infof("session loaded: %s(%s) at v%d", id, info.Kind, info.Version)
		return newSession(server, info.Version), nil
	})
	if err != nil {
		return nil, err
	}

	sess.touch()
	return sess, nil
}

// persist writes the session to the database. A write that arrives after a
// newer one is ignored by the database. Failures are logged and counted but
// do not fail the edit, which the sequencer has already accepted.
func (s *Service) persist(ctx context.Context, sess *session, info *database.SessionInfo) {
	ctx, cancel := context.WithTimeout(ctx, s.be.Config.ParsePersistTimeout())
	defer cancel()

	if _, err := s.be.DB.UpdateSessionInfo(ctx, info); err != nil {
		s.be.Metrics.AddPersistenceFailures(s.be.Config.Hostname)
		logging.From(ctx).Errorf("persist session %s at v%d: %v", info.ID, info.Version, err)
		return
	}
	sess.markPersisted(info.Version)
}

func (s *Service) publish(ctx context.Context, event types.SessionEvent) {
	task := background.Task{Type: "publish-session-event", SessionID: event.SessionID}
	if !s.be.Background.AttachGoroutine(func(ctx context.Context) {
		s.be.PubSub.Publish(ctx, event)
		s.be.Metrics.AddWatchSessionEvents(s.be.Config.Hostname, string(event.Type))
	}, task) {
		logging.From(ctx).Debugf("drop %s event of %s at v%d", event.Type, event.SessionID, event.Version)
	}
}

func (s *Service) runlock(ctx context.Context, locker sync.Locker) {
	if err := locker.RUnlock(); err != nil {
		logging.From(ctx).Error(err)
	}
}

func (s *Service) defaultContent() string {
	if s.be.Config.DefaultContent != "" {
		return s.be.Config.DefaultContent
	}
	return DefaultContent
}

// toStatusError attaches the status the transport reports err with.
func toStatusError(err error) error {
	switch {
	case errors.Is(err, sequencer.ErrVersionNotFound):
		return pkgerrors.WithStatus(err, pkgerrors.ErrCodeNotFound)
	case errors.Is(err, document.ErrLengthMismatch),
		errors.Is(err, document.ErrKindMismatch),
		errors.Is(err, document.ErrUnknownKind),
		errors.Is(err, document.ErrMissingValue),
		errors.Is(err, charwise.ErrInvalidSegment),
		errors.Is(err, charwise.ErrInvalidOffset),
		errors.Is(err, charwise.ErrInvalidText),
		errors.Is(err, charwise.ErrTooLong),
		errors.Is(err, linewise.ErrInvalidLine),
		errors.Is(err, selection.ErrInvalidOperation):
		return pkgerrors.WithStatus(err, pkgerrors.ErrCodeInvalidArgument)
	case errors.Is(err, sequencer.ErrInvalidState):
		return pkgerrors.WithStatus(err, pkgerrors.ErrCodeInternal)
	}
	return err
}
