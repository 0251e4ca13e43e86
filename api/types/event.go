package types

import "github.com/yorkie-team/otsync/pkg/document"

// SessionEventType represents the event that the server delivers to the
// watchers of a session.
type SessionEventType string

const (
	// SessionChangedEvent is an event indicating that the session was
	// modified and a new version is available.
	SessionChangedEvent SessionEventType = "session-changed"

	// SessionWatchedEvent is an event that occurs when a session is watched
	// by another client.
	SessionWatchedEvent SessionEventType = "session-watched"

	// SessionUnwatchedEvent is an event that occurs when a session is
	// unwatched by another client.
	SessionUnwatchedEvent SessionEventType = "session-unwatched"
)

// SessionEvent is an event delivered to the watchers of a session.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	SessionID ID               `json:"sessionId"`
	Version   document.Version `json:"version"`
	Publisher string           `json:"publisher,omitempty"`
}
