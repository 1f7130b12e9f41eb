// Package session holds the SVG text a user selected, as an explicit state
// object passed from file intake to action dispatch.
//
// A Session replaces the page-global "current SVG" slot: intake writes the
// selected file into it, and each conversion reads a snapshot of SVGText.
// Sessions expire after a TTL. Storage backends:
//   - MemoryStore: in-process, for tests and the single-instance server
//   - FileStore: JSON files under ~/.config/svg2png/sessions (CLI)
//   - RedisStore: shared storage for multi-instance server deployments
//   - MongoStore: document storage with a TTL index
//
// # Usage
//
//	store := session.NewMemoryStore()
//
//	sess, err := session.New(session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	sess.Select("logo.svg", markup)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err = store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil || !sess.HasSelection() {
//	    // Nothing selected yet
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by operations that require an existing session.
var ErrNotFound = errors.New("session not found")

// Session stores the current selection of one user.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	SVGText   string    `json:"svg_text" bson:"svg_text"`
	FileName  string    `json:"file_name,omitempty" bson:"file_name,omitempty"`
	Size      int       `json:"size" bson:"size"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// HasSelection reports whether a file has been loaded into the session.
// An empty file counts as no selection.
func (s *Session) HasSelection() bool {
	return s != nil && s.SVGText != ""
}

// Select replaces the stored text with a newly selected file.
func (s *Session) Select(name, text string) {
	s.FileName = name
	s.SVGText = text
	s.Size = len(text)
	s.UpdatedAt = time.Now()
}

// Snapshot returns the stored text. Strings are immutable, so the returned
// value is unaffected by later calls to Select.
func (s *Session) Snapshot() string {
	if s == nil {
		return ""
	}
	return s.SVGText
}

// Extend pushes the expiry ttl into the future from now.
func (s *Session) Extend(ttl time.Duration) {
	s.ExpiresAt = time.Now().Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session, replacing any previous version.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for TTL-native backends).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID creates a random session ID.
func GenerateID() string {
	return uuid.NewString()
}

// New creates an empty session with a fresh ID.
func New(ttl time.Duration) (*Session, error) {
	return NewWithID(GenerateID(), ttl)
}

// NewWithID creates an empty session with the given ID.
func NewWithID(id string, ttl time.Duration) (*Session, error) {
	if id == "" {
		return nil, errors.New("session id cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}
