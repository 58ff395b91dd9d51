// Package session stores viewer sessions: the zoom, pan and selection of one
// person looking at the chart.
//
// Sessions outlive roster refreshes. When the roster changes, the saved
// [canvas.ViewState] is restored onto the new layout; a selection whose
// employee disappeared is dropped by [canvas.Restore].
//
// Implementations of [Store]:
//   - [MemoryStore]: in-process, for a single server
//   - [RedisStore]: shared across server instances
//   - [FileStore]: JSON files, for the terminal viewer
//
// # Usage
//
//	sess := session.New(canvasCfg.DefaultView(), session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orgtower/pkg/canvas"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 12 * time.Hour

// Session is one viewer's saved canvas.
type Session struct {
	ID         string           `json:"id" bson:"id"`
	View       canvas.ViewState `json:"view" bson:"view"`
	Gesture    canvas.Gesture   `json:"gesture" bson:"gesture"`
	RosterHash string           `json:"roster_hash,omitempty" bson:"roster_hash,omitempty"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" bson:"updated_at"`
	ExpiresAt  time.Time        `json:"expires_at" bson:"expires_at"`
}

// New creates a session with a random ID.
func New(view canvas.ViewState, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		View:      view,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch records an update and pushes the expiry ttl into the future.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now().UTC()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// TTL returns the time left before expiry, at least one second.
func (s *Session) TTL() time.Duration {
	return max(time.Until(s.ExpiresAt), time.Second)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session until its ExpiresAt.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (may be a no-op when the backend
	// expires keys itself).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
