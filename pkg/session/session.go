// Package session keeps the live views of a server process.
//
// Each uploaded proof or model becomes a [Session] holding its view, keyed
// by a random UUID. Sessions expire after an idle TTL: every Get pushes the
// deadline out again, and Cleanup drops sessions nobody touched in time.
// State lives in memory only and is lost on restart.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.NewProof(view, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/prooftower/pkg/viewer"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Kind tells which view a session holds.
type Kind string

const (
	KindProof Kind = "proof"
	KindModel Kind = "model"
)

// Session is one open view.
type Session struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	TTL       time.Duration `json:"ttl"`
	ExpiresAt time.Time     `json:"expires_at"`
	CreatedAt time.Time     `json:"created_at"`
	// Source is the file the view was opened from, if any.
	Source string `json:"source,omitempty"`

	Proof *viewer.ProofView `json:"-"`
	Model *viewer.ModelView `json:"-"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// touch extends the idle deadline.
func (s *Session) touch(now time.Time) {
	s.ExpiresAt = now.Add(s.TTL)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID and extends its deadline.
	// Returns ErrNotFound if the session doesn't exist and ErrExpired if
	// it exists but has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions and returns how many were dropped.
	Cleanup(ctx context.Context) (int, error)
}

// DefaultTTL is the default idle duration of a session.
const DefaultTTL = 30 * time.Minute

// GenerateID returns a random session id.
func GenerateID() string { return uuid.NewString() }

func newSession(kind Kind, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		Kind:      kind,
		TTL:       ttl,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// NewProof wraps a proof view in a new session.
func NewProof(v *viewer.ProofView, ttl time.Duration) *Session {
	s := newSession(KindProof, ttl)
	s.Proof = v
	return s
}

// NewModel wraps a model view in a new session.
func NewModel(v *viewer.ModelView, ttl time.Duration) *Session {
	s := newSession(KindModel, ttl)
	s.Model = v
	return s
}
