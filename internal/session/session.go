// Package session keeps the Swift credentials of logged in browsers
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
	"github.com/andresuchdata/swiftbrowser/internal/swift"
)

// ErrNotFound is returned for unknown or expired session ids
var ErrNotFound = errors.New("session not found")

// Session is the server side state behind the session cookie
type Session struct {
	ID         string         `json:"id"`
	Username   string         `json:"username,omitempty"`
	AuthToken  string         `json:"auth_token,omitempty"`
	StorageURL string         `json:"storage_url,omitempty"`
	Flashes    []domain.Flash `json:"flashes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	dirty      bool
	previousID string
}

// New creates an anonymous session with a fresh id
func New() *Session {
	return WithID(uuid.NewString())
}

// WithID creates an anonymous session that reuses id, e.g. the cookie of
// a browser whose session was never stored
func WithID(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		dirty:     true,
	}
}

// Authenticated reports whether Swift credentials are attached
func (s *Session) Authenticated() bool {
	return s.AuthToken != "" && s.StorageURL != ""
}

// Credentials returns the Swift credentials of the session
func (s *Session) Credentials() swift.Credentials {
	return swift.Credentials{Username: s.Username, StorageURL: s.StorageURL, Token: s.AuthToken}
}

// Login attaches credentials. The id rotates so a cookie planted before
// login cannot ride the new session.
func (s *Session) Login(creds swift.Credentials) {
	s.rotate()
	s.Username = creds.Username
	s.AuthToken = creds.Token
	s.StorageURL = creds.StorageURL
}

// Logout drops the credentials but keeps pending flashes.
// Anonymous sessions are left untouched.
func (s *Session) Logout() {
	if s.Username == "" && s.AuthToken == "" && s.StorageURL == "" {
		return
	}
	s.rotate()
	s.Username = ""
	s.AuthToken = ""
	s.StorageURL = ""
}

func (s *Session) rotate() {
	if s.previousID == "" {
		s.previousID = s.ID
	}
	s.ID = uuid.NewString()
	s.dirty = true
}

// Empty reports whether the session holds nothing worth storing
func (s *Session) Empty() bool {
	return s.Username == "" && !s.Authenticated() && len(s.Flashes) == 0
}

// AddFlash queues a message for the next rendered page
func (s *Session) AddFlash(level domain.FlashLevel, message string) {
	s.Flashes = append(s.Flashes, domain.Flash{Level: level, Message: message})
	s.dirty = true
}

// AddFlashLink queues a message that links somewhere
func (s *Session) AddFlashLink(level domain.FlashLevel, message, link string) {
	s.Flashes = append(s.Flashes, domain.Flash{Level: level, Message: message, Link: link})
	s.dirty = true
}

// PopFlashes returns and clears the queued messages
func (s *Session) PopFlashes() []domain.Flash {
	flashes := s.Flashes
	if len(flashes) > 0 {
		s.Flashes = nil
		s.dirty = true
	}
	return flashes
}

// Dirty reports whether the session changed since it was loaded
func (s *Session) Dirty() bool {
	return s.dirty
}

// PreviousID is the id the session had before Login rotated it
func (s *Session) PreviousID() string {
	return s.previousID
}

// Saved marks the session as persisted
func (s *Session) Saved() {
	s.dirty = false
	s.previousID = ""
}

// Store persists sessions between requests
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	// Save stores s for ttl, or for the store default when ttl is zero
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
