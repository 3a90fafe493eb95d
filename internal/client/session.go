// Package client is a Go client for the posts API. It owns the
// client-side session: a persisted token with a bounded retention
// window, a display profile with unbounded retention, and a transport
// that attaches the token outbound and tears the session down on 401.
package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/raaf17/assesment-test-imp/internal/models"
)

// sessionRecord is the persisted shape. The token carries its own
// retention deadline; the profile has none and survives until an
// explicit clear.
type sessionRecord struct {
	Token         string       `json:"token,omitempty"`
	TokenDeadline time.Time    `json:"tokenDeadline,omitempty"`
	Profile       *models.User `json:"profile,omitempty"`
}

// SessionStore persists the session record as a single JSON file, so
// a save or clear always covers both fields at once. The token
// retention window must not exceed the server-side token TTL;
// otherwise the client would believe it is authenticated after the
// server stopped accepting the token.
type SessionStore struct {
	mu        sync.Mutex
	path      string
	retention time.Duration
}

// NewSessionStore creates a store persisting to path. Tokens saved
// through it are treated as absent once retention has elapsed.
func NewSessionStore(path string, retention time.Duration) *SessionStore {
	return &SessionStore{path: path, retention: retention}
}

// Save writes both fields in one file write. It replaces whatever was
// stored before; last write wins.
func (s *SessionStore) Save(token string, profile *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := sessionRecord{
		Token:         token,
		TokenDeadline: time.Now().Add(s.retention),
		Profile:       profile,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load returns the current token and profile. A token past its
// retention deadline is reported as absent while the profile is still
// returned. A missing file is the not-logged-in state, not an error.
func (s *SessionStore) Load() (string, *models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.read()
	if err != nil {
		return "", nil, err
	}
	token := record.Token
	if token != "" && time.Now().After(record.TokenDeadline) {
		token = ""
	}
	return token, record.Profile, nil
}

// Token returns the current token, or "" when absent or expired.
func (s *SessionStore) Token() string {
	token, _, _ := s.Load()
	return token
}

// Clear removes both fields atomically. Clearing an absent session is
// a no-op.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsAuthenticatedLocally reports whether a token is present and within
// its retention window. It never validates the token; it exists only
// to skip a round trip before navigation, never to grant access.
func (s *SessionStore) IsAuthenticatedLocally() bool {
	return s.Token() != ""
}

func (s *SessionStore) read() (sessionRecord, error) {
	var record sessionRecord
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sessionRecord{}, nil
		}
		return sessionRecord{}, err
	}
	if err := json.Unmarshal(data, &record); err != nil {
		// A corrupt record is equivalent to no session.
		return sessionRecord{}, nil
	}
	return record, nil
}
