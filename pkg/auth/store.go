package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoCredentials is returned when no stored session exists.
var ErrNoCredentials = errors.New("no stored credentials")

// CredentialStore abstracts session persistence.
// Implementations must be safe for concurrent use.
type CredentialStore interface {
	// Load retrieves the persisted session.
	// Returns ErrNoCredentials if nothing is stored.
	Load() (*Session, error)

	// Save persists the session, replacing any previous one.
	Save(session *Session) error

	// Clear removes the persisted session. Clearing an empty store is
	// not an error.
	Clear() error
}

// storedCredentials mirrors the two keys the product has always
// persisted: the raw token and the JSON-serialized user.
type storedCredentials struct {
	AuthToken string `json:"auth_token"`
	User      *User  `json:"user"`
}

// FileStore persists the session as a JSON file under a directory,
// typically ~/.postflow.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed credential store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".postflow")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential dir: %w", err)
	}

	return &FileStore{path: filepath.Join(dir, "credentials.json")}, nil
}

// Load retrieves the persisted session.
func (s *FileStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds storedCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.AuthToken == "" {
		return nil, ErrNoCredentials
	}

	return &Session{AccessToken: creds.AuthToken, User: creds.User}, nil
}

// Save persists the session. Credentials are written with a restrictive
// mode since they contain a live token.
func (s *FileStore) Save(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(storedCredentials{
		AuthToken: session.AccessToken,
		User:      session.User,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory credential store for testing.
type MemoryStore struct {
	session *Session
	mu      sync.Mutex
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load retrieves the stored session.
func (s *MemoryStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoCredentials
	}
	copied := *s.session
	return &copied, nil
}

// Save stores the session.
func (s *MemoryStore) Save(session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.session = &copied
	return nil
}

// Clear removes the stored session.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
