package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// FileStore keeps sessions as JSON files in a directory. The terminal
// viewer uses it to reopen the chart where the user left it.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based session store.
// If baseDir is empty, defaults to ~/.config/orgtower/sessions/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "orgtower", "sessions")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create session dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) sessionPath(id string) (string, error) {
	if err := errors.ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	path, err := s.sessionPath(id)
	if err != nil {
		return nil, nil
	}

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read session file")
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse session")
	}

	if sess.IsExpired() {
		s.mu.Lock()
		os.Remove(path)
		s.mu.Unlock()
		return nil, nil
	}
	return &sess, nil
}

func (s *FileStore) Set(_ context.Context, sess *Session) error {
	path, err := s.sessionPath(sess.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write session file")
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, err := s.sessionPath(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove session file")
	}
	return nil
}

func (s *FileStore) Cleanup(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read session dir")
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if now.After(sess.ExpiresAt) {
			os.Remove(path)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for session files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

// =============================================================================
// Terminal viewer convenience wrapper
// =============================================================================

const viewerSessionID = "terminal"

// ViewerStore remembers the terminal viewer's single session.
type ViewerStore struct {
	store *FileStore
	ttl   time.Duration
}

// NewViewerStore creates a store in the default session directory.
func NewViewerStore(ttl time.Duration) (*ViewerStore, error) {
	store, err := NewFileStore("")
	if err != nil {
		return nil, err
	}
	return &ViewerStore{store: store, ttl: ttl}, nil
}

// NewViewerStoreAt wraps an existing file store.
func NewViewerStoreAt(store *FileStore, ttl time.Duration) *ViewerStore {
	return &ViewerStore{store: store, ttl: ttl}
}

// Load returns the saved session, or nil if there is none.
func (v *ViewerStore) Load(ctx context.Context) (*Session, error) {
	return v.store.Get(ctx, viewerSessionID)
}

// Save stores sess as the viewer session and extends its expiry.
func (v *ViewerStore) Save(ctx context.Context, sess *Session) error {
	sess.ID = viewerSessionID
	sess.Touch(v.ttl)
	return v.store.Set(ctx, sess)
}

// Forget deletes the viewer session.
func (v *ViewerStore) Forget(ctx context.Context) error {
	return v.store.Delete(ctx, viewerSessionID)
}

// Path returns the session file path.
func (v *ViewerStore) Path() string {
	path, _ := v.store.sessionPath(viewerSessionID)
	return path
}
