package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Snapshots stores the last successful response for each key as a JSON file.
//
// Each entry is stored in the snapshot directory under a SHA-256 hash of
// its key, so any string is a safe key. Entries never expire on their own;
// [Snapshots.Load] reports each entry's age and callers decide whether it is
// still usable.
//
// Snapshots is not goroutine-safe for writes to the same key, but separate
// processes may share a directory because writes go through a rename.
type Snapshots struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewSnapshots creates a store in dir, or in ~/.cache/orgtower/snapshots
// when dir is empty. The directory is created if needed.
func NewSnapshots(dir string) (*Snapshots, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "orgtower", "snapshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Snapshots{dir: dir, now: time.Now}, nil
}

// Dir returns the snapshot directory.
func (s *Snapshots) Dir() string { return s.dir }

// Save marshals v as the snapshot for key, replacing any earlier one.
func (s *Snapshots) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	path := s.keyPath(key)
	tmp, err := os.CreateTemp(s.dir, ".snap-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load unmarshals the snapshot for key into v and returns its age.
//
// Return values:
//   - (age, true, nil): a snapshot exists and was decoded into v.
//   - (0, false, nil): no snapshot exists; v is unchanged.
//   - (0, false, err): the snapshot could not be read or decoded.
func (s *Snapshots) Load(key string, v any) (time.Duration, bool, error) {
	path := s.keyPath(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return 0, false, err
	}
	return s.now().Sub(info.ModTime()), true, nil
}

// Namespace returns a view of the store that prefixes every key.
// Calls can be chained: Namespace("hris:").Namespace("flat:").
func (s *Snapshots) Namespace(prefix string) *Snapshots {
	return &Snapshots{dir: s.dir, prefix: s.prefix + prefix, now: s.now}
}

func (s *Snapshots) keyPath(key string) string {
	h := sha256.Sum256([]byte(s.prefix + key))
	return filepath.Join(s.dir, hex.EncodeToString(h[:])+".json")
}
