package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/orgtower/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFor(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDirFor(config.CacheConfig{Dir: "/srv/cache"})
	if err != nil || dir != "/srv/cache" {
		t.Errorf("explicit dir = %q, %v", dir, err)
	}
	dir, err = cacheDirFor(config.CacheConfig{})
	if err != nil || dir != filepath.Join(xdg, appName) {
		t.Errorf("default dir = %q, %v", dir, err)
	}
}

func TestSnapshotStoreDefaultsUnderCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if _, err := snapshotStore(config.SourceConfig{}); err != nil {
		t.Fatalf("snapshotStore() error: %v", err)
	}
	if _, err := snapshotStore(config.SourceConfig{SnapshotDir: t.TempDir()}); err != nil {
		t.Fatalf("snapshotStore(explicit) error: %v", err)
	}
}
