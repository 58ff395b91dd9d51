package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/errors"
)

// isolate runs the test in an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Limits.MaxDepth != 5 || cfg.Limits.MaxChildren != 12 || cfg.Limits.MaxRoots != 6 {
		t.Errorf("limits = %+v", cfg.Limits)
	}
	if cfg.Canvas.DefaultZoom != 0.7 {
		t.Errorf("default zoom = %v", cfg.Canvas.DefaultZoom)
	}
	if cfg.Server.SessionTTL != 12*time.Hour {
		t.Errorf("session ttl = %v", cfg.Server.SessionTTL)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadDiscoversFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, FileName), "[server]\naddr = \":9999\"\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Server.Addr)
	}
	if cfg.Path != FileName {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load("nope.toml")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.toml")
	writeFile(t, path, `
[layout]
node_width = 240.0

[limits]
max_depth = 0

[canvas]
anchor = "cursor"
default_pan = { x = 10.0, y = 20.0 }

[server]
session_ttl = "30m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.NodeWidth != 240 || cfg.Layout.NodeHeight != 90 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Limits.MaxDepth != 0 || cfg.Limits.MaxChildren != 12 {
		t.Errorf("limits = %+v", cfg.Limits)
	}
	if cfg.Canvas.Anchor != canvas.AnchorCursor {
		t.Errorf("anchor = %q", cfg.Canvas.Anchor)
	}
	if p := cfg.Canvas.DefaultPan; p == nil || *p != (canvas.Point{X: 10, Y: 20}) {
		t.Errorf("default pan = %+v", cfg.Canvas.DefaultPan)
	}
	if cfg.Server.SessionTTL != 30*time.Minute {
		t.Errorf("session ttl = %v", cfg.Server.SessionTTL)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ORGTOWER_TEST_TOKEN", "s3cret")
	path := filepath.Join(dir, "c.toml")
	writeFile(t, path, "[source]\nlocation = \"https://hris.example.com\"\ntoken = \"${ORGTOWER_TEST_TOKEN}\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Token != "s3cret" {
		t.Errorf("token = %q", cfg.Source.Token)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	const key = "ORGTOWER_TEST_DOTENV"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	writeFile(t, filepath.Join(dir, ".env"), key+"=from-dotenv\n")
	path := filepath.Join(dir, "c.toml")
	writeFile(t, path, "[server]\ntoken = \"${"+key+"}\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Token != "from-dotenv" {
		t.Errorf("token = %q", cfg.Server.Token)
	}
	if !cfg.Server.AuthEnabled() {
		t.Error("AuthEnabled() = false with a token")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[server]\nport = 1\n", "server.port"},
		{"bad toml", "[server\n", ""},
		{"negative limit", "[limits]\nmax_roots = -1\n", ""},
		{"bad anchor", "[canvas]\nanchor = \"middle\"\n", ""},
		{"bad cache kind", "[cache]\nkind = \"disk\"\n", "cache"},
		{"redis cache without url", "[cache]\nkind = \"redis\"\n", "RedisURL"},
		{"redis sessions without url", "[server]\nsession_store = \"redis\"\n", "RedisURL"},
		{"short reload interval", "[realtime]\nreload_interval = \"10ms\"\n", "realtime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "c.toml")
			writeFile(t, path, tt.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %q, want INVALID_CONFIG (%v)", errors.GetCode(err), err)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
