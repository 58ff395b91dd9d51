// Package config loads orgtower settings from a TOML file.
//
// Settings are read in three layers: built-in defaults, then the TOML file,
// then command-line flags applied by the caller. Before the file is parsed,
// .env files in the working directory are loaded into the process
// environment and ${VAR} references in the file are expanded, so secrets
// such as API tokens never need to be written into the file itself.
//
// # Example
//
//	[source]
//	location = "https://hris.example.com/api/v1"
//	token = "${HRIS_TOKEN}"
//
//	[limits]
//	max_depth = 6
//
//	[server]
//	addr = ":9000"
//	session_store = "redis"
//	redis_url = "${REDIS_URL}"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
)

// =============================================================================
// Constants
// =============================================================================

// FileName is the config file looked up when no path is given.
const FileName = "orgtower.toml"

// EnvFiles are loaded, in order, when present in the working directory.
// Variables already set in the environment win.
var EnvFiles = []string{".env", ".env.local"}

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNull   = "null"
)

// Session stores.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// =============================================================================
// Config
// =============================================================================

// Config is the complete orgtower configuration.
type Config struct {
	Layout   layout.Config  `toml:"layout"`
	Limits   orgtree.Limits `toml:"limits"`
	Canvas   canvas.Config  `toml:"canvas"`
	Server   ServerConfig   `toml:"server"`
	Cache    CacheConfig    `toml:"cache"`
	Source   SourceConfig   `toml:"source"`
	Realtime RealtimeConfig `toml:"realtime"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// ServerConfig configures `orgtower serve`.
type ServerConfig struct {
	Addr           string        `toml:"addr"`
	Token          string        `toml:"token"`
	SessionTTL     time.Duration `toml:"session_ttl"`
	SessionStore   string        `toml:"session_store"`
	RedisURL       string        `toml:"redis_url"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout"`
}

// AuthEnabled reports whether requests must carry the bearer token.
func (c ServerConfig) AuthEnabled() bool { return c.Token != "" }

// Validate checks the server section.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.SessionTTL, validation.Min(time.Second)),
		validation.Field(&c.SessionStore, validation.Required, validation.In(SessionMemory, SessionRedis)),
		validation.Field(&c.RedisURL, validation.When(c.SessionStore == SessionRedis, validation.Required)),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
	)
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Kind     string `toml:"kind"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// Validate checks the cache section.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Kind, validation.Required, validation.In(CacheFile, CacheMemory, CacheRedis, CacheNull)),
		validation.Field(&c.RedisURL, validation.When(c.Kind == CacheRedis, validation.Required)),
	)
}

// SourceConfig locates the roster. Location is a file path, an http(s) URL
// of the HRIS API, or a mongodb URI.
type SourceConfig struct {
	Location    string        `toml:"location"`
	Projects    string        `toml:"projects"`
	Token       string        `toml:"token"`
	Database    string        `toml:"database"`
	Collection  string        `toml:"collection"`
	Timeout     time.Duration `toml:"timeout"`
	MaxStale    time.Duration `toml:"max_stale"`
	SnapshotDir string        `toml:"snapshot_dir"`
}

// Validate checks the source section. An empty location is allowed; the
// CLI then requires a positional argument.
func (c SourceConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// RealtimeConfig controls roster refresh while serving.
type RealtimeConfig struct {
	Enabled bool `toml:"enabled"`
	// Watch reloads file sources when the file changes.
	Watch bool `toml:"watch"`
	// ReloadInterval polls http and mongo sources; zero disables polling.
	ReloadInterval time.Duration `toml:"reload_interval"`
}

// Validate checks the realtime section.
func (c RealtimeConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ReloadInterval, validation.When(c.ReloadInterval != 0, validation.Min(time.Second))),
	)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: layout.DefaultConfig(),
		Limits: orgtree.DefaultLimits(),
		Canvas: canvas.DefaultConfig(),
		Server: ServerConfig{
			Addr:         ":8080",
			SessionTTL:   12 * time.Hour,
			SessionStore: SessionMemory,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Cache: CacheConfig{
			Kind:   CacheFile,
			Prefix: "orgtower:",
		},
		Realtime: RealtimeConfig{
			Enabled: true,
			Watch:   true,
		},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	checks := []struct {
		section string
		fn      func() error
	}{
		{"layout", c.Layout.Validate},
		{"limits", c.Limits.Validate},
		{"canvas", c.Canvas.Validate},
		{"server", c.Server.Validate},
		{"cache", c.Cache.Validate},
		{"source", c.Source.Validate},
		{"realtime", c.Realtime.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			if errors.GetCode(err) != "" {
				return err
			}
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[%s]", chk.section)
		}
	}
	return nil
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the config at path on top of the defaults. With an empty path
// the file named [FileName] in the working directory and then in the user
// config directory is used when it exists; otherwise the defaults are
// returned. An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}
	cfg := Default()

	if path == "" {
		path = discover()
		if path == "" {
			return cfg, cfg.Validate()
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode expands ${VAR} references in text and decodes it into cfg. Keys
// that match no setting are rejected.
func Decode(text string, cfg *Config) error {
	md, err := toml.Decode(os.ExpandEnv(text), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadEnv loads those of [EnvFiles] that exist in the working directory.
func LoadEnv() error {
	var existing []string
	for _, f := range EnvFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load env files")
	}
	return nil
}

// Dir returns the user config directory (~/.config/orgtower).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, "orgtower"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "orgtower"), nil
}

func discover() string {
	candidates := []string{FileName}
	if dir, err := Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
