// Package httpapi loads rosters from the HRIS REST API.
//
// The API exposes the flat employee list at {base}/org-chart/flat and the
// nested project view at {base}/org-chart/projects. Both are fetched on
// every load; a missing projects endpoint is treated as "no projects".
//
// When the API cannot be reached, the last successful response is served
// from a [httputil.Snapshots] store, provided it is younger than MaxStale.
package httpapi

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/httputil"
)

// API paths relative to the base URL.
const (
	PathFlat     = "/org-chart/flat"
	PathProjects = "/org-chart/projects"
)

// DefaultMaxStale bounds the age of a snapshot served during an outage.
const DefaultMaxStale = 24 * time.Hour

// Config configures a [Source].
type Config struct {
	BaseURL  string        // API root, e.g. https://hris.example.com/api/v1
	Token    string        // Optional bearer token
	Timeout  time.Duration // Per-request timeout; httputil.DefaultTimeout when zero
	MaxStale time.Duration // Oldest usable snapshot; DefaultMaxStale when zero, negative disables
	Logger   *log.Logger
}

// Source fetches rosters over HTTP.
type Source struct {
	base      string
	client    *httputil.Client
	snapshots *httputil.Snapshots
	maxStale  time.Duration
	logger    *log.Logger
}

// New returns a source for cfg. snaps may be nil to disable the outage
// fallback.
func New(cfg Config, snaps *httputil.Snapshots) (*Source, error) {
	if err := errors.ValidateURL(cfg.BaseURL); err != nil {
		return nil, err
	}
	opts := []httputil.ClientOption{httputil.WithBearerToken(cfg.Token)}
	if cfg.Timeout > 0 {
		opts = append(opts, httputil.WithHTTPClient(httputil.NewHTTPClient(cfg.Timeout)))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	maxStale := cfg.MaxStale
	if maxStale == 0 {
		maxStale = DefaultMaxStale
	}
	s := &Source{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		client:   httputil.NewClient(opts...),
		maxStale: maxStale,
		logger:   logger,
	}
	if snaps != nil {
		s.snapshots = snaps.Namespace(s.base + ":")
	}
	return s, nil
}

// Name returns "http:" followed by the base URL without credentials.
func (s *Source) Name() string {
	u, err := url.Parse(s.base)
	if err != nil {
		return "http:" + s.base
	}
	u.User = nil
	return "http:" + u.String()
}

// Load fetches employees and projects.
func (s *Source) Load(ctx context.Context) (*hris.Roster, error) {
	roster := &hris.Roster{}
	if err := s.fetch(ctx, PathFlat, &roster.Employees); err != nil {
		return nil, err
	}
	if err := s.fetch(ctx, PathProjects, &roster.Projects); err != nil {
		if !errors.Is(err, errors.ErrCodeNotFound) {
			return nil, err
		}
		roster.Projects = nil
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	roster.FetchedAt = time.Now().UTC()
	return roster, nil
}

func (s *Source) fetch(ctx context.Context, path string, v any) error {
	err := s.client.Get(ctx, s.base+path, v)
	if err == nil {
		if s.snapshots != nil {
			if err := s.snapshots.Save(path, v); err != nil {
				s.logger.Warn("save snapshot", "path", path, "err", err)
			}
		}
		return nil
	}
	if !s.usableSnapshotFor(err) {
		return err
	}
	age, ok, serr := s.snapshots.Load(path, v)
	if serr != nil || !ok || age > s.maxStale {
		return err
	}
	s.logger.Warn("HRIS unreachable, serving snapshot", "path", path, "age", age.Round(time.Second), "err", err)
	return nil
}

// usableSnapshotFor reports whether err is an outage a snapshot may cover.
// Auth failures and malformed payloads are never masked.
func (s *Source) usableSnapshotFor(err error) bool {
	if s.snapshots == nil || s.maxStale < 0 {
		return false
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return true
	}
	return false
}
