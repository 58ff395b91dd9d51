// Package file loads rosters from JSON files and watches them for changes.
package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
)

// DefaultDebounce collapses the burst of events an editor produces for a
// single save.
const DefaultDebounce = 200 * time.Millisecond

// Source reads a roster file. The file holds either a JSON array of
// employees or an object with "employees" and "projects". A separate
// projects file may be attached with [WithProjects].
type Source struct {
	path     string
	projects string
	debounce time.Duration
	logger   *log.Logger
}

// Option configures a [Source].
type Option func(*Source)

// WithProjects reads projects from a second file holding a JSON array.
func WithProjects(path string) Option { return func(s *Source) { s.projects = path } }

// WithDebounce sets the quiet period [Source.Watch] waits for before reloading.
func WithDebounce(d time.Duration) Option { return func(s *Source) { s.debounce = d } }

// WithLogger sets the logger used by [Source.Watch].
func WithLogger(l *log.Logger) Option { return func(s *Source) { s.logger = l } }

// New returns a source reading path.
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:     path,
		debounce: DefaultDebounce,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "file:" followed by the absolute path.
func (s *Source) Name() string {
	if abs, err := filepath.Abs(s.path); err == nil {
		return "file:" + abs
	}
	return "file:" + s.path
}

// Path returns the roster file path.
func (s *Source) Path() string { return s.path }

// Load reads and validates the roster.
func (s *Source) Load(ctx context.Context) (*hris.Roster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	roster, err := hris.DecodeRoster(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "read %s", s.path)
	}

	if s.projects != "" {
		pf, err := open(s.projects)
		if err != nil {
			return nil, err
		}
		defer pf.Close()
		projects, err := hris.DecodeProjects(pf)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "read %s", s.projects)
		}
		roster.Projects = projects
	}

	info, err := f.Stat()
	if err == nil {
		roster.FetchedAt = info.ModTime().UTC()
	}
	return roster, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "roster file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	return f, nil
}

// ReloadFunc receives the result of every reload triggered by a change.
// A failed reload passes the error and a nil roster.
type ReloadFunc func(*hris.Roster, error)

// Watch reloads the roster whenever the roster or projects file changes and
// passes the result to fn. It blocks until ctx is cancelled.
//
// The parent directories are watched rather than the files, so editors that
// save by writing a temp file and renaming it over the original keep
// triggering reloads.
func (s *Source) Watch(ctx context.Context, fn ReloadFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer w.Close()

	targets := map[string]bool{}
	for _, p := range []string{s.path, s.projects} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", p)
		}
		targets[abs] = true
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", filepath.Dir(abs))
		}
	}

	s.logger.Info("watching roster", "path", s.path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("watch stopped", "path", s.path)
			return nil

		case <-fire:
			fire = nil
			roster, err := s.Load(ctx)
			if err != nil {
				s.logger.Warn("roster reload failed", "path", s.path, "err", err)
			} else {
				s.logger.Info("roster reloaded", "path", s.path, "employees", len(roster.Employees))
			}
			fn(roster, err)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("roster changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "err", werr)
		}
	}
}
