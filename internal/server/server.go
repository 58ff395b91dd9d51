// Package server implements `orgtower serve`: the org-chart HTTP API, the
// realtime refresh socket and remote viewer sessions.
//
// The server holds one roster snapshot at a time. [Server.Reload] replaces
// it wholesale and announces the change to websocket clients; handlers only
// ever read the current snapshot, so a reload never exposes a half-built
// tree.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/chart"
	oterrors "github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/realtime"
	"github.com/matzehuels/orgtower/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

const (
	// searchLimit caps /org-chart/search results.
	searchLimit = 20

	// Corporate tree depth bounds for /org-chart/corporate.
	defaultCorporateDepth = 3
	maxCorporateDepth     = 10

	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
)

// =============================================================================
// Options
// =============================================================================

// Options configures a [Server]. Zero fields take defaults.
type Options struct {
	Addr  string
	Token string

	Limits orgtree.Limits
	Layout layout.Config
	Canvas canvas.Config

	// Runner caches layouts and artifacts; a runner without cache is used
	// when nil.
	Runner *pipeline.Runner

	// Sessions stores viewer sessions; an in-memory store when nil.
	Sessions   session.Store
	SessionTTL time.Duration

	// Hub serves /api/v1/ws; a new hub when nil.
	Hub *realtime.Hub

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	o.Layout = o.Layout.WithDefaults()
	o.Canvas = o.Canvas.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Runner == nil {
		o.Runner = pipeline.NewRunner(nil, nil, o.Logger)
	}
	if o.Sessions == nil {
		o.Sessions = session.NewMemoryStore()
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = session.DefaultTTL
	}
	if o.Hub == nil {
		o.Hub = realtime.NewHub(realtime.WithHubLogger(o.Logger))
	}
	return o
}

// =============================================================================
// Server
// =============================================================================

// Server serves one roster source.
type Server struct {
	opts   Options
	src    pipeline.RosterSource
	logger *log.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// snapshot is everything derived from one roster.
type snapshot struct {
	roster   *hris.Roster
	hash     string
	forest   *orgtree.Forest
	layout   *layout.Layout
	chart    chart.Chart
	loadedAt time.Time
}

// New creates a server for src. Call [Server.Reload] before serving.
func New(src pipeline.RosterSource, opts Options) *Server {
	opts = opts.withDefaults()
	return &Server{
		opts:   opts,
		src:    src,
		logger: opts.Logger.WithPrefix("server"),
	}
}

// Hub returns the realtime hub.
func (s *Server) Hub() *realtime.Hub { return s.opts.Hub }

// Reload fetches the roster, rebuilds tree and layout, and swaps the
// snapshot in. Clients are notified when the roster changed. On failure the
// previous snapshot keeps being served.
func (s *Server) Reload(ctx context.Context) error {
	start := time.Now()
	roster, _, err := s.opts.Runner.LoadRoster(ctx, s.src, true)
	if err != nil {
		s.logger.Error("roster reload failed", "source", s.src.Name(), "err", err)
		s.publish(ctx, realtime.EventRosterFailed, realtime.RosterFailure{
			Source: s.src.Name(),
			Error:  oterrors.UserMessage(err),
		})
		return err
	}

	opts := s.pipelineOptions()
	f, err := pipeline.Build(ctx, s.src.Name(), roster, opts)
	if err != nil {
		return err
	}
	hash := pipeline.RosterHash(roster)
	l, c, _, err := s.opts.Runner.LayoutWithCacheInfo(ctx, hash, f, opts)
	if err != nil {
		return err
	}

	next := &snapshot{roster: roster, hash: hash, forest: f, layout: l, chart: c, loadedAt: time.Now().UTC()}
	s.mu.Lock()
	prev := s.snap
	s.snap = next
	s.mu.Unlock()

	s.logger.Info("roster loaded",
		"source", s.src.Name(),
		"employees", f.Stats.Total,
		"rendered", f.Stats.Rendered,
		"duration", time.Since(start).Round(time.Millisecond))

	if prev == nil || prev.hash != hash {
		sum := roster.Summarize()
		s.publish(ctx, realtime.EventRosterUpdated, realtime.RosterUpdate{
			Source:     s.src.Name(),
			RosterHash: hash,
			Employees:  sum.Employees,
			Active:     sum.Active,
			FetchedAt:  roster.FetchedAt,
		})
	}
	return nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(bearerAuth(s.opts.Token))

		r.Route("/org-chart", func(r chi.Router) {
			r.Get("/flat", s.handleFlat)
			r.Get("/corporate", s.handleCorporate)
			r.Get("/projects", s.handleProjects)
			r.Get("/search", s.handleSearch)
			r.Get("/summary", s.handleSummary)
			r.Get("/layout", s.handleLayout)
			r.Get("/chart.svg", s.handleChart(pipeline.FormatSVG, "image/svg+xml"))
			r.Get("/chart.dot", s.handleChart(pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
			r.Get("/employees/{id}", s.handleEmployee)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDeleteSession)
			r.Post("/{id}/events", s.handleSessionEvent)
		})

		r.Get("/ws", s.opts.Hub.ServeHTTP)
	})
	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
// Expired sessions are purged in the background.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return oterrors.Wrap(oterrors.ErrCodeNetwork, err, "serve %s", s.opts.Addr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		s.opts.Hub.DisconnectAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.cleanupSessions(gctx)
		return nil
	})
	return g.Wait()
}

// Close releases the hub and the session store.
func (s *Server) Close() error {
	return errors.Join(s.opts.Hub.Close(), s.opts.Sessions.Close())
}

func (s *Server) cleanupSessions(ctx context.Context) {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.opts.Sessions.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

// current returns the snapshot being served, or an error before the first
// successful reload.
func (s *Server) current() (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, oterrors.New(oterrors.ErrCodeNotFound, "no roster loaded yet")
	}
	return s.snap, nil
}

func (s *Server) pipelineOptions() pipeline.Options {
	limits := s.opts.Limits
	return pipeline.Options{
		Source: s.src.Name(),
		Limits: &limits,
		Layout: s.opts.Layout,
		Logger: s.logger,
	}
}

func (s *Server) publish(ctx context.Context, typ string, payload any) {
	ev, err := realtime.NewEvent(typ, payload)
	if err != nil {
		s.logger.Warn("build realtime event", "type", typ, "err", err)
		return
	}
	if _, err := s.opts.Hub.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish realtime event", "type", typ, "err", err)
	}
}
