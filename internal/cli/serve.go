package cli

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/orgtower/internal/server"
	"github.com/matzehuels/orgtower/pkg/config"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/realtime"
	"github.com/matzehuels/orgtower/pkg/session"
	"github.com/matzehuels/orgtower/pkg/source/file"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		token   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [roster]",
		Short: "Serve the org chart over HTTP",
		Long: `Serve the org chart API, live refresh socket and viewer sessions.

Endpoints (under /api/v1):
  GET  /org-chart/flat          active employees (?all=true for everyone)
  GET  /org-chart/corporate     nested tree (?depth=1..10, default 3)
  GET  /org-chart/projects      projects and crews
  GET  /org-chart/search?q=     name search (max 20)
  GET  /org-chart/summary       roster and chart statistics
  GET  /org-chart/layout        positioned chart JSON
  GET  /org-chart/chart.svg     rendered chart
  GET  /org-chart/chart.dot     Graphviz source
  GET  /org-chart/employees/ID  detail panel
  POST /sessions                viewer sessions, then POST /sessions/ID/events
  GET  /ws                      roster.updated notifications

File rosters are reloaded when the file changes; API and MongoDB rosters
are polled every [realtime] reload_interval.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("token") {
				cfg.Server.Token = token
			}
			return c.runServe(cmd.Context(), cfg, firstArg(args), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token required by the API (empty disables auth)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout and artifact cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config, location string, noCache bool) error {
	ctx = withLogger(ctx, c.Logger)
	observability.NewLogHooks(c.Logger).Install()

	src, closeSrc, err := c.openSource(ctx, cfg, location)
	if err != nil {
		return err
	}
	defer closeSrc()

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sessions, err := newSessionStore(ctx, cfg.Server)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	hub := realtime.NewHub(
		realtime.WithHubLogger(c.Logger.WithPrefix("ws")),
		realtime.WithCheckOrigin(allowOrigins(cfg.Server.AllowedOrigins)),
	)
	srv := server.New(src, server.Options{
		Addr:         cfg.Server.Addr,
		Token:        cfg.Server.Token,
		Limits:       cfg.Limits,
		Layout:       cfg.Layout,
		Canvas:       cfg.Canvas,
		Runner:       runner,
		Sessions:     sessions,
		SessionTTL:   cfg.Server.SessionTTL,
		Hub:          hub,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Logger:       c.Logger,
	})
	defer srv.Close()

	spinner := newSpinnerWithContext(ctx, "Loading roster...")
	spinner.Start()
	if err := srv.Reload(ctx); err != nil {
		spinner.StopWithError("Could not load roster")
		return err
	}
	spinner.Stop()

	printSuccess("Serving %s", src.Name())
	printKeyValue("Address", cfg.Server.Addr)
	printKeyValue("API", server.APIPrefix)
	printKeyValue("Auth", onOff(cfg.Server.AuthEnabled()))
	printKeyValue("Sessions", cfg.Server.SessionStore)
	printKeyValue("Refresh", refreshMode(cfg.Realtime, src))
	printNewline()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if cfg.Realtime.Enabled {
		if fs, ok := src.(*file.Source); ok && cfg.Realtime.Watch {
			g.Go(func() error {
				return fs.Watch(gctx, func(*hris.Roster, error) { reload(gctx, srv) })
			})
		} else if cfg.Realtime.ReloadInterval > 0 {
			g.Go(func() error {
				poll(gctx, cfg.Realtime.ReloadInterval, func() { reload(gctx, srv) })
				return nil
			})
		}
	}
	return g.Wait()
}

// reload refreshes the server's roster. Failures are already published to
// websocket clients and the previous roster stays in service.
func reload(ctx context.Context, srv *server.Server) {
	if err := srv.Reload(ctx); err != nil && ctx.Err() == nil {
		loggerFromContext(ctx).Warn("roster refresh failed", "err", err)
	}
}

// poll calls fn every interval until ctx is cancelled.
func poll(ctx context.Context, interval time.Duration, fn func()) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}

func newSessionStore(ctx context.Context, cfg config.ServerConfig) (session.Store, error) {
	if cfg.SessionStore == config.SessionRedis {
		return session.DialRedisStore(ctx, cfg.RedisURL, session.DefaultRedisPrefix)
	}
	return session.NewMemoryStore(), nil
}

// allowOrigins builds the websocket origin check. An empty list or "*"
// accepts any origin; requests without an Origin header are not from a
// browser and always pass.
func allowOrigins(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(origins) == 0 {
			return true
		}
		return slices.Contains(origins, "*") || slices.Contains(origins, origin)
	}
}

func refreshMode(cfg config.RealtimeConfig, src pipeline.RosterSource) string {
	switch {
	case !cfg.Enabled:
		return "off"
	case cfg.Watch && isFileSource(src):
		return "on file change"
	case cfg.ReloadInterval > 0:
		return "every " + cfg.ReloadInterval.String()
	}
	return "off"
}

func isFileSource(src pipeline.RosterSource) bool {
	_, ok := src.(*file.Source)
	return ok
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
