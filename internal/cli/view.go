package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/realtime"
	"github.com/matzehuels/orgtower/pkg/session"
	"github.com/matzehuels/orgtower/pkg/source/file"
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		live    string
		token   string
		reset   bool
		noCache bool
		limits  limitFlags
	)

	cmd := &cobra.Command{
		Use:   "view [roster]",
		Short: "Explore the org chart in the terminal",
		Long: `Explore the org chart in the terminal.

Drag with the mouse or use the arrow keys to pan, scroll or +/- to zoom,
click a person or press tab to open their details. The view is saved on
exit and restored next time.

File rosters are reloaded when the file changes. With --live the viewer
follows a running 'orgtower serve' instead and reloads whenever it
announces a new roster.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			src, closeSrc, err := c.openSource(ctx, cfg, firstArg(args))
			if err != nil {
				return err
			}
			defer closeSrc()

			opts := c.pipelineOptions(cfg)
			opts.Limits = limits.apply(cmd, *opts.Limits)
			opts.Source = src.Name()

			load := func(refresh bool) (*hris.Roster, *layout.Layout, error) {
				roster, _, err := runner.LoadRoster(ctx, src, refresh)
				if err != nil {
					return nil, nil, err
				}
				l, err := buildLayout(ctx, runner, roster, opts)
				return roster, l, err
			}

			spinner := newSpinnerWithContext(ctx, "Loading roster...")
			spinner.Start()
			roster, l, err := load(false)
			if err != nil {
				spinner.StopWithError("Could not load roster")
				return err
			}
			spinner.Stop()

			store, err := session.NewViewerStore(cfg.Server.SessionTTL)
			if err != nil {
				return err
			}
			if reset {
				if err := store.Forget(ctx); err != nil {
					return err
				}
			}
			ctrl, sess, err := restoreView(ctx, store, l, cfg.Canvas)
			if err != nil {
				c.Logger.Warn("ignoring saved view", "err", err)
				ctrl, sess = canvas.New(l, cfg.Canvas), session.New(canvas.ViewState{}, cfg.Server.SessionTTL)
			}

			model := NewChartModel(src.Name(), roster, ctrl, func() (*hris.Roster, *layout.Layout, error) {
				return load(true)
			})
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

			// Log lines would tear the alternate screen.
			c.Logger.SetOutput(io.Discard)
			defer c.Logger.SetOutput(c.errOut)

			stop, err := c.followRoster(ctx, src, live, token, cfg.Realtime.Watch, func() { p.Send(rosterChangedMsg{}) })
			if err != nil {
				return err
			}
			defer stop()

			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(ChartModel); ok {
				sess.View = m.Controller().View()
				sess.RosterHash = pipeline.RosterHash(m.roster)
				if err := store.Save(context.WithoutCancel(ctx), sess); err != nil {
					return fmt.Errorf("save view: %w", err)
				}
			}
			printDetail("View saved to %s", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&live, "live", "", "websocket URL of a running server, e.g. ws://localhost:8080/api/v1/ws")
	cmd.Flags().StringVar(&token, "token", "", "bearer token for --live")
	cmd.Flags().BoolVar(&reset, "reset", false, "forget the saved view")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	limits.register(cmd)

	return cmd
}

// restoreView rebuilds the saved viewer session on l, or starts a new one.
func restoreView(ctx context.Context, store *session.ViewerStore, l *layout.Layout, cfg canvas.Config) (*canvas.Controller, *session.Session, error) {
	sess, err := store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		ctrl := canvas.New(l, cfg)
		return ctrl, session.New(ctrl.View(), 0), nil
	}
	return canvas.Restore(l, cfg, sess.View), sess, nil
}

// followRoster arranges for onChange to be called when the roster changes:
// on every roster.updated event from a server when live is set, otherwise
// on file changes when the source is a watched file. The returned func
// stops following.
func (c *CLI) followRoster(ctx context.Context, src pipeline.RosterSource, live, token string, watch bool, onChange func()) (func(), error) {
	if live != "" {
		svc := realtime.NewService(live,
			realtime.WithReconnect(realtime.DefaultMaxAttempts, realtime.DefaultBaseDelay),
			realtime.WithServiceLogger(c.Logger),
			realtime.WithToken(token),
		)
		svc.Subscribe(realtime.EventRosterUpdated, func(realtime.Event) { onChange() })
		if err := svc.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect %s: %w", live, err)
		}
		return svc.Disconnect, nil
	}

	fs, ok := src.(*file.Source)
	if !ok || !watch {
		return func() {}, nil
	}
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = fs.Watch(watchCtx, func(_ *hris.Roster, err error) {
			if err == nil {
				onChange()
			}
		})
	}()
	return func() {
		cancel()
		<-done
	}, nil
}

// buildLayout builds the capped tree and positions it.
func buildLayout(ctx context.Context, runner *pipeline.Runner, roster *hris.Roster, opts pipeline.Options) (*layout.Layout, error) {
	f, err := pipeline.Build(ctx, opts.Source, roster, opts)
	if err != nil {
		return nil, err
	}
	l, _, _, err := runner.LayoutWithCacheInfo(ctx, pipeline.RosterHash(roster), f, opts)
	return l, err
}
