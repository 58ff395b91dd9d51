package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/chart"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

// layoutCommand creates the layout command, which writes the positioned
// chart as JSON for other front ends.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		limits  limitFlags
		style   string
	)

	cmd := &cobra.Command{
		Use:   "layout [roster]",
		Short: "Compute the chart layout and write it as JSON",
		Long: `Compute the chart layout and write it as JSON.

The output lists every rendered employee with its canvas position and span
colour, the connector paths, and the canvas size. It is the same document
served by GET /api/v1/org-chart/layout.

Results are cached by roster content, so unchanged rosters are not laid out
again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			location := firstArg(args)
			cfg, err := c.config()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			roster, name, _, err := c.loadRoster(ctx, runner, cfg, location, refresh)
			if err != nil {
				return err
			}

			opts := c.pipelineOptions(cfg)
			opts.Limits = limits.apply(cmd, *opts.Limits)
			opts.Style = style
			opts.Refresh = refresh
			f, err := pipeline.Build(ctx, name, roster, opts)
			if err != nil {
				return err
			}
			l, doc, hit, err := runner.LayoutWithCacheInfo(ctx, pipeline.RosterHash(roster), f, opts)
			if err != nil {
				return fmt.Errorf("compute layout: %w", err)
			}

			data, err := chart.MarshalChart(doc)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = basePath("", location) + ".layout.json"
			}
			if err := writeOutput(path, data); err != nil {
				return err
			}
			if path == "-" {
				return nil
			}

			printSuccess("Layout complete")
			printFile(path)
			printStats(len(roster.Employees), l.Len(), f.Stats.Hidden(), hit)
			printKeyValue("Canvas", fmt.Sprintf("%.0f × %.0f", l.Width, l.Height))
			printKeyValue("Levels", fmt.Sprint(len(l.Levels())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <roster>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached rosters and layouts")
	cmd.Flags().StringVar(&style, "style", "", "node style recorded in the output: card (default), simple")
	limits.register(cmd)

	return cmd
}
