package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/config"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/source"
)

// defaultBase names output files when the roster does not come from a file.
const defaultBase = "orgchart"

// renderFlags are the render command's flags on top of pipeline options.
type renderFlags struct {
	output  string
	formats string
	noCache bool
	limits  limitFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [roster]",
		Short: "Render an org chart to SVG, PNG, PDF, JSON or DOT",
		Long: `Render an org chart from a roster.

The roster is a JSON file, an HRIS API URL (http/https), a MongoDB URI, or
"-" for stdin. Without an argument the [source] location from the config
file is used.

Examples:
  orgtower render roster.json                     # roster.svg
  orgtower render roster.json -f svg,png,pdf      # three files
  orgtower render https://hris.example.com/api/v1 -o chart.svg
  orgtower render roster.json -t nodelink -f dot  # Graphviz source
  cat roster.json | orgtower render - -o team.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(flags.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd, firstArg(args), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached rosters and renders")
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", "", "visualization type: orgchart (default), nodelink")
	cmd.Flags().StringVar(&opts.Style, "style", "", "node style: card (default), simple")
	cmd.Flags().BoolVar(&opts.Straight, "straight", false, "draw straight connectors instead of elbows")
	cmd.Flags().BoolVar(&opts.Spans, "spans", false, "show span-of-control badges")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include department and status (nodelink)")
	cmd.Flags().StringVar(&opts.Selected, "selected", "", "highlight an employee by id")
	cmd.Flags().StringVar(&opts.Browser.ControlURL, "browser", "", "DevTools URL of a running browser for png/pdf")
	flags.limits.register(cmd)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, location string, opts pipeline.Options, flags renderFlags) error {
	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	roster, name, rosterHit, err := c.loadRoster(ctx, runner, cfg, location, opts.Refresh)
	if err != nil {
		return err
	}

	base := c.pipelineOptions(cfg)
	opts.Limits = flags.limits.apply(cmd, *base.Limits)
	opts.Layout = base.Layout
	opts.Logger = c.Logger
	opts.Source = name

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()
	result, err := runner.Execute(ctx, roster, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths := outputPaths(flags.output, location, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered org chart")
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.Employees, result.Stats.Rendered, result.Stats.Hidden, rosterHit || result.CacheInfo.RenderHit)
	if n := len(result.Forest.Stats.Unreachable); n > 0 {
		printWarning("%d employees are not reachable from any root (reporting cycle)", n)
	}
	printNewline()
	printNextStep("Explore", "orgtower view "+location)
	return nil
}

// loadRoster opens the location and fetches the roster through the runner's
// cache.
func (c *CLI) loadRoster(ctx context.Context, runner *pipeline.Runner, cfg *config.Config, location string, refresh bool) (*hris.Roster, string, bool, error) {
	src, closeSrc, err := c.openSource(ctx, cfg, location)
	if err != nil {
		return nil, "", false, err
	}
	defer closeSrc()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Loading roster...")
	spinner.Start()
	roster, hit, err := runner.LoadRoster(ctx, src, refresh)
	if err != nil {
		spinner.StopWithError("Could not load roster")
		return nil, "", false, err
	}
	spinner.Stop()
	prog.done("loaded roster", "source", src.Name(), "employees", len(roster.Employees), "cached", hit)
	return roster, src.Name(), hit, nil
}

// =============================================================================
// Limits
// =============================================================================

// limitFlags override the [limits] section for one run.
type limitFlags struct {
	maxDepth, maxChildren, maxRoots int
}

func (f *limitFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "rendered levels (0 = no cap; default from config)")
	cmd.Flags().IntVar(&f.maxChildren, "max-children", 0, "direct reports shown per manager (0 = no cap)")
	cmd.Flags().IntVar(&f.maxRoots, "max-roots", 0, "trees shown (0 = no cap)")
}

// apply returns the configured limits with any explicitly set flag
// overriding them.
func (f *limitFlags) apply(cmd *cobra.Command, l orgtree.Limits) *orgtree.Limits {
	if cmd.Flags().Changed("max-depth") {
		l.MaxDepth = f.maxDepth
	}
	if cmd.Flags().Changed("max-children") {
		l.MaxChildren = f.maxChildren
	}
	if cmd.Flags().Changed("max-roots") {
		l.MaxRoots = f.maxRoots
	}
	return &l
}

// =============================================================================
// Output
// =============================================================================

// basePath derives the output path without extension. A known format
// extension on output is stripped; without output, file rosters keep their
// name and other sources use "orgchart".
func basePath(output, location string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if kind, err := source.Kind(location); err != nil || kind != source.KindFile || location == stdinLocation {
		return defaultBase
	}
	return strings.TrimSuffix(location, filepath.Ext(location))
}

// outputPaths maps each format to its file. A single format written to an
// explicit output path uses that path unchanged.
func outputPaths(output, location string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, location)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path; "-" is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
