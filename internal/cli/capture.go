package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/capture"
)

// captureCommand screenshots or prints a page with a headless browser,
// typically a chart served by `orgtower serve`.
func (c *CLI) captureCommand() *cobra.Command {
	var (
		output   string
		fullPage bool
		opts     capture.Options
	)

	cmd := &cobra.Command{
		Use:   "capture <url>",
		Short: "Screenshot or print a web page with a headless browser",
		Long: `Screenshot or print a web page with a headless browser.

The output format follows the file extension: .png for a screenshot,
.pdf for a printed page.

Examples:
  orgtower capture http://localhost:8080/api/v1/org-chart/chart.svg -o chart.png
  orgtower capture https://intranet.example.com/org -o org.pdf --wait "#chart"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			url := args[0]
			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
			if format != "png" && format != "pdf" {
				return fmt.Errorf("unsupported output %q: use a .png or .pdf file", output)
			}

			spinner := newSpinnerWithContext(ctx, "Launching browser...")
			spinner.Start()
			b, err := capture.Launch(ctx, opts)
			if err != nil {
				spinner.StopWithError("Could not start browser")
				return err
			}
			defer b.Close()
			spinner.Stop()

			prog := newProgress(c.Logger)
			spinner = newSpinnerWithContext(ctx, "Capturing "+url+"...")
			spinner.Start()
			var data []byte
			if format == "pdf" {
				data, err = b.PrintURL(ctx, url)
			} else {
				data, err = b.Screenshot(ctx, url, fullPage)
			}
			if err != nil {
				spinner.StopWithError("Capture failed")
				return err
			}
			spinner.Stop()
			prog.done("captured page", "url", url, "bytes", len(data))

			if err := writeOutput(output, data); err != nil {
				return err
			}
			printSuccess("Captured %s", url)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "capture.png", "output file (.png or .pdf)")
	cmd.Flags().BoolVar(&fullPage, "full-page", false, "capture the whole page, not just the viewport")
	cmd.Flags().IntVar(&opts.Width, "width", capture.DefaultWidth, "viewport width in CSS pixels")
	cmd.Flags().IntVar(&opts.Height, "height", capture.DefaultHeight, "viewport height in CSS pixels")
	cmd.Flags().Float64Var(&opts.Scale, "scale", capture.DefaultScale, "device scale factor")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", capture.DefaultTimeout, "navigation and capture timeout")
	cmd.Flags().StringVar(&opts.WaitSelector, "wait", "", "CSS selector to wait for before capturing")
	cmd.Flags().StringVar(&opts.ControlURL, "browser", "", "DevTools URL of a running browser")
	cmd.Flags().StringVar(&opts.Bin, "browser-bin", "", "browser executable to launch")

	return cmd
}
