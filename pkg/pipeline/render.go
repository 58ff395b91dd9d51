package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/orgtower/pkg/chart"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
	"github.com/matzehuels/orgtower/pkg/render/nodelink"
	"github.com/matzehuels/orgtower/pkg/render/orgchart/sink"
	"github.com/matzehuels/orgtower/pkg/render/orgchart/styles"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, f *orgtree.Forest, l *layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var (
		artifacts map[string][]byte
		err       error
	)
	if opts.IsNodelink() {
		artifacts, err = renderNodelink(ctx, f, l, opts)
	} else {
		artifacts, err = renderOrgChart(ctx, f, l, opts)
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

// renderNodelink generates Graphviz outputs from the forest.
func renderNodelink(ctx context.Context, f *orgtree.Forest, l *layout.Layout, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(f, nodelink.Options{Detailed: opts.Detailed, StatusColors: true})
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Browser)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot, opts.Browser)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			c := chart.Export(l, opts.Style)
			c.VizType = chart.VizTypeNodelink
			data, err = chart.MarshalChart(c)
		default:
			return nil, fmt.Errorf("unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderOrgChart generates card-chart outputs from the layout.
func renderOrgChart(ctx context.Context, f *orgtree.Forest, l *layout.Layout, opts Options) (map[string][]byte, error) {
	svgOpts, err := buildSVGOptions(opts)
	if err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, l, sink.WithPNGSVGOptions(svgOpts...), sink.WithPNGBrowser(opts.Browser))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, l, sink.WithPDFSVGOptions(svgOpts...), sink.WithPDFBrowser(opts.Browser))
		case FormatJSON:
			data, err = sink.RenderJSON(l, sink.WithJSONStyle(opts.Style))
		case FormatDOT:
			data = []byte(nodelink.ToDOT(f, nodelink.Options{Detailed: opts.Detailed, StatusColors: true}))
		default:
			return nil, fmt.Errorf("unsupported orgchart format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) ([]sink.SVGOption, error) {
	style, err := styles.ByName(opts.Style)
	if err != nil {
		return nil, err
	}
	svgOpts := []sink.SVGOption{sink.WithStyle(style)}

	if opts.Straight {
		svgOpts = append(svgOpts, sink.WithStraightConnectors())
	}
	if opts.Spans {
		svgOpts = append(svgOpts, sink.WithSpanOfControl())
	}
	if opts.Interactive {
		svgOpts = append(svgOpts, sink.WithInteraction())
	}
	if opts.Selected != "" {
		svgOpts = append(svgOpts, sink.WithSelected(opts.Selected))
	}
	return svgOpts, nil
}
