// Package render provides visualization rendering for org charts.
//
// # Overview
//
// This package contains the rendering pipeline that turns laid-out org
// charts into visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Card-based org charts (in [orgchart] subpackage)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats with a
// headless browser (see pkg/capture). They are used by both the org chart
// and node-link renderers.
//
//	svg := sink.RenderSVG(l, opts...)
//	pdf, err := render.ToPDF(ctx, svg, render.BrowserOptions{})
//	png, err := render.ToPNG(ctx, svg, render.BrowserOptions{Scale: 2})
//
// # Org Charts
//
// The [orgchart] subpackage draws each employee as a card and joins managers
// to reports with curved connectors, matching the interactive viewer.
//
// Key subpackages:
//   - [orgchart/styles]: Visual styles (card, simple)
//   - [orgchart/sink]: Output formats (SVG, JSON, PNG, PDF)
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the reporting forest as a Graphviz
// diagram, leaving placement to the dot engine.
//
//	dot := nodelink.ToDOT(forest, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package render
