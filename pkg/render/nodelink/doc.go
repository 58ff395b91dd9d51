// Package nodelink renders reporting forests as Graphviz node-link diagrams.
//
// # Overview
//
// This package leaves placement to Graphviz instead of the card layout: each
// employee becomes a box and each reporting line an arrow from manager to
// report. It is handy for very wide organisations, where dot's own layout
// packs levels more tightly, and for feeding the chart into other Graphviz
// tooling.
//
// # Usage
//
//	dot := nodelink.ToDOT(forest, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot, render.BrowserOptions{})
//	png, err := nodelink.RenderPNG(ctx, dot, render.BrowserOptions{Scale: 2})
//
// # Options
//
//   - Detailed: labels include title, department and status
//   - StatusColors: fill boxes with a tint of the employee's status colour
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion needs a headless browser.
package nodelink
