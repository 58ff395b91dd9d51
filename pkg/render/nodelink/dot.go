package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds title, department and status lines to each label.
	// When false, only the employee's name is shown.
	Detailed bool

	// StatusColors outlines each box with its status colour.
	StatusColors bool
}

// ToDOT converts a forest to Graphviz DOT format. Nodes are emitted in
// depth-first order, so dot keeps siblings in roster order.
//
// Managers whose reports were cut by a cap get a dashed outline.
func ToDOT(f *orgtree.Forest, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph OrgChart {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#d0d5dd\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := f.Flatten()
	for _, n := range nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), opts)
		fmt.Fprintf(&buf, "  %s [%s];\n", quoteDOT(n.ID()), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %s -> %s;\n", quoteDOT(n.ID()), quoteDOT(c.ID()))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *orgtree.Node, detailed bool) string {
	e := n.Employee
	if !detailed {
		return e.Name()
	}
	parts := []string{e.Name()}
	if e.Title != "" {
		parts = append(parts, e.Title)
	}
	if e.Department != "" {
		parts = append(parts, e.Department)
	}
	parts = append(parts, e.Status.Label())
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *orgtree.Node, label string, opts Options) []string {
	attrs := []string{"label=" + quoteDOT(label)}
	if opts.StatusColors {
		attrs = append(attrs, fmt.Sprintf("color=%q", n.Employee.Status.Color()), "penwidth=2")
	}
	if n.Truncated > 0 {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// quoteDOT returns s as a DOT quoted string. Quotes and backslashes are
// escaped, newlines become centred line breaks and other control characters
// are dropped.
func quoteDOT(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string, opts render.BrowserOptions) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg, opts)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, opts render.BrowserOptions) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, opts)
}
