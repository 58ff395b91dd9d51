package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/orgtower/pkg/canvas"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
	"github.com/matzehuels/orgtower/pkg/render/orgchart/styles"
)

const nodeInteractionCSS = `
    .org-node { cursor: pointer; }
    .org-node rect:first-of-type { transition: stroke-width 0.15s ease; }
    .org-node.highlight rect:first-of-type { stroke-width: 2.5; stroke: #2563eb; }
    .connector { transition: stroke 0.15s ease; }
    .connector.highlight { stroke: #2563eb; stroke-width: 2; }`

const nodeInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.connector').forEach(c => c.classList.toggle('highlight', c.dataset.from === id || c.dataset.to === id));
      document.querySelectorAll('.org-node').forEach(n => n.classList.toggle('highlight', n.id === 'node-' + id));
    }
    function clearHighlight() {
      document.querySelectorAll('.highlight').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.org-node').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('node-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	straight    bool
	selected    string
	view        *canvas.ViewState
	interactive bool
	spans       bool
}

// WithStyle sets the visual style (default [styles.Card]).
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithStraightConnectors draws straight lines instead of Bezier curves.
func WithStraightConnectors() SVGOption { return func(r *svgRenderer) { r.straight = true } }

// WithSelected highlights the card of the given employee.
func WithSelected(id string) SVGOption { return func(r *svgRenderer) { r.selected = id } }

// WithView applies a viewer's pan and zoom to the chart.
func WithView(v canvas.ViewState) SVGOption { return func(r *svgRenderer) { r.view = &v } }

// WithInteraction embeds hover highlighting for cards and connectors.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithSpanOfControl marks managers with their span-of-control colour.
func WithSpanOfControl() SVGOption { return func(r *svgRenderer) { r.spans = true } }

// RenderSVG renders the layout as a standalone SVG document sized to the
// layout's canvas. Connectors are drawn beneath the cards.
func RenderSVG(l *layout.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	r.style.RenderDefs(&buf)
	buf.WriteString(`  <rect width="100%" height="100%" fill="#ffffff"/>` + "\n")

	if r.view != nil {
		fmt.Fprintf(&buf, `  <g transform="translate(%.2f %.2f) scale(%.4f)">`+"\n", r.view.Pan.X, r.view.Pan.Y, r.view.Zoom)
	}
	for _, c := range l.Connectors {
		path := c.Path()
		if r.straight {
			path = c.Line()
		}
		r.style.RenderConnector(&buf, styles.Connector{FromID: c.FromID, ToID: c.ToID, Path: path})
	}
	for _, n := range l.Nodes {
		r.style.RenderCard(&buf, r.buildNode(l, n))
	}
	if r.view != nil {
		buf.WriteString("  </g>\n")
	}

	if r.interactive {
		renderNodeInteraction(&buf)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Card{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *svgRenderer) buildNode(l *layout.Layout, n *layout.Node) styles.Node {
	e := n.Employee
	node := styles.Node{
		ID:          e.ID,
		Name:        e.Name(),
		Initials:    e.Initials(),
		Title:       e.Title,
		Department:  e.Department,
		StatusColor: e.Status.Color(),
		X:           n.X,
		Y:           n.Y,
		W:           l.Config.NodeWidth,
		H:           l.Config.NodeHeight,
		Reports:     len(n.Children),
		Truncated:   n.Truncated,
		Selected:    e.ID == r.selected,
	}
	if r.spans && n.DirectReports > 0 {
		node.SpanColor = hris.SpanColor(n.DirectReports)
	}
	return node
}

func renderNodeInteraction(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", nodeInteractionCSS)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", nodeInteractionJS)
}
