package styles

import (
	"bytes"
	"fmt"
)

// Simple draws plain boxes with the employee's name and title, suited to
// print and to small exports.
type Simple struct{}

func (Simple) RenderDefs(*bytes.Buffer) {}

func (Simple) RenderConnector(buf *bytes.Buffer, c Connector) {
	fmt.Fprintf(buf, `  <path class="connector" d="%s" fill="none" stroke="#333333" stroke-width="1"/>`+"\n", c.Path)
}

func (Simple) RenderCard(buf *bytes.Buffer, c Node) {
	stroke := "#333333"
	if c.Selected {
		stroke = "#2563eb"
	}
	fmt.Fprintf(buf, `  <g class="org-node" id="node-%s">`+"\n", Escape(c.ID))
	fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="#ffffff" stroke="%s" stroke-width="1"/>`+"\n",
		px(c.X), px(c.Y), px(c.W), px(c.H), stroke)
	cx := c.X + c.W/2
	fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="middle" font-family="Helvetica, Arial, sans-serif" font-size="14">%s</text>`+"\n",
		px(cx), px(c.Y+c.H/2-2), Escape(Truncate(c.Name, c.W-16, 14)))
	if c.Title != "" {
		fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="middle" font-family="Helvetica, Arial, sans-serif" font-size="11" fill="#555555">%s</text>`+"\n",
			px(cx), px(c.Y+c.H/2+16), Escape(Truncate(c.Title, c.W-16, 11)))
	}
	buf.WriteString("  </g>\n")
}
