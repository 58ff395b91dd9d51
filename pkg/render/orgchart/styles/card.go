package styles

import (
	"bytes"
	"fmt"
)

// Card draws the rounded employee cards of the interactive chart: avatar
// initials, name with status dot, title, department tag and a reports
// count.
type Card struct{}

const (
	cardRadius    = 12.0
	cardPad       = 12.0
	avatarRadius  = 16.0
	cardBorder    = "#e5e7eb"
	cardSelected  = "#2563eb"
	connectorGrey = "#d0d5dd"
)

func (Card) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <filter id="card-shadow" x="-10%" y="-10%" width="120%" height="130%">
      <feDropShadow dx="0" dy="1" stdDeviation="1.5" flood-color="#101828" flood-opacity="0.08"/>
    </filter>
  </defs>
`)
}

func (Card) RenderConnector(buf *bytes.Buffer, c Connector) {
	fmt.Fprintf(buf, `  <path class="connector" data-from="%s" data-to="%s" d="%s" fill="none" stroke="%s" stroke-width="1.5"/>`+"\n",
		Escape(c.FromID), Escape(c.ToID), c.Path, connectorGrey)
}

func (Card) RenderCard(buf *bytes.Buffer, c Node) {
	stroke, strokeWidth := cardBorder, 1.0
	if c.Selected {
		stroke, strokeWidth = cardSelected, 2.5
	}

	fmt.Fprintf(buf, `  <g class="org-node" id="node-%s" transform="translate(%s,%s)">`+"\n", Escape(c.ID), px(c.X), px(c.Y))
	fmt.Fprintf(buf, `    <rect width="%s" height="%s" rx="%.0f" fill="#ffffff" stroke="%s" stroke-width="%.1f" filter="url(#card-shadow)"/>`+"\n",
		px(c.W), px(c.H), cardRadius, stroke, strokeWidth)

	cx, cy := cardPad+avatarRadius, cardPad+avatarRadius
	fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%.0f" fill="#2563eb"/>`+"\n", px(cx), px(cy), avatarRadius)
	fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="middle" dominant-baseline="central" font-family="Inter, sans-serif" font-size="11" font-weight="600" fill="#ffffff">%s</text>`+"\n",
		px(cx), px(cy), Escape(c.Initials))

	textX := cardPad + 2*avatarRadius + 8
	textW := c.W - textX - cardPad - 12
	fmt.Fprintf(buf, `    <text x="%s" y="%s" font-family="Inter, sans-serif" font-size="12" font-weight="600" fill="#101828">%s</text>`+"\n",
		px(textX), px(cardPad+12), Escape(Truncate(c.Name, textW, 12)))
	fmt.Fprintf(buf, `    <circle class="status" cx="%s" cy="%s" r="4" fill="%s"/>`+"\n",
		px(c.W-cardPad-4), px(cardPad+8), c.StatusColor)
	if c.Title != "" {
		fmt.Fprintf(buf, `    <text x="%s" y="%s" font-family="Inter, sans-serif" font-size="11" fill="#667085">%s</text>`+"\n",
			px(textX), px(cardPad+28), Escape(Truncate(c.Title, textW, 11)))
	}

	footY := c.H - cardPad - 4
	if c.Department != "" {
		label := Truncate(c.Department, c.W/2, 10)
		tagW := float64(len([]rune(label)))*10*charWidth + 12
		fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="16" rx="4" fill="#2563eb" fill-opacity="0.08"/>`+"\n",
			px(cardPad), px(footY-12), px(tagW))
		fmt.Fprintf(buf, `    <text x="%s" y="%s" font-family="Inter, sans-serif" font-size="10" font-weight="500" fill="#2563eb">%s</text>`+"\n",
			px(cardPad+6), px(footY), Escape(label))
	}
	if c.Reports > 0 || c.Truncated > 0 {
		label := fmt.Sprintf("%d reports", c.Reports)
		if c.Truncated > 0 {
			label += fmt.Sprintf(" (+%d)", c.Truncated)
		}
		fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="end" font-family="Inter, sans-serif" font-size="10" fill="#98a2b3">%s</text>`+"\n",
			px(c.W-cardPad), px(footY), label)
		if c.SpanColor != "" {
			fmt.Fprintf(buf, `    <rect class="span-%s" x="0" y="%s" width="4" height="%s" fill="%s"/>`+"\n",
				c.SpanColor, px(cardRadius), px(c.H-2*cardRadius), SpanHex(c.SpanColor))
		}
	}
	buf.WriteString("  </g>\n")
}
