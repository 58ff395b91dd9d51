package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/orgtower/pkg/chart"
	"github.com/matzehuels/orgtower/pkg/errors"
)

// Style defines the visual appearance of an org chart.
type Style interface {
	// RenderDefs writes SVG <defs> content (filters, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderConnector writes one manager-to-report connector.
	RenderConnector(buf *bytes.Buffer, c Connector)
	// RenderCard writes one employee card.
	RenderCard(buf *bytes.Buffer, n Node)
}

// Node holds everything needed to draw one employee.
type Node struct {
	ID          string
	Name        string
	Initials    string
	Title       string
	Department  string
	StatusColor string
	X, Y, W, H  float64
	Reports     int    // rendered direct reports
	Truncated   int    // direct reports left out by a cap
	SpanColor   string // span-of-control class, empty to hide the badge
	Selected    bool
}

// Connector holds the path data of one connector.
type Connector struct {
	FromID, ToID string
	Path         string
}

// ByName returns the style registered under name.
func ByName(name string) (Style, error) {
	switch name {
	case "", chart.StyleCard:
		return Card{}, nil
	case chart.StyleSimple:
		return Simple{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (want one of %v)", name, chart.Styles)
}

// SpanHex maps a span-of-control class to a colour.
func SpanHex(span string) string {
	switch span {
	case "green":
		return "#22c55e"
	case "yellow":
		return "#eab308"
	case "red":
		return "#ef4444"
	}
	return "#9ca3af"
}

func px(v float64) string { return fmt.Sprintf("%.1f", v) }
