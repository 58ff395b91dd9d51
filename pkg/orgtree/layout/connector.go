package layout

import (
	"strconv"
)

// Connector joins the bottom center of a parent box to the top center of a
// child box.
type Connector struct {
	FromID string
	ToID   string
	X1, Y1 float64
	X2, Y2 float64
}

func connect(parent, child *Node, cfg Config) Connector {
	return Connector{
		FromID: parent.ID(),
		ToID:   child.ID(),
		X1:     parent.X + cfg.NodeWidth/2,
		Y1:     parent.Y + cfg.NodeHeight,
		X2:     child.X + cfg.NodeWidth/2,
		Y2:     child.Y,
	}
}

// MidY returns the vertical midpoint used for both Bezier control points.
func (c Connector) MidY() float64 { return (c.Y1 + c.Y2) / 2 }

// Path returns SVG path data for a cubic Bezier whose control points share
// the vertical midpoint, giving an S-shaped elbow.
func (c Connector) Path() string {
	mid := num(c.MidY())
	return "M" + num(c.X1) + "," + num(c.Y1) +
		" C" + num(c.X1) + "," + mid +
		" " + num(c.X2) + "," + mid +
		" " + num(c.X2) + "," + num(c.Y2)
}

// Line returns SVG path data for a straight segment between the endpoints.
func (c Connector) Line() string {
	return "M" + num(c.X1) + "," + num(c.Y1) + " L" + num(c.X2) + "," + num(c.Y2)
}

// num formats a coordinate with the shortest exact representation, so
// integral values carry no decimals.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
