package layout

import (
	"github.com/matzehuels/orgtower/pkg/orgtree"
)

// Node is a forest node with its canvas position. X and Y are the top-left
// corner of the node's box.
type Node struct {
	*orgtree.Node
	X, Y float64
}

// Rect is an axis-aligned box in canvas coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width returns the horizontal span of the box.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the box.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Contains reports whether the point lies inside the box, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// Layout is a positioned forest.
type Layout struct {
	Config Config

	// Nodes are in depth-first pre-order, trees left to right.
	Nodes      []*Node
	Connectors []Connector

	// Width and Height describe the scrollable canvas.
	Width  float64
	Height float64

	// Stats are carried over from the forest.
	Stats orgtree.Stats

	index map[string]int
}

// Compute positions every node of the forest. Zero config fields take their
// defaults.
func Compute(f *orgtree.Forest, cfg Config) *Layout {
	cfg = cfg.WithDefaults()
	l := &Layout{
		Config: cfg,
		index:  make(map[string]int),
	}
	if f == nil {
		l.Width, l.Height = MinCanvasWidth, cfg.NodeHeight+CanvasMargin
		return l
	}
	l.Stats = f.Stats

	pos := make(map[*orgtree.Node]*Node, f.Stats.Rendered)
	cursor := 0.0
	for _, root := range f.Roots {
		cursor += place(root, cursor, cfg, pos)
		cursor += cfg.TreeGap
	}

	maxY := 0.0
	f.Walk(func(n *orgtree.Node) bool {
		ln := pos[n]
		l.index[n.ID()] = len(l.Nodes)
		l.Nodes = append(l.Nodes, ln)
		maxY = max(maxY, ln.Y)
		for _, c := range n.Children {
			l.Connectors = append(l.Connectors, connect(ln, pos[c], cfg))
		}
		return true
	})

	l.Width = max(cursor+CanvasMargin, MinCanvasWidth)
	l.Height = maxY + cfg.NodeHeight + CanvasMargin
	return l
}

// place lays out the subtree rooted at n starting at x and returns the
// width it consumed.
func place(n *orgtree.Node, x float64, cfg Config, pos map[*orgtree.Node]*Node) float64 {
	ln := &Node{Node: n, Y: float64(n.Depth) * cfg.LevelHeight()}
	pos[n] = ln

	if n.IsLeaf() {
		ln.X = x
		return cfg.Slot()
	}

	total := 0.0
	for _, c := range n.Children {
		total += place(c, x+total, cfg, pos)
	}
	first, last := pos[n.Children[0]], pos[n.Children[len(n.Children)-1]]
	ln.X = (first.X + last.X) / 2
	return total
}

// Len returns the number of positioned nodes.
func (l *Layout) Len() int { return len(l.Nodes) }

// Lookup returns the positioned node for an employee ID.
func (l *Layout) Lookup(id string) (*Node, bool) {
	i, ok := l.index[id]
	if !ok {
		return nil, false
	}
	return l.Nodes[i], true
}

// Rect returns the box of a positioned node.
func (l *Layout) Rect(n *Node) Rect {
	return Rect{
		Left:   n.X,
		Top:    n.Y,
		Right:  n.X + l.Config.NodeWidth,
		Bottom: n.Y + l.Config.NodeHeight,
	}
}

// HitTest returns the node whose box contains the canvas point. Boxes never
// overlap, so at most one node matches.
func (l *Layout) HitTest(x, y float64) (*Node, bool) {
	if l == nil {
		return nil, false
	}
	for i := len(l.Nodes) - 1; i >= 0; i-- {
		if l.Rect(l.Nodes[i]).Contains(x, y) {
			return l.Nodes[i], true
		}
	}
	return nil, false
}

// Bounds returns the tight box around all nodes. An empty layout yields a
// zero Rect.
func (l *Layout) Bounds() Rect {
	if len(l.Nodes) == 0 {
		return Rect{}
	}
	b := l.Rect(l.Nodes[0])
	for _, n := range l.Nodes[1:] {
		r := l.Rect(n)
		b.Left = min(b.Left, r.Left)
		b.Top = min(b.Top, r.Top)
		b.Right = max(b.Right, r.Right)
		b.Bottom = max(b.Bottom, r.Bottom)
	}
	return b
}

// Levels groups node IDs by depth.
func (l *Layout) Levels() map[int][]string {
	rows := make(map[int][]string)
	for _, n := range l.Nodes {
		rows[n.Depth] = append(rows[n.Depth], n.ID())
	}
	return rows
}
