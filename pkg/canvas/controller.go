package canvas

import (
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
)

// State is the interaction state of a [Controller].
type State int

const (
	Idle State = iota
	Panning
)

func (s State) String() string {
	if s == Panning {
		return "panning"
	}
	return "idle"
}

// SelectionEvent describes a change of the selected employee. Node is nil
// when the selection was cleared.
type SelectionEvent struct {
	PreviousID string
	SelectedID string
	Node       *layout.Node
}

// SelectionListener is notified synchronously whenever the selection
// changes.
type SelectionListener func(SelectionEvent)

// Controller drives a viewport over a layout.
type Controller struct {
	cfg       Config
	layout    *layout.Layout
	view      ViewState
	state     State
	anchor    Point
	listeners []SelectionListener
}

// New creates a controller in the default view. Zero config fields take
// their defaults.
func New(l *layout.Layout, cfg Config) *Controller {
	cfg = cfg.WithDefaults()
	return &Controller{cfg: cfg, layout: l, view: cfg.DefaultView()}
}

// Restore creates a controller from a saved view. The zoom is clamped and a
// selection missing from the layout is dropped.
func Restore(l *layout.Layout, cfg Config, v ViewState) *Controller {
	c := New(l, cfg)
	c.view = v
	c.view.Zoom = c.cfg.clamp(v.Zoom)
	if v.Zoom == 0 {
		c.view.Zoom = c.cfg.DefaultZoom
	}
	if _, ok := c.lookup(v.SelectedID); !ok {
		c.view.SelectedID = ""
	}
	return c
}

// Gesture is an in-progress pointer interaction, saved between requests by
// callers that do not keep a controller alive.
type Gesture struct {
	Panning bool  `json:"panning" bson:"panning"`
	Anchor  Point `json:"anchor" bson:"anchor"`
}

// Gesture returns the current pointer interaction.
func (c *Controller) Gesture() Gesture {
	return Gesture{Panning: c.state == Panning, Anchor: c.anchor}
}

// Resume continues a saved pointer interaction.
func (c *Controller) Resume(g Gesture) {
	c.state = Idle
	if g.Panning {
		c.state = Panning
		c.anchor = g.Anchor
	}
}

// OnSelect registers a listener for selection changes.
func (c *Controller) OnSelect(fn SelectionListener) {
	c.listeners = append(c.listeners, fn)
}

// View returns the current view.
func (c *Controller) View() ViewState { return c.view }

// State returns the interaction state.
func (c *Controller) State() State { return c.state }

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// Layout returns the layout being viewed.
func (c *Controller) Layout() *layout.Layout { return c.layout }

// PointerDown handles a press at screen point p. A press on a node selects
// it; a press elsewhere starts panning.
func (c *Controller) PointerDown(p Point) {
	q := c.view.ScreenToCanvas(p)
	if n, ok := c.layout.HitTest(q.X, q.Y); ok {
		c.state = Idle
		c.setSelection(n.ID(), n)
		return
	}
	c.state = Panning
	c.anchor = p.Sub(c.view.Pan)
}

// PointerMove drags the chart while panning.
func (c *Controller) PointerMove(p Point) {
	if c.state != Panning {
		return
	}
	c.view.Pan = p.Sub(c.anchor)
}

// PointerUp ends a pan.
func (c *Controller) PointerUp() { c.state = Idle }

// PointerLeave ends a pan when the pointer leaves the viewport.
func (c *Controller) PointerLeave() { c.state = Idle }

// Wheel zooms by one wheel step: out for positive deltaY, in for negative.
// A zero delta is ignored. The interaction state is unchanged.
func (c *Controller) Wheel(deltaY float64, p Point) {
	switch {
	case deltaY > 0:
		c.zoomBy(-c.cfg.WheelStep, p)
	case deltaY < 0:
		c.zoomBy(c.cfg.WheelStep, p)
	}
}

// ZoomIn zooms in by one button step, anchored at the origin.
func (c *Controller) ZoomIn() { c.zoomTo(c.view.Zoom+c.cfg.ButtonStep, nil) }

// ZoomOut zooms out by one button step, anchored at the origin.
func (c *Controller) ZoomOut() { c.zoomTo(c.view.Zoom-c.cfg.ButtonStep, nil) }

// Reset restores the default zoom and pan from any state. The selection is
// kept.
func (c *Controller) Reset() {
	d := c.cfg.DefaultView()
	c.view.Zoom, c.view.Pan = d.Zoom, d.Pan
	c.state = Idle
}

// Select selects the node for id. It reports false and leaves the
// selection alone when id is not in the layout.
func (c *Controller) Select(id string) bool {
	n, ok := c.lookup(id)
	if !ok {
		return false
	}
	c.setSelection(id, n)
	return true
}

// ClearSelection closes the detail panel.
func (c *Controller) ClearSelection() { c.setSelection("", nil) }

// Selected returns the selected node, if any.
func (c *Controller) Selected() (*layout.Node, bool) {
	return c.lookup(c.view.SelectedID)
}

// SetLayout swaps in a refreshed layout. Zoom, pan and state are kept; a
// selection whose employee is gone is cleared.
func (c *Controller) SetLayout(l *layout.Layout) {
	c.layout = l
	if c.view.SelectedID == "" {
		return
	}
	if _, ok := c.lookup(c.view.SelectedID); !ok {
		c.setSelection("", nil)
	}
}

// ScreenToCanvas maps a screen point into canvas coordinates.
func (c *Controller) ScreenToCanvas(p Point) Point { return c.view.ScreenToCanvas(p) }

// CanvasToScreen maps a canvas point onto the screen.
func (c *Controller) CanvasToScreen(p Point) Point { return c.view.CanvasToScreen(p) }

// Transform returns the CSS transform of the current view.
func (c *Controller) Transform() string { return c.view.Transform() }

func (c *Controller) zoomBy(delta float64, p Point) {
	if c.cfg.Anchor == AnchorCursor {
		c.zoomTo(c.view.Zoom+delta, &p)
		return
	}
	c.zoomTo(c.view.Zoom+delta, nil)
}

func (c *Controller) zoomTo(z float64, around *Point) {
	z = c.cfg.clamp(z)
	if around != nil {
		fixed := c.view.ScreenToCanvas(*around)
		c.view.Pan = Point{around.X - fixed.X*z, around.Y - fixed.Y*z}
	}
	c.view.Zoom = z
}

func (c *Controller) setSelection(id string, n *layout.Node) {
	prev := c.view.SelectedID
	if prev == id {
		return
	}
	c.view.SelectedID = id
	ev := SelectionEvent{PreviousID: prev, SelectedID: id, Node: n}
	for _, fn := range c.listeners {
		fn(ev)
	}
}

func (c *Controller) lookup(id string) (*layout.Node, bool) {
	if id == "" || c.layout == nil {
		return nil, false
	}
	return c.layout.Lookup(id)
}
