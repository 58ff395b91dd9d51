package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
)

func emp(id, manager string) hris.Employee {
	return hris.Employee{ID: id, ManagerID: manager, Status: hris.StatusActive}
}

func compute(t *testing.T, employees ...hris.Employee) *Layout {
	t.Helper()
	return Compute(orgtree.Build(employees, orgtree.DefaultLimits()), DefaultConfig())
}

func mustLookup(t *testing.T, l *Layout, id string) *Node {
	t.Helper()
	n, ok := l.Lookup(id)
	if !ok {
		t.Fatalf("node %s not in layout", id)
	}
	return n
}

func TestComputeTwoChildren(t *testing.T) {
	l := compute(t, emp("A", ""), emp("B", "A"), emp("C", "A"))

	a, b, c := mustLookup(t, l, "A"), mustLookup(t, l, "B"), mustLookup(t, l, "C")
	if b.X != 0 || c.X != 250 {
		t.Errorf("children X = %v, %v; want 0, 250", b.X, c.X)
	}
	if a.X != 125 {
		t.Errorf("parent X = %v, want 125", a.X)
	}
	if a.Y != 0 || b.Y != 150 || c.Y != 150 {
		t.Errorf("Y = %v, %v, %v; want 0, 150, 150", a.Y, b.Y, c.Y)
	}
	if len(l.Connectors) != 2 {
		t.Fatalf("connectors = %d, want 2", len(l.Connectors))
	}
	if got, want := l.Connectors[0].Path(), "M235,90 C235,120 110,120 110,150"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestComputeSingleChildAligned(t *testing.T) {
	l := compute(t, emp("A", ""), emp("B", "A"), emp("C", "B"))
	a, b, c := mustLookup(t, l, "A"), mustLookup(t, l, "B"), mustLookup(t, l, "C")
	if a.X != b.X || b.X != c.X {
		t.Errorf("single-child chain not aligned: %v %v %v", a.X, b.X, c.X)
	}
}

func TestComputeForestTreeGap(t *testing.T) {
	l := compute(t, emp("A", ""), emp("B", ""))
	a, b := mustLookup(t, l, "A"), mustLookup(t, l, "B")
	if a.X != 0 || b.X != 330 {
		t.Errorf("X = %v, %v; want 0, 330", a.X, b.X)
	}
	if l.Width != MinCanvasWidth {
		t.Errorf("Width = %v, want %v", l.Width, MinCanvasWidth)
	}
	if l.Height != 290 {
		t.Errorf("Height = %v, want 290", l.Height)
	}
}

func TestComputeWideCanvas(t *testing.T) {
	var employees []hris.Employee
	for i := range 6 {
		root := fmt.Sprintf("R%d", i)
		employees = append(employees, emp(root, ""))
		for j := range 3 {
			employees = append(employees, emp(fmt.Sprintf("%s-%d", root, j), root))
		}
	}
	l := compute(t, employees...)
	// Six trees of three leaves each: 6*(3*250 + 80).
	if want := 6*(3*250.0+80) + CanvasMargin; l.Width != want {
		t.Errorf("Width = %v, want %v", l.Width, want)
	}
}

func TestComputeEmpty(t *testing.T) {
	for _, f := range []*orgtree.Forest{nil, orgtree.Build(nil, orgtree.DefaultLimits())} {
		l := Compute(f, Config{})
		if l.Len() != 0 || len(l.Connectors) != 0 {
			t.Errorf("empty layout has content: %+v", l)
		}
		if l.Width != MinCanvasWidth || l.Height != DefaultNodeHeight+CanvasMargin {
			t.Errorf("empty canvas = %vx%v", l.Width, l.Height)
		}
		if l.Bounds() != (Rect{}) {
			t.Errorf("Bounds = %+v", l.Bounds())
		}
	}
}

// Layout invariants hold for a variety of tree shapes: levels are aligned,
// parents sit within their children's span, and siblings never overlap.
func TestComputeInvariants(t *testing.T) {
	for seed := range 40 {
		var employees []hris.Employee
		for i := range 40 {
			manager := ""
			if i > 0 && (i+seed)%7 != 0 {
				manager = fmt.Sprintf("E%d", (i*(seed+3))%i)
			}
			employees = append(employees, emp(fmt.Sprintf("E%d", i), manager))
		}
		f := orgtree.Build(employees, orgtree.DefaultLimits())
		l := Compute(f, DefaultConfig())
		cfg := l.Config

		if l.Len() != f.Stats.Rendered {
			t.Fatalf("seed %d: %d nodes laid out, %d rendered", seed, l.Len(), f.Stats.Rendered)
		}

		for _, n := range l.Nodes {
			if want := float64(n.Depth) * cfg.LevelHeight(); n.Y != want {
				t.Fatalf("seed %d: %s Y = %v, want %v", seed, n.ID(), n.Y, want)
			}
			if n.IsLeaf() {
				continue
			}
			first := mustLookup(t, l, n.Children[0].ID())
			last := mustLookup(t, l, n.Children[len(n.Children)-1].ID())
			if n.X < first.X || n.X > last.X {
				t.Fatalf("seed %d: %s X %v outside [%v, %v]", seed, n.ID(), n.X, first.X, last.X)
			}
			for i := 1; i < len(n.Children); i++ {
				prev := mustLookup(t, l, n.Children[i-1].ID())
				cur := mustLookup(t, l, n.Children[i].ID())
				if cur.X-prev.X < cfg.Slot() {
					t.Fatalf("seed %d: siblings %s and %s overlap", seed, prev.ID(), cur.ID())
				}
			}
		}

		// No two boxes on the same level overlap, across trees too.
		for depth, row := range l.Levels() {
			for i := 1; i < len(row); i++ {
				a, b := mustLookup(t, l, row[i-1]), mustLookup(t, l, row[i])
				if b.X-a.X < cfg.NodeWidth {
					t.Fatalf("seed %d: level %d boxes %s and %s overlap", seed, depth, a.ID(), b.ID())
				}
			}
		}
	}
}

func TestHitTest(t *testing.T) {
	l := compute(t, emp("A", ""), emp("B", "A"), emp("C", "A"))

	tests := []struct {
		x, y float64
		want string
	}{
		{130, 10, "A"},
		{125 + 220, 90, "A"},
		{5, 160, "B"},
		{260, 200, "C"},
		{235, 200, ""},
		{130, 120, ""},
		{-1, 0, ""},
	}
	for _, tt := range tests {
		n, ok := l.HitTest(tt.x, tt.y)
		got := ""
		if ok {
			got = n.ID()
		}
		if got != tt.want {
			t.Errorf("HitTest(%v, %v) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	l := compute(t, emp("A", ""), emp("B", "A"), emp("C", "A"))
	want := Rect{Left: 0, Top: 0, Right: 470, Bottom: 240}
	if got := l.Bounds(); got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
}

func TestConnectorLine(t *testing.T) {
	c := Connector{X1: 110.5, Y1: 90, X2: 110.5, Y2: 150}
	if got, want := c.Line(), "M110.5,90 L110.5,150"; got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
	if c.MidY() != 120 {
		t.Errorf("MidY = %v", c.MidY())
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{NodeWidth: 100}.WithDefaults()
	if cfg.NodeWidth != 100 || cfg.NodeHeight != DefaultNodeHeight || cfg.TreeGap != DefaultTreeGap {
		t.Errorf("WithDefaults = %+v", cfg)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := (Config{NodeWidth: 100, NodeHeight: 50, HorizontalGap: -1}).Validate(); err == nil {
		t.Error("negative gap should be rejected")
	}
	if math.IsNaN(cfg.Slot()) || cfg.Slot() != 130 {
		t.Errorf("Slot = %v", cfg.Slot())
	}
}
