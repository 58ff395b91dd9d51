package orgtree

import (
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
)

func emp(id, manager string) hris.Employee {
	return hris.Employee{ID: id, ManagerID: manager, DisplayName: id, Status: hris.StatusActive}
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func chain(n int) []hris.Employee {
	out := make([]hris.Employee, n)
	for i := range n {
		manager := ""
		if i > 0 {
			manager = fmt.Sprintf("E%d", i-1)
		}
		out[i] = emp(fmt.Sprintf("E%d", i), manager)
	}
	return out
}

func TestBuildSimpleTree(t *testing.T) {
	f := Build([]hris.Employee{emp("A", ""), emp("B", "A"), emp("C", "A")}, DefaultLimits())

	if len(f.Roots) != 1 || f.Roots[0].ID() != "A" {
		t.Fatalf("roots = %v, want [A]", ids(f.Roots))
	}
	root := f.Roots[0]
	if got := ids(root.Children); !slices.Equal(got, []string{"B", "C"}) {
		t.Errorf("children = %v, want [B C]", got)
	}
	for _, c := range root.Children {
		if c.Depth != 1 {
			t.Errorf("%s depth = %d, want 1", c.ID(), c.Depth)
		}
	}
	if root.DirectReports != 2 {
		t.Errorf("DirectReports = %d, want 2", root.DirectReports)
	}
	if f.Stats.Rendered != 3 || f.Stats.Hidden() != 0 {
		t.Errorf("stats = %+v", f.Stats)
	}
}

func TestBuildMissingManagerBecomesRoot(t *testing.T) {
	f := Build([]hris.Employee{emp("X", "Y")}, DefaultLimits())
	if len(f.Roots) != 1 || f.Roots[0].ID() != "X" || f.Roots[0].Depth != 0 {
		t.Fatalf("roots = %v", ids(f.Roots))
	}
}

func TestBuildSelfManagerBecomesRoot(t *testing.T) {
	f := Build([]hris.Employee{emp("S", "S"), emp("T", "S")}, DefaultLimits())
	if len(f.Roots) != 1 || f.Roots[0].ID() != "S" {
		t.Fatalf("roots = %v", ids(f.Roots))
	}
	if got := ids(f.Roots[0].Children); !slices.Equal(got, []string{"T"}) {
		t.Errorf("children = %v", got)
	}
}

func TestBuildDepthCap(t *testing.T) {
	f := Build(chain(8), DefaultLimits())

	nodes := f.Flatten()
	if got := ids(nodes); !slices.Equal(got, []string{"E0", "E1", "E2", "E3", "E4"}) {
		t.Fatalf("rendered = %v, want E0..E4", got)
	}
	if f.MaxDepth() != 4 {
		t.Errorf("MaxDepth = %d, want 4", f.MaxDepth())
	}
	if f.Stats.DroppedByDepth != 3 {
		t.Errorf("DroppedByDepth = %d, want 3", f.Stats.DroppedByDepth)
	}
	if last := nodes[len(nodes)-1]; last.Truncated != 1 || last.DirectReports != 1 {
		t.Errorf("E4 truncated = %d, reports = %d", last.Truncated, last.DirectReports)
	}
	if len(f.Stats.Unreachable) != 0 {
		t.Errorf("unexpected unreachable: %v", f.Stats.Unreachable)
	}
}

func TestBuildFanOutCap(t *testing.T) {
	employees := []hris.Employee{emp("M", "")}
	for i := range 15 {
		employees = append(employees, emp(fmt.Sprintf("R%02d", i), "M"))
	}
	// A report below a dropped child is dropped with it.
	employees = append(employees, emp("SUB", "R14"))

	f := Build(employees, DefaultLimits())
	root := f.Roots[0]
	if len(root.Children) != DefaultMaxChildren {
		t.Fatalf("children = %d, want %d", len(root.Children), DefaultMaxChildren)
	}
	if root.Children[0].ID() != "R00" || root.Children[11].ID() != "R11" {
		t.Errorf("fan-out must keep input order, got %v", ids(root.Children))
	}
	if root.Truncated != 3 || root.DirectReports != 15 {
		t.Errorf("truncated = %d, reports = %d", root.Truncated, root.DirectReports)
	}
	if f.Stats.DroppedByFanOut != 4 {
		t.Errorf("DroppedByFanOut = %d, want 4", f.Stats.DroppedByFanOut)
	}
	if f.Stats.Hidden() != 4 {
		t.Errorf("Hidden = %d, want 4", f.Stats.Hidden())
	}
}

func TestBuildRootCap(t *testing.T) {
	var employees []hris.Employee
	for i := range 8 {
		employees = append(employees, emp(fmt.Sprintf("R%d", i), ""))
	}
	f := Build(employees, DefaultLimits())
	if len(f.Roots) != DefaultMaxRoots {
		t.Fatalf("roots = %d, want %d", len(f.Roots), DefaultMaxRoots)
	}
	if f.Stats.DroppedRoots != 2 {
		t.Errorf("DroppedRoots = %d, want 2", f.Stats.DroppedRoots)
	}
}

func TestBuildCycleTerminates(t *testing.T) {
	employees := []hris.Employee{
		emp("ROOT", ""),
		emp("P", "Q"),
		emp("Q", "P"),
		emp("R", "ROOT"),
	}
	f := Build(employees, Unlimited())

	if got := ids(f.Flatten()); !slices.Equal(got, []string{"ROOT", "R"}) {
		t.Errorf("rendered = %v, want [ROOT R]", got)
	}
	if !slices.Equal(f.Stats.Unreachable, []string{"P", "Q"}) {
		t.Errorf("Unreachable = %v, want [P Q]", f.Stats.Unreachable)
	}
}

func TestBuildOnlyCycle(t *testing.T) {
	f := Build([]hris.Employee{emp("A", "B"), emp("B", "A")}, DefaultLimits())
	if len(f.Roots) != 0 {
		t.Errorf("roots = %v, want none", ids(f.Roots))
	}
	if len(f.Stats.Unreachable) != 2 {
		t.Errorf("Unreachable = %v", f.Stats.Unreachable)
	}
}

func TestBuildEmpty(t *testing.T) {
	f := Build(nil, DefaultLimits())
	if len(f.Roots) != 0 || f.Len() != 0 || f.MaxDepth() != -1 {
		t.Errorf("empty forest = %+v", f)
	}
}

func TestBuildDuplicateIDsFirstWins(t *testing.T) {
	first := emp("A", "")
	first.Title = "first"
	second := emp("A", "")
	second.Title = "second"

	f := Build([]hris.Employee{first, second}, DefaultLimits())
	if f.Len() != 1 || f.Roots[0].Employee.Title != "first" {
		t.Errorf("duplicate handling: %+v", f.Roots)
	}
}

// No employee appears twice, and every rendered node sits at its parent's
// depth plus one, for rosters with arbitrary (possibly cyclic) references.
func TestBuildNoDuplicates(t *testing.T) {
	for seed := range 50 {
		var employees []hris.Employee
		n := 30
		for i := range n {
			manager := ""
			if (i*7+seed)%5 != 0 {
				manager = fmt.Sprintf("E%d", (i*13+seed*3)%n)
			}
			employees = append(employees, emp(fmt.Sprintf("E%d", i), manager))
		}

		for _, limits := range []Limits{DefaultLimits(), Unlimited()} {
			f := Build(employees, limits)
			seen := map[string]bool{}
			var check func(n *Node, depth int)
			check = func(n *Node, depth int) {
				if seen[n.ID()] {
					t.Fatalf("seed %d: %s emitted twice", seed, n.ID())
				}
				seen[n.ID()] = true
				if n.Depth != depth {
					t.Fatalf("seed %d: %s depth %d, want %d", seed, n.ID(), n.Depth, depth)
				}
				if limits.MaxDepth > 0 && n.Depth >= limits.MaxDepth {
					t.Fatalf("seed %d: %s exceeds depth cap", seed, n.ID())
				}
				for _, c := range n.Children {
					check(c, depth+1)
				}
			}
			for _, r := range f.Roots {
				check(r, 0)
			}
			accounted := f.Stats.Rendered + f.Stats.DroppedByDepth + f.Stats.DroppedByFanOut + len(f.Stats.Unreachable)
			if f.Stats.DroppedRoots == 0 && accounted != n {
				t.Fatalf("seed %d: accounted %d of %d (%+v)", seed, accounted, n, f.Stats)
			}
		}
	}
}

func TestBuildEmployeesValidates(t *testing.T) {
	_, err := BuildEmployees([]hris.Employee{emp("A", ""), emp("A", "")}, DefaultLimits())
	if !errors.Is(err, errors.ErrCodeInvalidEmployee) {
		t.Errorf("duplicate ids: err = %v", err)
	}

	_, err = BuildEmployees([]hris.Employee{emp("A", "")}, Limits{MaxDepth: -1})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("negative limit: err = %v", err)
	}

	f, err := BuildEmployees([]hris.Employee{emp("A", ""), emp("B", "A")}, DefaultLimits())
	if err != nil || f.Len() != 2 {
		t.Errorf("valid roster: %v", err)
	}
}

func TestFind(t *testing.T) {
	f := Build([]hris.Employee{emp("A", ""), emp("B", "A"), emp("C", "B")}, DefaultLimits())
	if n := f.Find("C"); n == nil || n.Depth != 2 {
		t.Errorf("Find(C) = %+v", n)
	}
	if f.Find("Z") != nil {
		t.Error("Find(Z) should be nil")
	}
}
