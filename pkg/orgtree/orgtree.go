package orgtree

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
)

// Default caps used by the interactive chart.
const (
	DefaultMaxDepth    = 5
	DefaultMaxChildren = 12
	DefaultMaxRoots    = 6
)

// Limits bound the size of the rendered forest. A zero field disables the
// corresponding cap.
type Limits struct {
	// MaxDepth is the number of rendered levels. With MaxDepth 5 a deeper
	// chain renders levels 0 through 4.
	MaxDepth int `json:"max_depth" toml:"max_depth"`

	// MaxChildren is the number of direct reports shown per manager, taken
	// in input order.
	MaxChildren int `json:"max_children" toml:"max_children"`

	// MaxRoots is the number of trees in the forest, taken in input order.
	MaxRoots int `json:"max_roots" toml:"max_roots"`
}

// DefaultLimits returns the caps used by the interactive chart.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:    DefaultMaxDepth,
		MaxChildren: DefaultMaxChildren,
		MaxRoots:    DefaultMaxRoots,
	}
}

// Unlimited returns limits that render every reachable employee.
func Unlimited() Limits { return Limits{} }

// Validate rejects negative caps.
func (l Limits) Validate() error {
	err := validation.ValidateStruct(&l,
		validation.Field(&l.MaxDepth, validation.Min(0)),
		validation.Field(&l.MaxChildren, validation.Min(0)),
		validation.Field(&l.MaxRoots, validation.Min(0)),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid tree limits")
	}
	return nil
}

// Node is one employee placed in the reporting forest.
type Node struct {
	Employee hris.Employee
	Children []*Node
	Depth    int

	// DirectReports counts every direct report in the roster, including
	// those omitted by a cap.
	DirectReports int

	// Truncated counts direct reports omitted from Children by a cap.
	Truncated int
}

// ID returns the employee ID.
func (n *Node) ID() string { return n.Employee.ID }

// IsLeaf reports whether the node has no rendered children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Stats summarizes how the roster mapped onto the forest.
type Stats struct {
	Total           int      `json:"total"`
	Rendered        int      `json:"rendered"`
	DroppedByDepth  int      `json:"dropped_by_depth"`
	DroppedByFanOut int      `json:"dropped_by_fan_out"`
	DroppedRoots    int      `json:"dropped_roots"`
	Unreachable     []string `json:"unreachable,omitempty"`
}

// Hidden returns the number of employees not present in the forest.
func (s Stats) Hidden() int { return s.Total - s.Rendered }

// Forest is the ordered set of reporting trees built from a roster.
type Forest struct {
	Roots []*Node
	Stats Stats
}

// BuildEmployees validates the employees and builds the forest.
func BuildEmployees(employees []hris.Employee, limits Limits) (*Forest, error) {
	if err := hris.Validate(employees); err != nil {
		return nil, err
	}
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return Build(employees, limits), nil
}

// Build resolves manager references into a forest. It never fails: missing
// or self-referencing managers produce roots, and cycles are cut by the
// visited set. When IDs repeat, the first record wins.
func Build(employees []hris.Employee, limits Limits) *Forest {
	b := &builder{
		limits:   limits,
		byID:     make(map[string]hris.Employee, len(employees)),
		children: make(map[string][]string),
		seen:     make(map[string]bool, len(employees)),
	}
	return b.build(employees)
}

type builder struct {
	limits   Limits
	order    []string
	byID     map[string]hris.Employee
	children map[string][]string
	seen     map[string]bool
	stats    Stats
}

func (b *builder) build(employees []hris.Employee) *Forest {
	for _, e := range employees {
		if _, dup := b.byID[e.ID]; dup {
			continue
		}
		b.byID[e.ID] = e
		b.order = append(b.order, e.ID)
	}
	b.stats.Total = len(b.order)

	var roots []string
	for _, id := range b.order {
		e := b.byID[id]
		if _, ok := b.byID[e.ManagerID]; e.HasManager() && ok {
			b.children[e.ManagerID] = append(b.children[e.ManagerID], id)
			continue
		}
		roots = append(roots, id)
	}

	f := &Forest{}
	for _, id := range roots {
		if b.limits.MaxRoots > 0 && len(f.Roots) >= b.limits.MaxRoots {
			b.stats.DroppedRoots++
			b.drop(id)
			continue
		}
		f.Roots = append(f.Roots, b.materialize(id, 0))
	}

	for _, id := range b.order {
		if !b.seen[id] {
			b.stats.Unreachable = append(b.stats.Unreachable, id)
		}
	}
	f.Stats = b.stats
	return f
}

func (b *builder) materialize(id string, depth int) *Node {
	b.seen[id] = true
	b.stats.Rendered++

	kids := b.children[id]
	n := &Node{Employee: b.byID[id], Depth: depth, DirectReports: len(kids)}

	atDepthCap := b.limits.MaxDepth > 0 && depth+1 >= b.limits.MaxDepth
	for _, kid := range kids {
		if b.seen[kid] {
			continue
		}
		switch {
		case atDepthCap:
			b.stats.DroppedByDepth += b.drop(kid)
			n.Truncated++
		case b.limits.MaxChildren > 0 && len(n.Children) >= b.limits.MaxChildren:
			b.stats.DroppedByFanOut += b.drop(kid)
			n.Truncated++
		default:
			n.Children = append(n.Children, b.materialize(kid, depth+1))
		}
	}
	return n
}

// drop marks the subtree under id as seen without rendering it and returns
// the number of employees it held.
func (b *builder) drop(id string) int {
	count := 0
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b.seen[cur] {
			continue
		}
		b.seen[cur] = true
		count++
		stack = append(stack, b.children[cur]...)
	}
	return count
}
