// Package orgtree turns a flat employee roster into a forest of reporting
// trees.
//
// # Overview
//
// Rosters arrive as flat lists where each employee optionally names a
// manager. [Build] resolves those references into ordered trees:
//
//	forest := orgtree.Build(roster.Employees, orgtree.DefaultLimits())
//	for _, root := range forest.Roots {
//	    fmt.Println(root.Employee.Name(), len(root.Children))
//	}
//
// An employee becomes a root when its manager reference is empty, points at
// itself, or names an ID that is not part of the roster. Children keep the
// order in which they appear in the input.
//
// # Limits
//
// [Limits] bound the visual size of the forest: the number of rendered
// levels, the number of children shown per manager, and the number of trees.
// Employees beyond a cap are left out of the forest but never out of the
// roster; [Stats] reports how many were omitted and why. A zero limit
// disables that cap.
//
// # Cycles
//
// Manager references may form cycles in bad data. Traversal only follows
// precomputed child lists and keeps a visited set, so no employee is emitted
// twice and the walk always terminates. Employees that only sit on a cycle
// are not reachable from any root; their IDs are listed in
// [Stats.Unreachable].
//
// The builder is pure: it performs no I/O and never fails on structural
// oddities. Malformed records are rejected beforehand by [hris.Validate];
// [BuildEmployees] runs both steps.
package orgtree
