package orgtree

// Walk visits every node in depth-first pre-order. Returning false from fn
// skips the node's children.
func (f *Forest) Walk(fn func(*Node) bool) {
	for _, r := range f.Roots {
		walk(r, fn)
	}
}

func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, fn)
	}
}

// Flatten returns all rendered nodes in depth-first pre-order.
func (f *Forest) Flatten() []*Node {
	out := make([]*Node, 0, f.Stats.Rendered)
	f.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Len returns the number of rendered nodes.
func (f *Forest) Len() int {
	n := 0
	f.Walk(func(*Node) bool {
		n++
		return true
	})
	return n
}

// Find returns the rendered node for id, or nil.
func (f *Forest) Find(id string) *Node {
	var found *Node
	f.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// MaxDepth returns the deepest rendered level, or -1 for an empty forest.
func (f *Forest) MaxDepth() int {
	deepest := -1
	f.Walk(func(n *Node) bool {
		deepest = max(deepest, n.Depth)
		return true
	})
	return deepest
}
