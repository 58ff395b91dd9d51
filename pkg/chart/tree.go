package chart

import (
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
)

// =============================================================================
// TreeNode - Nested Reporting Tree
// =============================================================================

// TreeNode is one employee of the nested corporate tree.
type TreeNode struct {
	ID                 string     `json:"id" bson:"id"`
	EmployeeNumber     string     `json:"employee_number,omitempty" bson:"employee_number,omitempty"`
	Name               string     `json:"name" bson:"name"`
	FirstName          string     `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName           string     `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Title              string     `json:"job_title,omitempty" bson:"job_title,omitempty"`
	Department         string     `json:"department" bson:"department"`
	Trade              string     `json:"trade,omitempty" bson:"trade,omitempty"`
	Status             string     `json:"status" bson:"status"`
	ReportsToID        string     `json:"reports_to_id" bson:"reports_to_id"`
	DirectReportsCount int        `json:"direct_reports_count" bson:"direct_reports_count"`
	SpanColor          string     `json:"span_color" bson:"span_color"`
	Children           []TreeNode `json:"children,omitempty" bson:"children,omitempty"`
}

// FromForest converts a forest into nested tree nodes, one per root.
func FromForest(f *orgtree.Forest) []TreeNode {
	out := make([]TreeNode, 0, len(f.Roots))
	for _, r := range f.Roots {
		out = append(out, fromNode(r))
	}
	return out
}

func fromNode(n *orgtree.Node) TreeNode {
	e := n.Employee
	t := TreeNode{
		ID:                 e.ID,
		EmployeeNumber:     e.EmployeeNumber,
		Name:               e.Name(),
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		Title:              e.Title,
		Department:         e.Department,
		Trade:              e.Trade,
		Status:             string(e.Status),
		DirectReportsCount: n.DirectReports,
		SpanColor:          hris.SpanColor(n.DirectReports),
	}
	if e.HasManager() {
		t.ReportsToID = e.ManagerID
	}
	for _, c := range n.Children {
		t.Children = append(t.Children, fromNode(c))
	}
	return t
}

// Count returns the number of nodes in the subtree.
func (t TreeNode) Count() int {
	n := 1
	for _, c := range t.Children {
		n += c.Count()
	}
	return n
}
