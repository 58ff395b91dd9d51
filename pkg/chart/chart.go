package chart

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
)

// Visualization types.
const (
	VizTypeOrgChart = "orgchart"
	VizTypeNodelink = "nodelink"
)

// Visual styles.
const (
	StyleCard   = "card"
	StyleSimple = "simple"
)

// VizTypes lists the supported visualization types.
var VizTypes = []string{VizTypeOrgChart, VizTypeNodelink}

// Styles lists the supported visual styles.
var Styles = []string{StyleCard, StyleSimple}

// =============================================================================
// Chart - Positioned Org Chart
// =============================================================================

// Chart is the serialization format of a laid-out org chart.
type Chart struct {
	VizType string  `json:"viz_type" bson:"viz_type"`
	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`
	Style   string  `json:"style,omitempty" bson:"style,omitempty"`

	NodeWidth  float64 `json:"node_width" bson:"node_width"`
	NodeHeight float64 `json:"node_height" bson:"node_height"`

	Nodes []Node           `json:"nodes" bson:"nodes"`
	Edges []Edge           `json:"edges" bson:"edges"`
	Rows  map[int][]string `json:"rows,omitempty" bson:"rows,omitempty"`
	Stats orgtree.Stats    `json:"stats" bson:"stats"`
}

// Node is a positioned employee card.
type Node struct {
	ID            string  `json:"id" bson:"id"`
	Name          string  `json:"name" bson:"name"`
	Initials      string  `json:"initials" bson:"initials"`
	Title         string  `json:"job_title,omitempty" bson:"job_title,omitempty"`
	Department    string  `json:"department,omitempty" bson:"department,omitempty"`
	Status        string  `json:"status" bson:"status"`
	StatusColor   string  `json:"status_color" bson:"status_color"`
	X             float64 `json:"x" bson:"x"`
	Y             float64 `json:"y" bson:"y"`
	Depth         int     `json:"depth" bson:"depth"`
	Reports       int     `json:"reports,omitempty" bson:"reports,omitempty"`
	DirectReports int     `json:"direct_reports_count" bson:"direct_reports_count"`
	Truncated     int     `json:"truncated,omitempty" bson:"truncated,omitempty"`
	SpanColor     string  `json:"span_color" bson:"span_color"`
}

// Edge is a connector between a manager and a report.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
	Path string `json:"path" bson:"path"`
}

// Export converts a layout into its serialization format.
func Export(l *layout.Layout, style string) Chart {
	c := Chart{
		VizType:    VizTypeOrgChart,
		Width:      l.Width,
		Height:     l.Height,
		Style:      style,
		NodeWidth:  l.Config.NodeWidth,
		NodeHeight: l.Config.NodeHeight,
		Nodes:      make([]Node, 0, l.Len()),
		Edges:      make([]Edge, 0, len(l.Connectors)),
		Rows:       l.Levels(),
		Stats:      l.Stats,
	}
	for _, n := range l.Nodes {
		c.Nodes = append(c.Nodes, exportNode(n))
	}
	for _, conn := range l.Connectors {
		c.Edges = append(c.Edges, Edge{From: conn.FromID, To: conn.ToID, Path: conn.Path()})
	}
	return c
}

func exportNode(n *layout.Node) Node {
	e := n.Employee
	return Node{
		ID:            e.ID,
		Name:          e.Name(),
		Initials:      e.Initials(),
		Title:         e.Title,
		Department:    e.Department,
		Status:        string(e.Status),
		StatusColor:   e.Status.Color(),
		X:             n.X,
		Y:             n.Y,
		Depth:         n.Depth,
		Reports:       len(n.Children),
		DirectReports: n.DirectReports,
		Truncated:     n.Truncated,
		SpanColor:     hris.SpanColor(n.DirectReports),
	}
}

// Lookup returns the node with the given ID.
func (c *Chart) Lookup(id string) (Node, bool) {
	i := slices.IndexFunc(c.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return c.Nodes[i], true
}

// =============================================================================
// Chart Serialization API
// =============================================================================

// MarshalChart serializes a Chart to pretty-printed JSON bytes.
func MarshalChart(c Chart) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// UnmarshalChart deserializes JSON bytes into a Chart. Edges must reference
// known nodes.
func UnmarshalChart(data []byte) (Chart, error) {
	var c Chart
	if err := json.Unmarshal(data, &c); err != nil {
		return Chart{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal chart")
	}
	if c.VizType == "" {
		c.VizType = VizTypeOrgChart
	}
	known := make(map[string]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		known[n.ID] = true
	}
	for _, e := range c.Edges {
		if !known[e.From] || !known[e.To] {
			return Chart{}, errors.New(errors.ErrCodeInvalidInput, "edge %s -> %s references unknown node", e.From, e.To)
		}
	}
	return c, nil
}

// WriteChartFile writes a Chart to a JSON file.
func WriteChartFile(c Chart, path string) error {
	data, err := MarshalChart(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadChartFile reads a Chart from a JSON file.
func ReadChartFile(path string) (Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Chart{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalChart(data)
}
