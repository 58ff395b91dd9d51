// Package chart provides serialization types for laid-out org charts.
//
// This package defines the wire format shared by JSON exports, API
// responses, the layout cache and the browser-based renderers. It sits at
// the boundary between the in-memory types and external formats:
//
//   - [Chart]: positioned nodes and connectors (from orgtree/layout.Layout)
//   - [TreeNode]: nested reporting tree (from orgtree.Forest)
//
// # Constants
//
// This package is the single source of truth for visualization constants:
//
//	chart.VizTypeOrgChart   // "orgchart"
//	chart.VizTypeNodelink   // "nodelink"
//	chart.StyleCard         // "card"
//	chart.StyleSimple       // "simple"
//
// # Chart Serialization
//
//	c := chart.Export(l, chart.StyleCard)
//	data, _ := chart.MarshalChart(c)
//	parsed, _ := chart.UnmarshalChart(data)
//
// # Nested Trees
//
// [FromForest] produces the nested format served by the corporate tree
// endpoint, with span-of-control colours on every node:
//
//	{"id": "A", "name": "Ada Lovelace", "direct_reports_count": 2,
//	 "span_color": "green", "children": [...]}
package chart
