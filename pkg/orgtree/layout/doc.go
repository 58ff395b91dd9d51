// Package layout assigns canvas coordinates to an org-chart forest.
//
// # Algorithm
//
// [Compute] walks each tree post-order with a horizontal cursor. A leaf
// takes the cursor as its X and consumes one slot (NodeWidth +
// HorizontalGap). An internal node lays out its children left to right and
// is then centered between its first and last child. Y depends only on
// depth, so every level is aligned:
//
//	Y = depth * (NodeHeight + VerticalGap)
//
// Trees of a forest sit side by side; after each tree the cursor advances
// by an extra TreeGap.
//
// Coordinates are the top-left corner of a node's box in canvas units.
// The layout guarantees that siblings never overlap, that a parent's X lies
// within the span of its children, and that a single child sits directly
// under its parent.
//
// # Connectors
//
// Each parent/child pair yields a [Connector] running from the bottom
// center of the parent to the top center of the child. [Connector.Path]
// returns the cubic Bezier path data used by the chart; [Connector.Line]
// returns a straight segment for renderers that cannot draw curves.
//
// # Canvas
//
// [Layout.Width] and [Layout.Height] describe the scrollable canvas, which
// always leaves a margin to the right and below the nodes. [Layout.Bounds]
// returns the tight box around the nodes. [Layout.HitTest] finds the node
// under a canvas point.
package layout
