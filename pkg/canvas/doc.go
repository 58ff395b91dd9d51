// Package canvas implements pan, zoom and selection for an org-chart
// viewport.
//
// A [Controller] owns a [ViewState] and reacts to pointer, wheel and button
// input. It has two states: [Idle] and [Panning]. Pressing on empty canvas
// starts a pan, moving drags the chart, and releasing or leaving the
// viewport returns to idle. Pressing on a node selects it instead and never
// pans.
//
// The view maps canvas coordinates to screen coordinates as
//
//	screen = canvas*zoom + pan
//
// which matches a CSS transform of translate(pan) scale(zoom) with the
// origin at the top-left corner. Zoom is always clamped to the configured
// range.
//
// A Controller does no I/O and is owned by a single caller; it is not safe
// for concurrent use. Interactive front ends such as the terminal viewer and
// the HTTP viewer sessions each drive their own Controller.
package canvas
