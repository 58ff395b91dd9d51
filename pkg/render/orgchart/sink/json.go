package sink

import (
	"github.com/matzehuels/orgtower/pkg/chart"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style string
}

// WithJSONStyle records the style name in the output so the chart can be
// re-rendered the same way.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// RenderJSON serializes the layout in the [chart.Chart] format.
func RenderJSON(l *layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	return chart.MarshalChart(chart.Export(l, r.style))
}
