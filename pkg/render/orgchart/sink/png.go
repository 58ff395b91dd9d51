package sink

import (
	"context"

	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
	"github.com/matzehuels/orgtower/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	browser render.BrowserOptions
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.browser.Scale = s }
}

// WithPNGBrowser sets the headless browser used for conversion.
func WithPNGBrowser(o render.BrowserOptions) PNGOption {
	return func(r *pngRenderer) {
		scale := r.browser.Scale
		r.browser = o
		if o.Scale == 0 {
			r.browser.Scale = scale
		}
	}
}

// RenderPNG renders the layout as PNG via SVG conversion in a headless
// browser.
func RenderPNG(ctx context.Context, l *layout.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{browser: render.BrowserOptions{Scale: 2.0}}
	for _, opt := range opts {
		opt(&r)
	}
	r.browser.Width, r.browser.Height = int(l.Width), int(l.Height)
	svg := RenderSVG(l, r.svgOpts...)
	return render.ToPNG(ctx, svg, r.browser)
}
