package sink

import (
	"context"

	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
	"github.com/matzehuels/orgtower/pkg/render"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
	browser render.BrowserOptions
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// WithPDFBrowser sets the headless browser used for conversion.
func WithPDFBrowser(o render.BrowserOptions) PDFOption {
	return func(r *pdfRenderer) { r.browser = o }
}

// RenderPDF renders the layout as a single-page PDF via SVG conversion in a
// headless browser.
func RenderPDF(ctx context.Context, l *layout.Layout, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	svg := RenderSVG(l, r.svgOpts...)
	return render.ToPDF(ctx, svg, r.browser)
}
