package render

import (
	"context"

	"github.com/matzehuels/orgtower/pkg/capture"
)

// BrowserOptions configure the headless browser used for conversion.
type BrowserOptions = capture.Options

// ToPNG rasterizes an SVG document. Options.Scale sets the resolution
// multiplier (2.0 when unset).
func ToPNG(ctx context.Context, svg []byte, opts BrowserOptions) ([]byte, error) {
	b, err := capture.Launch(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.RenderPNG(ctx, svg)
}

// ToPDF prints an SVG document as a single-page PDF.
func ToPDF(ctx context.Context, svg []byte, opts BrowserOptions) ([]byte, error) {
	b, err := capture.Launch(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.RenderPDF(ctx, svg)
}
