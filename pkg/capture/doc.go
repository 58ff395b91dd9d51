// Package capture drives a headless Chromium through go-rod to rasterize
// charts and take screenshots of running viewers.
//
// A [Browser] wraps one browser process. Either connect to an existing
// DevTools endpoint with Options.ControlURL, or let [Launch] start a local
// browser:
//
//	b, err := capture.Launch(ctx, capture.Options{Width: 1600, Height: 900})
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	png, err := b.RenderPNG(ctx, svg)        // SVG document to PNG
//	pdf, err := b.RenderPDF(ctx, svg)        // SVG document to PDF
//	shot, err := b.Screenshot(ctx, url, true) // live page to PNG
//
// Every page opened by a Browser is closed before the call returns.
package capture
