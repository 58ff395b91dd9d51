package capture

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// Default viewport and timing.
const (
	DefaultWidth   = 1600
	DefaultHeight  = 1000
	DefaultScale   = 2.0
	DefaultTimeout = 30 * time.Second
)

// Options configure a [Browser].
type Options struct {
	// ControlURL connects to a running browser instead of launching one.
	ControlURL string
	// Bin overrides the browser executable used by the launcher.
	Bin string
	// Width and Height set the viewport in CSS pixels.
	Width, Height int
	// Scale is the device scale factor (2.0 renders at 2x resolution).
	Scale float64
	// Timeout bounds each navigation and capture.
	Timeout time.Duration
	// WaitSelector, when set, is awaited before a screenshot is taken.
	WaitSelector string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Browser is a connected headless browser.
type Browser struct {
	opts     Options
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// Launch connects to Options.ControlURL, or starts a local headless browser
// when it is empty.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	opts = opts.withDefaults()
	b := &Browser{opts: opts}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "launch headless browser")
		}
		b.launcher = l
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		b.kill()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to browser at %s", controlURL)
	}
	b.browser = browser
	return b, nil
}

// Close shuts the browser down. A browser reached through ControlURL is
// only disconnected.
func (b *Browser) Close() error {
	var err error
	if b.browser != nil && b.launcher != nil {
		err = b.browser.Close()
	}
	b.kill()
	return err
}

func (b *Browser) kill() {
	if b.launcher != nil {
		b.launcher.Kill()
	}
}

// Screenshot loads url and captures it as PNG.
func (b *Browser) Screenshot(ctx context.Context, url string, fullPage bool) ([]byte, error) {
	var out []byte
	err := b.withPage(ctx, func(p *rod.Page) error {
		if err := p.Navigate(url); err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "navigate to %s", url)
		}
		if err := p.WaitLoad(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "wait for %s", url)
		}
		if b.opts.WaitSelector != "" {
			if _, err := p.Element(b.opts.WaitSelector); err != nil {
				return errors.Wrap(errors.ErrCodeTimeout, err, "wait for %q", b.opts.WaitSelector)
			}
		}
		data, err := p.Screenshot(fullPage, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		out = data
		return err
	})
	return out, err
}

// PrintURL loads url and prints it as PDF.
func (b *Browser) PrintURL(ctx context.Context, url string) ([]byte, error) {
	var out []byte
	err := b.withPage(ctx, func(p *rod.Page) error {
		if err := p.Navigate(url); err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "navigate to %s", url)
		}
		if err := p.WaitLoad(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "wait for %s", url)
		}
		data, err := printPDF(p)
		out = data
		return err
	})
	return out, err
}

// RenderPNG rasterizes an SVG document.
func (b *Browser) RenderPNG(ctx context.Context, svg []byte) ([]byte, error) {
	var out []byte
	err := b.withPage(ctx, func(p *rod.Page) error {
		if err := p.SetDocumentContent(Document(svg)); err != nil {
			return err
		}
		el, err := p.Element("svg")
		if err != nil {
			return err
		}
		data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 100)
		out = data
		return err
	})
	return out, err
}

// RenderPDF prints an SVG document as a single-page PDF sized to the chart.
func (b *Browser) RenderPDF(ctx context.Context, svg []byte) ([]byte, error) {
	var out []byte
	err := b.withPage(ctx, func(p *rod.Page) error {
		if err := p.SetDocumentContent(Document(svg)); err != nil {
			return err
		}
		data, err := printPDF(p)
		out = data
		return err
	})
	return out, err
}

func printPDF(p *rod.Page) ([]byte, error) {
	r, err := p.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (b *Browser) withPage(ctx context.Context, fn func(*rod.Page) error) error {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open page")
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.opts.Width,
		Height:            b.opts.Height,
		DeviceScaleFactor: b.opts.Scale,
	}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "set viewport")
	}

	if err := fn(page.Timeout(b.opts.Timeout)); err != nil {
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "capture")
	}
	return nil
}

// Document wraps an SVG in a minimal HTML page whose print size matches the
// SVG's width and height attributes.
func Document(svg []byte) string {
	w, h := svgSize(svg)
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><style>")
	buf.WriteString("html,body{margin:0;padding:0;background:#fff}svg{display:block}")
	if w > 0 && h > 0 {
		fmt.Fprintf(&buf, "@page{size:%.0fpx %.0fpx;margin:0}", w, h)
	}
	buf.WriteString("</style><title>")
	buf.WriteString(html.EscapeString("org chart"))
	buf.WriteString("</title></head><body>")
	buf.Write(svg)
	buf.WriteString("</body></html>\n")
	return buf.String()
}
