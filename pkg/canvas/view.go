package canvas

import (
	"fmt"
	"math"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// Point is a position in screen or canvas coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// ViewState is the persistent part of a viewport.
type ViewState struct {
	Zoom       float64 `json:"zoom" bson:"zoom"`
	Pan        Point   `json:"pan" bson:"pan"`
	SelectedID string  `json:"selected_id,omitempty" bson:"selected_id,omitempty"`
}

// Anchor decides which point stays fixed while zooming.
type Anchor string

const (
	// AnchorOrigin scales around the canvas origin; pan is left untouched.
	AnchorOrigin Anchor = "origin"
	// AnchorCursor keeps the canvas point under the cursor in place.
	AnchorCursor Anchor = "cursor"
)

// Defaults of the interactive chart.
const (
	DefaultZoom       = 0.7
	DefaultPanX       = 50.0
	DefaultPanY       = 50.0
	DefaultMinZoom    = 0.2
	DefaultMaxZoom    = 2.0
	DefaultWheelStep  = 0.05
	DefaultButtonStep = 0.1
)

// Config tunes a [Controller].
type Config struct {
	MinZoom     float64 `json:"min_zoom" toml:"min_zoom"`
	MaxZoom     float64 `json:"max_zoom" toml:"max_zoom"`
	WheelStep   float64 `json:"wheel_step" toml:"wheel_step"`
	ButtonStep  float64 `json:"button_step" toml:"button_step"`
	DefaultZoom float64 `json:"default_zoom" toml:"default_zoom"`
	// DefaultPan is nil when unset; an explicit (0,0) is kept.
	DefaultPan  *Point  `json:"default_pan,omitempty" toml:"default_pan"`
	Anchor      Anchor  `json:"anchor" toml:"anchor"`
}

// DefaultConfig returns the settings of the interactive chart.
func DefaultConfig() Config {
	return Config{
		MinZoom:     DefaultMinZoom,
		MaxZoom:     DefaultMaxZoom,
		WheelStep:   DefaultWheelStep,
		ButtonStep:  DefaultButtonStep,
		DefaultZoom: DefaultZoom,
		DefaultPan:  &Point{DefaultPanX, DefaultPanY},
		Anchor:      AnchorOrigin,
	}
}

// WithDefaults fills zero fields and a nil DefaultPan from [DefaultConfig].
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.MinZoom == 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom == 0 {
		c.MaxZoom = d.MaxZoom
	}
	if c.WheelStep == 0 {
		c.WheelStep = d.WheelStep
	}
	if c.ButtonStep == 0 {
		c.ButtonStep = d.ButtonStep
	}
	if c.DefaultZoom == 0 {
		c.DefaultZoom = d.DefaultZoom
	}
	if c.DefaultPan == nil {
		c.DefaultPan = d.DefaultPan
	}
	if c.Anchor == "" {
		c.Anchor = d.Anchor
	}
	return c
}

// Validate checks the zoom range and steps.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.MinZoom, validation.Required, validation.Min(0.01)),
		validation.Field(&c.MaxZoom, validation.Required, validation.Min(c.MinZoom)),
		validation.Field(&c.WheelStep, validation.Required, validation.Min(0.0)),
		validation.Field(&c.ButtonStep, validation.Required, validation.Min(0.0)),
		validation.Field(&c.DefaultZoom, validation.Required, validation.Min(c.MinZoom), validation.Max(c.MaxZoom)),
		validation.Field(&c.Anchor, validation.In(AnchorOrigin, AnchorCursor)),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid canvas config")
	}
	return nil
}

// DefaultView returns the view a fresh viewport starts with.
func (c Config) DefaultView() ViewState {
	v := ViewState{Zoom: c.DefaultZoom, Pan: Point{DefaultPanX, DefaultPanY}}
	if c.DefaultPan != nil {
		v.Pan = *c.DefaultPan
	}
	return v
}

func (c Config) clamp(z float64) float64 {
	z = math.Round(z*1e9) / 1e9
	return min(c.MaxZoom, max(c.MinZoom, z))
}

// ScreenToCanvas maps a screen point into canvas coordinates.
func (v ViewState) ScreenToCanvas(p Point) Point {
	return Point{(p.X - v.Pan.X) / v.Zoom, (p.Y - v.Pan.Y) / v.Zoom}
}

// CanvasToScreen maps a canvas point onto the screen.
func (v ViewState) CanvasToScreen(p Point) Point {
	return Point{p.X*v.Zoom + v.Pan.X, p.Y*v.Zoom + v.Pan.Y}
}

// Transform returns the CSS transform that renders the view, to be used
// with a transform origin of "0 0".
func (v ViewState) Transform() string {
	return fmt.Sprintf("translate(%spx, %spx) scale(%s)", fnum(v.Pan.X), fnum(v.Pan.Y), fnum(v.Zoom))
}

// ZoomPercent returns the zoom as a rounded percentage for display.
func (v ViewState) ZoomPercent() int {
	return int(math.Round(v.Zoom * 100))
}

func fnum(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
