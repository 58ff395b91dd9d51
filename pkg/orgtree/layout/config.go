package layout

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// Default geometry of the interactive chart, in canvas units.
const (
	DefaultNodeWidth     = 220.0
	DefaultNodeHeight    = 90.0
	DefaultHorizontalGap = 30.0
	DefaultVerticalGap   = 60.0
	DefaultTreeGap       = 80.0
)

// Canvas sizing.
const (
	CanvasMargin   = 200.0
	MinCanvasWidth = 2000.0
)

// Config holds the node geometry used by [Compute].
type Config struct {
	NodeWidth     float64 `json:"node_width" toml:"node_width"`
	NodeHeight    float64 `json:"node_height" toml:"node_height"`
	HorizontalGap float64 `json:"horizontal_gap" toml:"horizontal_gap"`
	VerticalGap   float64 `json:"vertical_gap" toml:"vertical_gap"`
	TreeGap       float64 `json:"tree_gap" toml:"tree_gap"`
}

// DefaultConfig returns the geometry of the interactive chart.
func DefaultConfig() Config {
	return Config{
		NodeWidth:     DefaultNodeWidth,
		NodeHeight:    DefaultNodeHeight,
		HorizontalGap: DefaultHorizontalGap,
		VerticalGap:   DefaultVerticalGap,
		TreeGap:       DefaultTreeGap,
	}
}

// WithDefaults fills zero fields with the default geometry.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.NodeWidth == 0 {
		c.NodeWidth = d.NodeWidth
	}
	if c.NodeHeight == 0 {
		c.NodeHeight = d.NodeHeight
	}
	if c.HorizontalGap == 0 {
		c.HorizontalGap = d.HorizontalGap
	}
	if c.VerticalGap == 0 {
		c.VerticalGap = d.VerticalGap
	}
	if c.TreeGap == 0 {
		c.TreeGap = d.TreeGap
	}
	return c
}

// Validate checks that node sizes are positive and gaps are not negative.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.NodeWidth, validation.Required, validation.Min(1.0)),
		validation.Field(&c.NodeHeight, validation.Required, validation.Min(1.0)),
		validation.Field(&c.HorizontalGap, validation.Min(0.0)),
		validation.Field(&c.VerticalGap, validation.Min(0.0)),
		validation.Field(&c.TreeGap, validation.Min(0.0)),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout config")
	}
	return nil
}

// Slot returns the horizontal space consumed by one leaf.
func (c Config) Slot() float64 { return c.NodeWidth + c.HorizontalGap }

// LevelHeight returns the vertical distance between two levels.
func (c Config) LevelHeight() float64 { return c.NodeHeight + c.VerticalGap }
