// Package pipeline provides the core chart pipeline for orgtower.
//
// This package implements the complete build → layout → render pipeline used
// by the CLI and the HTTP server. By centralizing this logic, both entry
// points size, cache and render charts the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Turn the flat roster into a capped [orgtree.Forest]
//  2. Layout: Compute canvas positions and connectors
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	roster, _, err := runner.LoadRoster(ctx, src, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, roster, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/chart"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
	"github.com/matzehuels/orgtower/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// DefaultVizType is the default visualization type.
const DefaultVizType = chart.VizTypeOrgChart

// DefaultStyle is the default visual style.
const DefaultStyle = chart.StyleCard

// DefaultSource labels rosters whose origin is not named.
const DefaultSource = "roster"

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	chart.StyleCard:   true,
	chart.StyleSimple: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	chart.VizTypeOrgChart: true,
	chart.VizTypeNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options. Nil Limits means [orgtree.DefaultLimits].
	Source string          `json:"source,omitempty"`
	Limits *orgtree.Limits `json:"limits,omitempty"`

	// Layout options
	Layout layout.Config `json:"layout,omitempty"`

	// Render options
	VizType     string   `json:"viz_type,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Straight    bool     `json:"straight,omitempty"`
	Spans       bool     `json:"spans,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Selected    string   `json:"selected,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger           `json:"-"`
	Browser render.BrowserOptions `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RosterHash is the content hash of the roster's employees.
	RosterHash string

	// Forest is the capped org tree.
	Forest *orgtree.Forest

	// Layout holds positions and connectors.
	Layout *layout.Layout

	// Chart is the serializable form of Layout.
	Chart chart.Chart

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Employees  int
	Rendered   int
	Hidden     int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RosterHit bool // Whether the roster came from cache
	LayoutHit bool // Whether the chart JSON came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, keys(ValidFormats))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: %s)", style, keys(ValidStyles))
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType, "invalid viz_type: %q (must be one of: %s)", vizType, keys(ValidVizTypes))
	}
	return nil
}

func keys(m map[string]bool) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return strings.Join(out, ", ")
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild validates and sets defaults for tree building.
func (o *Options) ValidateForBuild() error {
	if o.Source == "" {
		o.Source = DefaultSource
	}
	if o.Limits == nil {
		l := orgtree.DefaultLimits()
		o.Limits = &l
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o.Limits.Validate()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	o.Layout = o.Layout.WithDefaults()
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	return o.Layout.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == chart.VizTypeNodelink
}

// BuildLimits returns the effective tree limits.
func (o *Options) BuildLimits() orgtree.Limits {
	if o.Limits == nil {
		return orgtree.DefaultLimits()
	}
	return *o.Limits
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	limits := o.BuildLimits()
	cfg := o.Layout.WithDefaults()
	return cache.LayoutKeyOpts{
		MaxDepth:      limits.MaxDepth,
		MaxChildren:   limits.MaxChildren,
		MaxRoots:      limits.MaxRoots,
		NodeWidth:     cfg.NodeWidth,
		NodeHeight:    cfg.NodeHeight,
		HorizontalGap: cfg.HorizontalGap,
		VerticalGap:   cfg.VerticalGap,
		TreeGap:       cfg.TreeGap,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		VizType:     o.VizType,
		Format:      format,
		Style:       o.Style,
		Straight:    o.Straight,
		Spans:       o.Spans,
		Detailed:    o.Detailed,
		Interactive: o.Interactive,
		Selected:    o.Selected,
	}
}

// RosterHash returns the content hash of a roster's employees.
// FetchedAt is excluded so an unchanged refresh keeps its cache entries.
func RosterHash(r *hris.Roster) string {
	h, err := cache.HashJSON(r.Employees)
	if err != nil {
		return ""
	}
	return h
}
