package cache

// Keyer derives cache keys.
type Keyer interface {
	// RosterKey identifies a roster snapshot fetched from a source.
	RosterKey(source string) string
	// LayoutKey identifies a layout computed from a roster.
	LayoutKey(rosterHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs that change a layout.
type LayoutKeyOpts struct {
	MaxDepth      int     `json:"max_depth"`
	MaxChildren   int     `json:"max_children"`
	MaxRoots      int     `json:"max_roots"`
	NodeWidth     float64 `json:"node_width"`
	NodeHeight    float64 `json:"node_height"`
	HorizontalGap float64 `json:"horizontal_gap"`
	VerticalGap   float64 `json:"vertical_gap"`
	TreeGap       float64 `json:"tree_gap"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	VizType     string `json:"viz_type"`
	Format      string `json:"format"`
	Style       string `json:"style,omitempty"`
	Straight    bool   `json:"straight,omitempty"`
	Spans       bool   `json:"spans,omitempty"`
	Detailed    bool   `json:"detailed,omitempty"`
	Interactive bool   `json:"interactive,omitempty"`
	Selected    string `json:"selected,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) RosterKey(source string) string {
	return hashKey("roster", source)
}

func (DefaultKeyer) LayoutKey(rosterHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", rosterHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
