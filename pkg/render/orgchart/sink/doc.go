// Package sink writes laid-out org charts to output formats.
//
// # Formats
//
//   - [RenderSVG]: standalone SVG with optional hover interaction
//   - [RenderJSON]: the pkg/chart wire format
//   - [RenderPNG], [RenderPDF]: SVG converted with a headless browser
//
// All renderers take functional options:
//
//	svg := sink.RenderSVG(l,
//	    sink.WithStyle(styles.Simple{}),
//	    sink.WithStraightConnectors(),
//	    sink.WithSelected("e-42"),
//	)
package sink
