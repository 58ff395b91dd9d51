// Package orgchart renders laid-out org charts as employee cards joined by
// curved connectors.
//
// Rendering is split the same way as the rest of the render tree: the
// [styles] subpackage decides what a card and a connector look like, and the
// [sink] subpackage assembles complete documents:
//
//	l := layout.Compute(forest, layout.DefaultConfig())
//	svg := sink.RenderSVG(l, sink.WithStyle(styles.Card{}), sink.WithSelected("e-42"))
//	data, err := sink.RenderJSON(l, sink.WithJSONStyle("card"))
//
// Cards are placed at the layout's top-left coordinates, so an SVG and the
// interactive viewer show an identical arrangement. Passing a view with
// [sink.WithView] applies the viewer's pan and zoom to the document.
package orgchart
