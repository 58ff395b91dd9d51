// Package pkg provides the core libraries for Orgtower org chart visualization.
//
// # Overview
//
// Orgtower turns a flat HR roster, where every employee names a manager,
// into a reporting tree and lays it out as a top-down org chart. The pkg
// directory is organized into four main areas:
//
//  1. Domain - roster model, tree building, layout, interaction
//  2. Output - SVG/PDF/PNG/JSON/DOT rendering and layout export
//  3. Infrastructure - roster sources, caching, sessions, realtime events
//  4. [pipeline] - Orchestration (load → build → layout → render)
//
// # Architecture
//
// The typical data flow through Orgtower:
//
//	HRIS API / JSON file / MongoDB
//	         ↓
//	    [source] packages (load and validate the roster)
//	         ↓
//	    [orgtree] package (reporting forest, display caps)
//	         ↓
//	    [orgtree/layout] package (canvas positions + connectors)
//	         ↓
//	    [render/orgchart/sink] or [chart] (SVG/PDF/PNG/JSON output)
//
// # Quick Start
//
// Load a roster file and render it to SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/orgtower/pkg/orgtree"
//	    "github.com/matzehuels/orgtower/pkg/orgtree/layout"
//	    "github.com/matzehuels/orgtower/pkg/render/orgchart/sink"
//	    "github.com/matzehuels/orgtower/pkg/source/file"
//	)
//
//	// 1. Load the roster
//	roster, _ := file.New("roster.json").Load(context.Background())
//
//	// 2. Build the reporting forest
//	f := orgtree.Build(roster.Employees, orgtree.DefaultLimits())
//
//	// 3. Compute layout
//	l := layout.Compute(f, layout.DefaultConfig())
//
//	// 4. Render to SVG
//	svg := sink.RenderSVG(l, sink.WithSpanOfControl())
//
// # Main Packages
//
// ## Domain
//
// [hris] - Employees, projects and rosters as delivered by the HRIS API,
// with validation, status colours and span-of-control thresholds.
//
// [orgtree] - Builds the reporting forest from a flat roster. Roots are
// employees without a resolvable manager; depth, children and root caps
// decide what is shown, while hidden reports are still counted.
//
// [orgtree/layout] - Positions nodes level by level, centres managers over
// their reports and computes elbow connectors.
//
// [canvas] - Pan, zoom and selection state machine shared by the terminal
// viewer and the HTTP session API.
//
// ## Output
//
// [render/orgchart/sink] - SVG, PDF, PNG and JSON sinks.
// [render/orgchart/styles] - Card and simple node styles.
// [render/nodelink] - Graphviz DOT output of the reporting tree.
// [render] - SVG to PDF/PNG conversion through a headless browser.
// [chart] - Serialization types for laid-out charts (JSON).
//
// ## Infrastructure
//
// [source] - Roster sources: JSON files with change watching, the HRIS HTTP
// API with outage snapshots, and MongoDB collections.
//
// [cache] - File, memory, Redis and null caches keyed by content hash.
//
// [session] - Viewer sessions in memory, Redis or a local file.
//
// [realtime] - Websocket hub and client for roster.updated events.
//
// [config] - TOML configuration with .env support.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/orgtree/...            # Specific package
//	go test -run Example                 # Examples only
//
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/pipeline
// [source]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/source
// [hris]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/hris
// [orgtree]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/orgtree
// [orgtree/layout]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/orgtree/layout
// [canvas]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/canvas
// [render]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/render
// [render/orgchart/sink]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/render/orgchart/sink
// [render/orgchart/styles]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/render/orgchart/styles
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/render/nodelink
// [chart]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/chart
// [cache]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/session
// [realtime]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/realtime
// [config]: https://pkg.go.dev/github.com/matzehuels/orgtower/pkg/config
package pkg
