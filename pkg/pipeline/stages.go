package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/orgtree"
	"github.com/matzehuels/orgtower/pkg/orgtree/layout"
)

// Build validates the roster's employees and builds the capped forest.
func Build(ctx context.Context, source string, r *hris.Roster, opts Options) (*orgtree.Forest, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, source, len(r.Employees))
	start := time.Now()

	f, err := orgtree.BuildEmployees(r.Employees, *opts.Limits)
	if err != nil {
		hooks.OnBuildComplete(ctx, source, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, source, f.Stats.Rendered, time.Since(start), nil)

	if n := len(f.Stats.Unreachable); n > 0 {
		opts.Logger.Warn("employees unreachable from any root", "count", n, "ids", f.Stats.Unreachable)
	}
	return f, nil
}

// ComputeLayout positions the forest on the canvas.
func ComputeLayout(ctx context.Context, f *orgtree.Forest, opts Options) (*layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, f.Stats.Rendered)
	start := time.Now()
	l := layout.Compute(f, opts.Layout)
	hooks.OnLayoutComplete(ctx, time.Since(start), nil)
	return l, nil
}
