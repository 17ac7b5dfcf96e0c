package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	textlens "github.com/textlens/textlens-go"
	"github.com/textlens/textlens-go/workflow"
)

// All runs check, suggestions and rewrites for one document
// concurrently. The first failure cancels the remaining analyses and is
// returned.
func All(ctx context.Context, c *textlens.Client, req Request, opts ...workflow.PollOption) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var report Report
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := run(gctx, c, KindCheck, req, opts...)
		if err != nil {
			return err
		}
		report.Check = res
		return nil
	})
	g.Go(func() error {
		res, err := run(gctx, c, KindSuggestions, req, opts...)
		if err != nil {
			return err
		}
		report.Suggestions = res
		return nil
	})
	g.Go(func() error {
		res, err := run(gctx, c, KindRewrites, req, opts...)
		if err != nil {
			return err
		}
		report.Rewrites = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &report, nil
}
