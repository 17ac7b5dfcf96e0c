// Package analysis submits documents to the Textlens check, suggestions
// and rewrites endpoints and waits for the workflow results.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	textlens "github.com/textlens/textlens-go"
	"github.com/textlens/textlens-go/batch"
	"github.com/textlens/textlens-go/workflow"
)

// Check runs issue detection on one document.
func Check(ctx context.Context, c *textlens.Client, req Request, opts ...workflow.PollOption) (*Result, error) {
	return run(ctx, c, KindCheck, req, opts...)
}

// Suggest runs inline-fix generation on one document.
func Suggest(ctx context.Context, c *textlens.Client, req Request, opts ...workflow.PollOption) (*Result, error) {
	return run(ctx, c, KindSuggestions, req, opts...)
}

// Rewrite generates rewrite variants for one document.
func Rewrite(ctx context.Context, c *textlens.Client, req Request, opts ...workflow.PollOption) (*Result, error) {
	return run(ctx, c, KindRewrites, req, opts...)
}

// run submits the analysis and polls its workflow to completion.
func run(ctx context.Context, c *textlens.Client, kind Kind, req Request, opts ...workflow.PollOption) (*Result, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("validation: unknown analysis kind %q", kind)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	submission := struct {
		Kind     Kind    `json:"kind"`
		Document Request `json:"document"`
	}{Kind: kind, Document: req}

	var created struct {
		WorkflowID string `json:"workflowId"`
	}
	if err := c.PostJSON(ctx, "/v1/analyses", submission, &created); err != nil {
		return nil, fmt.Errorf("submit %s: %w", kind, err)
	}
	if created.WorkflowID == "" {
		return nil, fmt.Errorf("submit %s: service returned no workflow id", kind)
	}

	state, err := workflow.Poll(ctx, func(ctx context.Context) (*workflow.State, error) {
		var s workflow.State
		if err := c.GetJSON(ctx, "/v1/workflows/"+created.WorkflowID, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if len(state.Result) == 0 {
		return nil, fmt.Errorf("workflow %s succeeded with no result payload", state.ID)
	}

	var result Result
	if err := json.Unmarshal(state.Result, &result); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", kind, err)
	}
	result.Kind = kind
	result.WorkflowID = state.ID
	return &result, nil
}

// Operation adapts a single analysis kind into the shape the batch
// engine drives. The returned operation is safe for concurrent use.
func Operation(c *textlens.Client, kind Kind, opts ...workflow.PollOption) batch.Operation[Request, Result] {
	return func(ctx context.Context, req Request) (*Result, error) {
		return run(ctx, c, kind, req, opts...)
	}
}
