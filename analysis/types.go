package analysis

import (
	"fmt"

	"golang.org/x/text/language"
)

// Kind selects which analysis the service runs on a document.
type Kind string

const (
	KindCheck       Kind = "check"
	KindSuggestions Kind = "suggestions"
	KindRewrites    Kind = "rewrites"
)

// Kinds lists every analysis kind.
var Kinds = []Kind{KindCheck, KindSuggestions, KindRewrites}

func (k Kind) valid() bool {
	return k == KindCheck || k == KindSuggestions || k == KindRewrites
}

// Request is one document to analyze.
type Request struct {
	// Content is the UTF-8 document text.
	Content string `json:"content"`
	// ContentType of the document, e.g. "text/plain" or "text/markdown".
	// Defaults to "text/plain".
	ContentType string `json:"contentType,omitempty"`
	// Language is an optional BCP-47 tag such as "en-US".
	Language string `json:"language,omitempty"`
	// Profile names the style profile to check against. Optional.
	Profile string `json:"profile,omitempty"`
}

// Validate checks the request shape. Language tags are canonicalized in
// place so "EN-us" reaches the service as "en-US".
func (r *Request) Validate() error {
	if r.Content == "" {
		return fmt.Errorf("validation: content must not be empty")
	}
	if r.ContentType == "" {
		r.ContentType = "text/plain"
	}
	if r.Language != "" {
		tag, err := language.Parse(r.Language)
		if err != nil {
			return fmt.Errorf("validation: invalid language tag %q: %w", r.Language, err)
		}
		r.Language = tag.String()
	}
	return nil
}

// Issue is a single style or grammar finding.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Severity string `json:"severity"`
}

// Suggestion is an inline replacement proposal.
type Suggestion struct {
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Original    string  `json:"original"`
	Replacement string  `json:"replacement"`
	Confidence  float64 `json:"confidence"`
}

// RewriteVariant is a full-document rewrite variant.
type RewriteVariant struct {
	Text  string  `json:"text"`
	Tone  string  `json:"tone,omitempty"`
	Score float64 `json:"score"`
}

// Result is the outcome of one analysis workflow. Only the field
// matching the requested kind is populated.
type Result struct {
	Kind        Kind             `json:"kind"`
	WorkflowID  string           `json:"workflowId"`
	Score       float64          `json:"score"`
	Issues      []Issue          `json:"issues,omitempty"`
	Suggestions []Suggestion     `json:"suggestions,omitempty"`
	Rewrites    []RewriteVariant `json:"rewrites,omitempty"`
}

// Report bundles all three analyses for one document.
type Report struct {
	Check       *Result
	Suggestions *Result
	Rewrites    *Result
}
