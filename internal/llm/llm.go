// Package llm wraps the external text-generation collaborator. The pipeline
// core depends only on the Generator contract, never on a provider.
package llm

import "context"

// Generator produces one free-form response from a fixed system framing
// string and one request string. Implementations may be slow and may fail;
// the caller owns its timeout policy via ctx.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CollaboratorError wraps a failed or empty text-generation call. It aborts
// the pipeline run; any retrying beyond the client layer's own transient
// retries is deliberately not done.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return "text generation failed (" + e.Op + "): " + e.Err.Error()
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
