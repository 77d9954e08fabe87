// Package assistant offers typed résumé operations on top of the AI
// assistant contract, plus a bounded retry wrapper for CV extraction.
package assistant

import (
	"context"
	"errors"

	"resume-builder/internal/ai"
)

// Assister answers one assistant request with a normalized envelope.
// *ai.Service satisfies it in-process; FunctionClient satisfies it over HTTP.
type Assister interface {
	Assist(ctx context.Context, req ai.Request) (ai.Envelope, error)
}

var (
	// ErrEmptyResult is returned when the assistant replied but the field the
	// caller asked for is empty.
	ErrEmptyResult = errors.New("assistant returned no usable result")
	// ErrCallFailed wraps error envelopes received from a remote function.
	ErrCallFailed = errors.New("assistant call failed")
)

var _ Assister = (*ai.Service)(nil)
