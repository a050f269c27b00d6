package domain

import "errors"

// Error taxonomy for the pipeline. Callers classify with errors.Is and
// recover at the smallest scope that can still produce an answer.
var (
	// ErrProviderUnavailable marks network or auth failure calling a
	// model provider or the vector store.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMalformedResponse marks model output that stays unparseable
	// even after the repair ladder.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrNotFound marks a missing primary entity (clinic, patient).
	ErrNotFound = errors.New("not found")

	// ErrConfiguration marks missing required credentials or model
	// names; fatal at startup for components without a safe default.
	ErrConfiguration = errors.New("configuration error")
)
