package domain

import "errors"

var (
	// ErrInvalidInput marks malformed caller input: ragged or empty
	// matrices, mismatched target lengths, unknown score kinds, or a
	// non-positive repeat count. Detected before any model call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModel marks a failure of the supplied predict capability, either
	// a returned error or a prediction vector of the wrong length. The
	// whole computation aborts; no partial results are returned.
	ErrModel = errors.New("model error")
)
