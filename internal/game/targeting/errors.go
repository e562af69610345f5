package targeting

import "errors"

var (
	// ErrWrongKind is returned when an answer does not match the kind of the pending step.
	ErrWrongKind = errors.New("answer does not match pending step kind")
	// ErrNotSuggested is returned when an answer is outside the offered choices.
	ErrNotSuggested = errors.New("target not among the offered choices")
)
