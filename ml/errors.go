package ml

import "errors"

var (
	// ErrArtifactLoad marks a missing or malformed model/scaler artifact.
	// Surfaced at startup, never deferred to the first request.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrSchema marks input that does not match the active feature schema:
	// missing fields or columns, non-finite or non-numeric values.
	ErrSchema = errors.New("schema mismatch")

	// ErrInference marks a shape or evaluation failure inside the classifier.
	ErrInference = errors.New("inference failed")

	// ErrExplanation marks an attribution computation failure.
	ErrExplanation = errors.New("explanation failed")
)
