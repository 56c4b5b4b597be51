package domain

import "errors"

// Domain errors represent business logic failures.
// Every error returned by the core wraps exactly one of the first four,
// so callers classify failures with errors.Is.
var (
	// ErrValidation indicates a missing or invalid question, document ID,
	// chunk parameter or malformed record.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates the document does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrExternalService indicates an embedding, generation or storage collaborator failed.
	ErrExternalService = errors.New("external service failure")

	// ErrConfiguration indicates invalid chunk size/overlap or other settings.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnauthenticated indicates the identity token was missing or rejected.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingest nor ask can run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrUnsupportedType indicates no text extractor handles a MIME type.
	ErrUnsupportedType = errors.New("unsupported type")
)
