package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// describeError adds a hint for failures the user can fix.
// The original error stays in the chain for errors.Is.
func describeError(err error) error {
	var hint string
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		hint = "pass a valid token with --token or DOCQA_TOKEN"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		hint = "configure an embedding provider with 'docqa settings embedding'"
	case errors.Is(err, domain.ErrLLMUnavailable):
		hint = "configure an LLM provider with 'docqa settings llm'"
	case errors.Is(err, domain.ErrUnsupportedType):
		hint = "supported formats are pdf, docx, html, markdown and plain text"
	case errors.Is(err, domain.ErrNotFound):
		hint = "run 'docqa docs list' to see your documents"
	case errors.Is(err, context.DeadlineExceeded):
		hint = "increase --timeout"
	case errors.Is(err, domain.ErrConfiguration):
		hint = "run 'docqa settings check'"
	default:
		return err
	}
	return fmt.Errorf("%w\nhint: %s", err, hint)
}
