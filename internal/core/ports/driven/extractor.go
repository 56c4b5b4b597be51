package driven

import "context"

// TextExtractor converts an uploaded file into plain text.
type TextExtractor interface {
	// Extract returns the text content of a file.
	// Returns domain.ErrUnsupportedType when no extractor handles the file.
	Extract(ctx context.Context, content []byte, mimeType, filename string) (string, error)
}
