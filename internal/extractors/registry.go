package extractors

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/extractors/docx"
	"github.com/custodia-labs/docqa/internal/extractors/html"
	"github.com/custodia-labs/docqa/internal/extractors/markdown"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
	"github.com/custodia-labs/docqa/internal/extractors/plaintext"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Extractor converts the bytes of one file format into text.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns lower-case file extensions including the dot.
	SupportedExtensions() []string

	// Extract returns the text content. Malformed input is reported as domain.ErrValidation.
	Extract(ctx context.Context, content []byte) (string, error)
}

// Ensure Registry implements the port.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry dispatches extraction to the extractor registered for a file.
type Registry struct {
	byMIME      map[string]Extractor
	byExtension map[string]Extractor
	fallback    Extractor
}

// NewRegistry creates a registry. Later extractors win when two claim the
// same MIME type or extension. fallback may be nil to reject unknown files.
func NewRegistry(fallback Extractor, extractors ...Extractor) *Registry {
	r := &Registry{
		byMIME:      make(map[string]Extractor),
		byExtension: make(map[string]Extractor),
		fallback:    fallback,
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Default returns a registry with every built-in extractor and a plain text fallback.
func Default() *Registry {
	text := plaintext.New()
	return NewRegistry(text,
		text,
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(),
	)
}

// Register adds an extractor.
func (r *Registry) Register(e Extractor) {
	for _, mt := range e.SupportedMIMETypes() {
		r.byMIME[strings.ToLower(mt)] = e
	}
	for _, ext := range e.SupportedExtensions() {
		r.byExtension[strings.ToLower(ext)] = e
	}
}

// Extract selects an extractor for the file and returns its text.
// Returns domain.ErrUnsupportedType when nothing handles the file.
func (r *Registry) Extract(ctx context.Context, content []byte, mimeType, filename string) (string, error) {
	e := r.lookup(mimeType, filename)
	if e == nil {
		if r.fallback == nil || !utf8.Valid(content) {
			return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, filename, mimeType)
		}
		e = r.fallback
	}

	logger.Debug("Extracting %s (%s) with %T", filename, mimeType, e)
	text, err := e.Extract(ctx, content)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrUnsupportedType) || ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: extract %s: %w", domain.ErrValidation, filename, err)
	}
	return text, nil
}

func (r *Registry) lookup(mimeType, filename string) Extractor {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		// Browsers send octet-stream for anything they don't recognise.
		if mediaType != "application/octet-stream" {
			if e, ok := r.byMIME[mediaType]; ok {
				return e
			}
		}
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if e, ok := r.byExtension[ext]; ok {
			return e
		}
	}
	return nil
}
