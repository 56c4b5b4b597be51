// Package plaintext decodes UTF-8 text files.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// byteOrderMark is stripped from the start of decoded text.
const byteOrderMark = "\uFEFF"

// Extractor handles plain text documents and source code.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/yaml",
		"text/toml",
		"text/x-go",
		"text/x-python",
		"text/javascript",
		"application/json",
		"application/xml",
	}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text", ".log", ".csv", ".json", ".xml", ".yaml", ".yml", ".toml", ".go", ".py", ".js"}
}

// Extract returns content as text with Windows line endings normalised.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", domain.ErrValidation)
	}
	text := strings.TrimPrefix(string(content), byteOrderMark)
	return strings.ReplaceAll(text, "\r\n", "\n"), nil
}
