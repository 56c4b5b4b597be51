// Package markdown reduces Markdown to its prose.
package markdown

import (
	"context"
	"regexp"
	"strings"
)

// Extractor handles Markdown documents. Code blocks are kept because
// answers often cite them.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Extract returns content with Markdown syntax removed.
func (e *Extractor) Extract(_ context.Context, content []byte) (string, error) {
	return stripMarkdown(string(content)), nil
}

var (
	fences        = regexp.MustCompile("(?m)^```[^\n]*\n?")
	images        = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*)([^*_\n]+)(\*\*|__|\*)`)
	inlineCode    = regexp.MustCompile("`([^`\n]+)`")
	blockquote    = regexp.MustCompile(`(?m)^>\s?`)
	rules         = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	bullets       = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	numbered      = regexp.MustCompile(`(?m)^(\s*)\d+\.\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

func stripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = fences.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = blockquote.ReplaceAllString(content, "")
	content = rules.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "$1")
	content = numbered.ReplaceAllString(content, "$1")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
