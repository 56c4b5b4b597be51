// Package chunker provides a fixed-size, overlapping text chunker.
//
// Offsets are measured in runes so that a window never splits a
// multi-byte character.
package chunker

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Window is the half-open rune range [Start, End) of one untrimmed chunk.
type Window struct {
	Start int
	End   int
}

// Windows returns the untrimmed windows covering text.
// Windows start every size-overlap runes and the last one ends exactly at
// the end of text. Empty text yields no windows.
func Windows(text string, size, overlap int) ([]Window, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return windows(len([]rune(text)), size, overlap), nil
}

func windows(n, size, overlap int) []Window {
	if n == 0 {
		return nil
	}

	stride := size - overlap
	out := make([]Window, 0, n/stride+1)
	for start := 0; ; start += stride {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, Window{Start: start, End: end})
		if end == n {
			return out
		}
	}
}

// Split returns the trimmed, non-empty chunks of text.
// It fails with domain.ErrConfiguration unless 0 <= overlap < size.
func Split(text string, size, overlap int) ([]string, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}
	return split(text, size, overlap), nil
}

func split(text string, size, overlap int) []string {
	runes := []rune(text)
	spans := windows(len(runes), size, overlap)

	chunks := make([]string, 0, len(spans))
	for _, w := range spans {
		chunk := strings.TrimSpace(string(runes[w.Start:w.End]))
		if chunk == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func validate(size, overlap int) error {
	return domain.ChunkingSettings{Size: size, Overlap: overlap}.Validate()
}

// Processor splits document text using a fixed size and overlap.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Unlike Split, an invalid combination is reported once here instead of on
// every call.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Size returns the configured chunk size.
func (p *Processor) Size() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits text into trimmed, non-empty chunks.
func (p *Processor) Chunk(text string) []string {
	return split(text, p.chunkSize, p.overlap)
}
