package driven

// Chunker splits document text into overlapping windows.
// The same text always yields the same sequence.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk returns the trimmed, non-empty windows of text in order.
	Chunk(text string) []string
}
