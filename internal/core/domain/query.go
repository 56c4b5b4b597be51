package domain

import "time"

// DefaultTopK is the number of chunks used as context when the caller
// does not specify one.
const DefaultTopK = 5

// QueryResult is a chunk scored against a question.
type QueryResult struct {
	// ChunkIndex is the Chunk.Index of the matched chunk.
	ChunkIndex int `json:"chunk_index"`

	// Text is the chunk content.
	Text string `json:"text"`

	// Score is the cosine similarity in [-1, 1].
	Score float64 `json:"score"`
}

// AskResult is the answer to a question together with the chunks it was grounded in.
type AskResult struct {
	Answer  string        `json:"answer"`
	Sources []QueryResult `json:"sources"`
}

// IngestResult identifies a newly queryable document.
type IngestResult struct {
	DocumentID string `json:"doc_id"`
	ChunkCount int    `json:"chunk_count"`
}

// HistoryEntry records one answered question. Entries are append-only.
type HistoryEntry struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`

	// OwnerID is the user who asked.
	OwnerID string `json:"owner_id"`

	// DocumentID is the document the question was asked against.
	DocumentID string `json:"doc_id"`

	// Question is the question as asked.
	Question string `json:"question"`

	// Answer is the generated answer.
	Answer string `json:"answer"`

	// Sources are the ranked chunks used as context, in retrieval order.
	Sources []QueryResult `json:"sources"`

	// CreatedAt is when the answer was recorded.
	CreatedAt time.Time `json:"created_at"`
}
