package domain

import "time"

// DocumentState tracks a document through ingestion.
// Only Queryable documents are ever visible outside the ingest pipeline.
type DocumentState string

// Document lifecycle states.
const (
	// StateUploading covers extraction, chunking and embedding.
	StateUploading DocumentState = "uploading"

	// StateIndexed means the document and all of its chunks are durably stored.
	StateIndexed DocumentState = "indexed"

	// StateQueryable means retrieval against the document is permitted.
	StateQueryable DocumentState = "queryable"
)

// Document is an uploaded document. It is created once per upload
// and never modified afterwards.
type Document struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`

	// OwnerID is the user who uploaded the document.
	OwnerID string `json:"owner_id"`

	// Filename is the name supplied at upload time.
	Filename string `json:"filename"`

	// MIMEType is the declared content type of the original upload.
	MIMEType string `json:"mime_type,omitempty"`

	// ObjectRef locates the original bytes in the object store.
	// Empty when the document was ingested from raw text.
	ObjectRef string `json:"object_ref,omitempty"`

	// TotalTextLength is the extracted text length in characters.
	TotalTextLength int `json:"total_text_length"`

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int `json:"chunk_count"`

	// CreatedAt is when the document became queryable.
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is one overlapping window of a document's text.
// Indexes are zero-based, contiguous and follow text order.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string `json:"document_id"`

	// Index is the ordinal position within the document.
	Index int `json:"index"`

	// Text is the trimmed window content.
	Text string `json:"text"`

	// Embedding is the vector representation of Text.
	Embedding []float32 `json:"-"`

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time `json:"created_at"`
}
