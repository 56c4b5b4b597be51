package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// session holds the owner an MCP session acts for.
type session struct {
	ports   *Ports
	ownerID string
}

// errUnavailable is returned by tools whose service was not wired.
var errUnavailable = errors.New("tool is not available in this deployment")

// AskInput is the input schema for the ask tool.
type AskInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the document to ask about"`
	Question   string `json:"question" jsonschema:"the question to answer from the document"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"number of chunks to use as context (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one chunk an answer was grounded in.
type SourceOutput struct {
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// IngestInput is the input schema for the ingest_text tool.
type IngestInput struct {
	Filename string `json:"filename" jsonschema:"name to store the document under"`
	Text     string `json:"text" jsonschema:"the full document text"`
}

// IngestOutput is the output schema for the ingest_text tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

// ListDocumentsInput is the (empty) input schema for list_documents.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for list_documents.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises a document.
type DocumentOutput struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	MIMEType   string `json:"mime_type,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

// ListHistoryInput is the input schema for list_history.
type ListHistoryInput struct {
	DocumentID string `json:"document_id,omitempty" jsonschema:"only return questions asked about this document"`
}

// ListHistoryOutput is the output schema for list_history.
type ListHistoryOutput struct {
	Entries []HistoryOutput `json:"entries"`
	Count   int             `json:"count"`
}

// HistoryOutput is one answered question.
type HistoryOutput struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	Sources    []SourceOutput `json:"sources"`
	CreatedAt  string         `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *session) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the content of one uploaded document",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "ingest_text",
			Description: "Upload plain text as a new document so it can be asked about",
		}, s.handleIngest)
	}

	if s.ports.Document != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List uploaded documents, newest first",
		}, s.handleListDocuments)
	}

	if s.ports.History != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "list_history",
			Description: "List previously answered questions, newest first",
		}, s.handleListHistory)
	}
}

func (s *session) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Ask.Ask(ctx, s.ownerID, input.DocumentID, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  result.Answer,
		Sources: toSourceOutputs(result.Sources),
	}, nil
}

func (s *session) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errUnavailable
	}

	result, err := s.ports.Ingest.Ingest(ctx, s.ownerID, input.Text, input.Filename)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{DocumentID: result.DocumentID, ChunkCount: result.ChunkCount}, nil
}

func (s *session) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, errUnavailable
	}

	docs, err := s.ports.Document.List(ctx, s.ownerID)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = toDocumentOutput(&docs[i])
	}
	return nil, output, nil
}

func (s *session) handleListHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListHistoryInput,
) (*mcp.CallToolResult, ListHistoryOutput, error) {
	if s.ports.History == nil {
		return nil, ListHistoryOutput{}, errUnavailable
	}

	entries, err := s.ports.History.List(ctx, s.ownerID, input.DocumentID)
	if err != nil {
		return nil, ListHistoryOutput{}, err
	}

	output := ListHistoryOutput{
		Entries: make([]HistoryOutput, len(entries)),
		Count:   len(entries),
	}
	for i, e := range entries {
		output.Entries[i] = HistoryOutput{
			ID:         e.ID,
			DocumentID: e.DocumentID,
			Question:   e.Question,
			Answer:     e.Answer,
			Sources:    toSourceOutputs(e.Sources),
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

func toSourceOutputs(sources []domain.QueryResult) []SourceOutput {
	out := make([]SourceOutput, len(sources))
	for i, src := range sources {
		out[i] = SourceOutput{ChunkIndex: src.ChunkIndex, Score: src.Score, Text: src.Text}
	}
	return out
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:         doc.ID,
		Filename:   doc.Filename,
		MIMEType:   doc.MIMEType,
		ChunkCount: doc.ChunkCount,
		CreatedAt:  doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
