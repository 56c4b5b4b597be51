package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockIngest records the last call.
type mockIngest struct {
	ownerID, text, filename, mimeType string
	content                           []byte
	file                              bool
	err                               error
}

func (m *mockIngest) Ingest(_ context.Context, ownerID, text, filename string) (*domain.IngestResult, error) {
	m.ownerID, m.text, m.filename = ownerID, text, filename
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{DocumentID: "doc-new", ChunkCount: 2}, nil
}

func (m *mockIngest) IngestFile(_ context.Context, ownerID string, content []byte, filename, mimeType string) (*domain.IngestResult, error) {
	m.ownerID, m.content, m.filename, m.mimeType, m.file = ownerID, content, filename, mimeType, true
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{DocumentID: "doc-file", ChunkCount: 5}, nil
}

// mockAsk records the last call.
type mockAsk struct {
	ownerID, documentID, question string
	topK                          int
	err                           error
}

func (m *mockAsk) Ask(_ context.Context, ownerID, documentID, question string, topK int) (*domain.AskResult, error) {
	m.ownerID, m.documentID, m.question, m.topK = ownerID, documentID, question, topK
	if m.err != nil {
		return nil, m.err
	}
	return &domain.AskResult{
		Answer: "The warranty lasts two years.",
		Sources: []domain.QueryResult{
			{ChunkIndex: 4, Text: "Warranty: two years from purchase.", Score: 0.934},
		},
	}, nil
}

type mockDocuments struct {
	docs []domain.Document
}

func (m *mockDocuments) List(_ context.Context, ownerID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range m.docs {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocuments) Get(_ context.Context, ownerID, documentID string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == documentID && m.docs[i].OwnerID == ownerID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockHistory struct {
	entries    []domain.HistoryEntry
	documentID string
}

func (m *mockHistory) List(_ context.Context, _, documentID string) ([]domain.HistoryEntry, error) {
	m.documentID = documentID
	return m.entries, nil
}

// tokenAuth maps tokens to users.
type tokenAuth map[string]string

func (a tokenAuth) Authenticate(_ context.Context, token string) (string, error) {
	if user, ok := a[token]; ok {
		return user, nil
	}
	return "", domain.ErrUnauthenticated
}

type mockTokens struct{}

func (mockTokens) IssueToken(userID string, ttl time.Duration) (string, error) {
	return "signed." + userID + "." + ttl.String(), nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest  *mockIngest
	ask     *mockAsk
	history *mockHistory
}

// setupTestServices installs mock services. The token "alice-token" authenticates as alice.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	created := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	ts := &testServices{
		ingest: &mockIngest{},
		ask:    &mockAsk{},
		history: &mockHistory{entries: []domain.HistoryEntry{{
			ID: "h-1", OwnerID: "alice", DocumentID: "doc-1",
			Question: "How long is the warranty?", Answer: "Two years.",
			Sources:   []domain.QueryResult{{ChunkIndex: 4, Score: 0.9}},
			CreatedAt: created,
		}}},
	}

	services = &Services{
		Ingest: ts.ingest,
		Ask:    ts.ask,
		Document: &mockDocuments{docs: []domain.Document{
			{ID: "doc-1", OwnerID: "alice", Filename: "warranty.pdf", MIMEType: "application/pdf",
				ObjectRef: "2025/02/x-warranty.pdf", TotalTextLength: 1800, ChunkCount: 3, CreatedAt: created},
			{ID: "doc-2", OwnerID: "bob", Filename: "secret.txt", ChunkCount: 1, CreatedAt: created},
		}},
		History: ts.history,
		Auth:    tokenAuth{"alice-token": "alice"},
		Tokens:  mockTokens{},
	}
	t.Cleanup(func() { services = nil })
	return ts
}

// execute runs the root command with fresh flag values and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables that persist between Execute calls.
func resetFlags() {
	verbose, authToken, timeout = false, "", 2*time.Minute
	ingestMIME, ingestName, ingestText, ingestJSON = "", "", false, false
	askTopK, askJSON, askSources = 0, false, false
	docsJSON = false
	historyDoc, historyJSON = "", false
	tokenTTL = 24 * time.Hour
	chunkSize, chunkOverlap = 1000, 200
	versionShort = false
}
