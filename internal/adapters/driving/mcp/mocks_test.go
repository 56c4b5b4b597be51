package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockAskService records the last call and returns a fixed result.
type mockAskService struct {
	result *domain.AskResult
	err    error

	ownerID, documentID, question string
	topK                          int
}

func (m *mockAskService) Ask(_ context.Context, ownerID, documentID, question string, topK int) (*domain.AskResult, error) {
	m.ownerID, m.documentID, m.question, m.topK = ownerID, documentID, question, topK
	return m.result, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result  *domain.IngestResult
	err     error
	ownerID string
}

func (m *mockIngestService) Ingest(_ context.Context, ownerID, _, _ string) (*domain.IngestResult, error) {
	m.ownerID = ownerID
	return m.result, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, ownerID string, _ []byte, _, _ string) (*domain.IngestResult, error) {
	m.ownerID = ownerID
	return m.result, m.err
}

// mockDocumentService serves documents for a single owner.
type mockDocumentService struct {
	owner     string
	documents []domain.Document
	err       error
}

func (m *mockDocumentService) List(_ context.Context, ownerID string) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if ownerID != m.owner {
		return nil, nil
	}
	return m.documents, nil
}

func (m *mockDocumentService) Get(_ context.Context, ownerID, documentID string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == documentID && ownerID == m.owner {
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	entries    []domain.HistoryEntry
	err        error
	documentID string
}

func (m *mockHistoryService) List(_ context.Context, _, documentID string) ([]domain.HistoryEntry, error) {
	m.documentID = documentID
	return m.entries, m.err
}

// mockAuth accepts one token.
type mockAuth struct {
	token, ownerID string
}

func (m *mockAuth) Authenticate(_ context.Context, token string) (string, error) {
	if token != m.token {
		return "", domain.ErrUnauthenticated
	}
	return m.ownerID, nil
}

// mockTokenAuth maps tokens to owners.
type mockTokenAuth map[string]string

func (m mockTokenAuth) Authenticate(_ context.Context, token string) (string, error) {
	owner, ok := m[token]
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return owner, nil
}
