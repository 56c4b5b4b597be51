package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore connects to the database named by DOCQA_TEST_POSTGRES_DSN.
// Tests that need a live database are skipped when it is unset.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("DOCQA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("DOCQA_TEST_POSTGRES_DSN not set")
	}

	store, err := NewStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_EmptyDSN(t *testing.T) {
	_, err := NewStore(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestUpMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_more.up.sql":      {Data: []byte("SELECT 2")},
		"001_initial.up.sql":   {Data: []byte("SELECT 1")},
		"001_initial.down.sql": {Data: []byte("SELECT 0")},
		"embed.go":             {Data: []byte("package migrations")},
	}

	names, err := upMigrations(fsys)

	require.NoError(t, err)
	assert.Equal(t, []string{"001_initial.up.sql", "002_more.up.sql"}, names)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestDocumentStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	docs := store.DocumentStore()

	owner := "owner-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &domain.Document{
		ID:              uuid.NewString(),
		OwnerID:         owner,
		Filename:        "guide.txt",
		MIMEType:        "text/plain",
		TotalTextLength: 42,
		ChunkCount:      2,
		CreatedAt:       now,
	}
	chunks := []domain.Chunk{
		{DocumentID: doc.ID, Index: 0, Text: "first", Embedding: []float32{1, 0}, CreatedAt: now},
		{DocumentID: doc.ID, Index: 1, Text: "second", Embedding: []float32{0, 1}, CreatedAt: now},
	}
	require.NoError(t, docs.Commit(ctx, doc, chunks))

	got, err := docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	gotChunks, err := docs.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, chunks, gotChunks)

	list, err := docs.ListDocuments(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = docs.Commit(ctx, doc, chunks)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = docs.GetDocument(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	owner := "owner-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &domain.Document{ID: uuid.NewString(), OwnerID: owner, Filename: "a.txt", CreatedAt: now}
	require.NoError(t, store.DocumentStore().Commit(ctx, doc, nil))

	history := store.HistoryStore()
	older := &domain.HistoryEntry{
		ID: uuid.NewString(), OwnerID: owner, DocumentID: doc.ID,
		Question: "q1", Answer: "a1", CreatedAt: now,
	}
	newer := &domain.HistoryEntry{
		ID: uuid.NewString(), OwnerID: owner, DocumentID: doc.ID,
		Question: "q2", Answer: "a2", CreatedAt: now.Add(time.Second),
		Sources: []domain.QueryResult{{ChunkIndex: 3, Text: "ctx", Score: 0.5}},
	}
	require.NoError(t, history.Append(ctx, older))
	require.NoError(t, history.Append(ctx, newer))

	entries, err := history.List(ctx, owner, doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "q2", entries[0].Question)
	assert.Equal(t, newer.Sources, entries[0].Sources)

	all, err := history.List(ctx, owner, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
