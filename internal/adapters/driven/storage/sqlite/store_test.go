package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// testDocument builds a document with n chunks of dimension 3.
func testDocument(id, owner string, createdAt time.Time, n int) (*domain.Document, []domain.Chunk) {
	doc := &domain.Document{
		ID:              id,
		OwnerID:         owner,
		Filename:        id + ".txt",
		MIMEType:        "text/plain",
		TotalTextLength: n * 10,
		ChunkCount:      n,
		CreatedAt:       createdAt,
	}
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			DocumentID: id,
			Index:      i,
			Text:       fmt.Sprintf("chunk %d of %s", i, id),
			Embedding:  []float32{float32(i), 0.5, -1.25},
			CreatedAt:  createdAt,
		}
	}
	return doc, chunks
}

func commitDocument(t *testing.T, store *Store, id, owner string, createdAt time.Time, n int) {
	t.Helper()
	doc, chunks := testDocument(id, owner, createdAt, n)
	require.NoError(t, store.DocumentStore().Commit(context.Background(), doc, chunks))
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "docqa.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.PingContext(context.Background()))
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dataDir)
	require.NoError(t, err)
	defer store.Close()

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	err := store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"documents", "chunks", "history"} {
		var exists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "table %s should exist", table)
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

	first, err := NewStore(dir)
	require.NoError(t, err)
	commitDocument(t, first, "doc-1", "alice", now, 2)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied, "migrations must not be re-applied")

	doc, err := second.DocumentStore().GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.ChunkCount)
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store := setupTestStore(t)

	var fkEnabled int
	err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1, fkEnabled, "foreign keys should be enabled")
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

// ==================== DocumentStore Tests ====================

func TestDocumentStore_CommitAndGet(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()
	now := time.Date(2024, 4, 1, 8, 30, 15, 123456789, time.UTC)

	doc, chunks := testDocument("doc-1", "alice", now, 3)
	doc.ObjectRef = "objects/doc-1.txt"
	require.NoError(t, docs.Commit(ctx, doc, chunks))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, "doc-1.txt", got.Filename)
	assert.Equal(t, "text/plain", got.MIMEType)
	assert.Equal(t, "objects/doc-1.txt", got.ObjectRef)
	assert.Equal(t, 30, got.TotalTextLength)
	assert.Equal(t, 3, got.ChunkCount)
	assert.True(t, now.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, now)

	gotChunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, gotChunks, 3)
	for i, c := range gotChunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, chunks[i].Text, c.Text)
		assert.Equal(t, chunks[i].Embedding, c.Embedding)
	}
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DocumentStore().GetDocument(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetChunks_Unknown(t *testing.T) {
	store := setupTestStore(t)

	chunks, err := store.DocumentStore().GetChunks(context.Background(), "missing")

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_Commit_ZeroChunks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	commitDocument(t, store, "empty", "alice", time.Now().UTC(), 0)

	doc, err := store.DocumentStore().GetDocument(ctx, "empty")
	require.NoError(t, err)
	assert.Zero(t, doc.ChunkCount)
}

func TestDocumentStore_Commit_Invalid(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		mutate func(*domain.Document, []domain.Chunk) []domain.Chunk
	}{
		{"missing owner", func(d *domain.Document, c []domain.Chunk) []domain.Chunk {
			d.OwnerID = ""
			return c
		}},
		{"chunk count mismatch", func(d *domain.Document, c []domain.Chunk) []domain.Chunk {
			return c[:1]
		}},
		{"index gap", func(d *domain.Document, c []domain.Chunk) []domain.Chunk {
			c[1].Index = 5
			return c
		}},
		{"missing embedding", func(d *domain.Document, c []domain.Chunk) []domain.Chunk {
			c[0].Embedding = nil
			return c
		}},
		{"mixed dimensions", func(d *domain.Document, c []domain.Chunk) []domain.Chunk {
			c[1].Embedding = []float32{1}
			return c
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			doc, chunks := testDocument("doc-1", "alice", now, 2)
			chunks = tt.mutate(doc, chunks)

			err := store.DocumentStore().Commit(context.Background(), doc, chunks)

			assert.ErrorIs(t, err, domain.ErrValidation)
			_, getErr := store.DocumentStore().GetDocument(context.Background(), "doc-1")
			assert.ErrorIs(t, getErr, domain.ErrNotFound)
		})
	}
}

func TestDocumentStore_Commit_DuplicateRejected(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	commitDocument(t, store, "doc-1", "alice", now, 2)

	doc, chunks := testDocument("doc-1", "bob", now, 1)
	err := store.DocumentStore().Commit(ctx, doc, chunks)

	assert.ErrorIs(t, err, domain.ErrValidation)
	got, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID)
}

func TestDocumentStore_Commit_Atomic(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// A cancelled context fails the transaction before anything is visible.
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	doc, chunks := testDocument("doc-1", "alice", time.Now().UTC(), 3)
	err := store.DocumentStore().Commit(cancelled, doc, chunks)
	require.Error(t, err)

	_, err = store.DocumentStore().GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chunksAfter, err := store.DocumentStore().GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunksAfter)
}

func TestDocumentStore_ListDocuments(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	commitDocument(t, store, "a", "alice", base, 1)
	commitDocument(t, store, "b", "bob", base.Add(time.Hour), 1)
	commitDocument(t, store, "c", "alice", base.Add(2*time.Hour), 1)
	commitDocument(t, store, "d", "alice", base.Add(2*time.Hour), 1)

	docs, err := store.DocumentStore().ListDocuments(context.Background(), "alice")
	require.NoError(t, err)

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"d", "c", "a"}, ids)

	none, err := store.DocumentStore().ListDocuments(context.Background(), "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// ==================== HistoryStore Tests ====================

func TestHistoryStore_AppendAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	commitDocument(t, store, "doc-1", "alice", base, 1)
	commitDocument(t, store, "doc-2", "alice", base, 1)

	history := store.HistoryStore()
	entries := []domain.HistoryEntry{
		{ID: "h1", OwnerID: "alice", DocumentID: "doc-1", Question: "q1", Answer: "a1", CreatedAt: base},
		{ID: "h2", OwnerID: "alice", DocumentID: "doc-2", Question: "q2", Answer: "a2", CreatedAt: base.Add(time.Minute)},
		{
			ID: "h3", OwnerID: "alice", DocumentID: "doc-1", Question: "q3", Answer: "a3",
			Sources:   []domain.QueryResult{{ChunkIndex: 0, Text: "chunk 0 of doc-1", Score: 0.75}},
			CreatedAt: base.Add(2 * time.Minute),
		},
		{ID: "h4", OwnerID: "bob", DocumentID: "doc-1", Question: "q4", Answer: "a4", CreatedAt: base},
	}
	for i := range entries {
		require.NoError(t, history.Append(ctx, &entries[i]))
	}

	forDoc, err := history.List(ctx, "alice", "doc-1")
	require.NoError(t, err)
	require.Len(t, forDoc, 2)
	assert.Equal(t, "h3", forDoc[0].ID)
	assert.Equal(t, "h1", forDoc[1].ID)
	assert.Equal(t, entries[2].Sources, forDoc[0].Sources)
	assert.Empty(t, forDoc[1].Sources)

	all, err := history.List(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"h3", "h2", "h1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	bobs, err := history.List(ctx, "bob", "")
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "q4", bobs[0].Question)
}

func TestHistoryStore_Append_Invalid(t *testing.T) {
	store := setupTestStore(t)

	err := store.HistoryStore().Append(context.Background(), &domain.HistoryEntry{
		ID: "h1", OwnerID: "alice", DocumentID: "doc-1", Question: "q", CreatedAt: time.Now(),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestHistoryStore_Append_UnknownDocument(t *testing.T) {
	store := setupTestStore(t)

	err := store.HistoryStore().Append(context.Background(), &domain.HistoryEntry{
		ID: "h1", OwnerID: "alice", DocumentID: "ghost", Question: "q", Answer: "a", CreatedAt: time.Now(),
	})

	assert.Error(t, err)
}

// ==================== Helper Function Tests ====================

func TestFloat32Conversion(t *testing.T) {
	tests := []struct {
		name   string
		floats []float32
	}{
		{"empty", nil},
		{"single", []float32{1.5}},
		{"mixed", []float32{-0.25, 0, 3.4028235e38, 1e-7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.floats, bytesToFloat32Slice(float32SliceToBytes(tt.floats)))
		})
	}
}
