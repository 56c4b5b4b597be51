// Package postgres provides a PostgreSQL implementation of the document and
// history stores for multi-user deployments.
//
// Embeddings are stored as REAL[] columns; ranking happens in the service
// layer, so no vector extension is required.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Store is a PostgreSQL-backed storage that provides the document and
// history stores through wrapper types.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to dsn and applies pending migrations.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrConfiguration)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{pool: s.pool}
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{pool: s.pool}
}

func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	names, err := upMigrations(fsys)
	if err != nil {
		return err
	}

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(script)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version)
			return err
		})
		if err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// upMigrations lists the *.up.sql files in fsys in version order.
func upMigrations(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// documentStore implements driven.DocumentStore.
type documentStore struct {
	pool *pgxpool.Pool
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Commit writes a document and its chunks in one transaction. Chunks are
// bulk loaded with COPY.
func (s *documentStore) Commit(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := domain.ValidateChunks(doc, chunks); err != nil {
		return err
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO documents (id, owner_id, filename, mime_type, object_ref,
				total_text_length, chunk_count, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, doc.ID, doc.OwnerID, doc.Filename, doc.MIMEType, doc.ObjectRef,
			doc.TotalTextLength, doc.ChunkCount, doc.CreatedAt.UTC())
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}

		rows := make([][]any, len(chunks))
		for i, c := range chunks {
			createdAt := c.CreatedAt
			if createdAt.IsZero() {
				createdAt = doc.CreatedAt
			}
			rows[i] = []any{doc.ID, c.Index, c.Text, c.Embedding, createdAt.UTC()}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"chunks"},
			[]string{"document_id", "chunk_index", "content", "embedding", "created_at"},
			pgx.CopyFromRows(rows))
		return err
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: document %s already exists", domain.ErrValidation, doc.ID)
	}
	if err != nil {
		return fmt.Errorf("committing document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, filename, mime_type, object_ref, total_text_length, chunk_count, created_at
		FROM documents WHERE id = $1
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// GetChunks retrieves all chunks for a document ordered by index.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT document_id, chunk_index, content, embedding, created_at
		FROM chunks WHERE document_id = $1
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}

	chunks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Chunk, error) {
		var c domain.Chunk
		err := row.Scan(&c.DocumentID, &c.Index, &c.Text, &c.Embedding, &c.CreatedAt)
		c.CreatedAt = c.CreatedAt.UTC()
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	return chunks, nil
}

// ListDocuments returns an owner's documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, filename, mime_type, object_ref, total_text_length, chunk_count, created_at
		FROM documents WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Document, error) {
		doc, err := scanDocument(row)
		if err != nil {
			return domain.Document{}, err
		}
		return *doc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning documents: %w", err)
	}
	return docs, nil
}

// historyStore implements driven.HistoryStore.
type historyStore struct {
	pool *pgxpool.Pool
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Append stores one history entry.
func (s *historyStore) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	sources := entry.Sources
	if sources == nil {
		sources = []domain.QueryResult{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO history (id, owner_id, document_id, question, answer, sources, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.OwnerID, entry.DocumentID, entry.Question, entry.Answer,
		sources, entry.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: history entry %s already exists", domain.ErrValidation, entry.ID)
	}
	if err != nil {
		return fmt.Errorf("saving history entry: %w", err)
	}
	return nil
}

// List returns the owner's entries newest first. An empty documentID matches every document.
func (s *historyStore) List(ctx context.Context, ownerID, documentID string) ([]domain.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, document_id, question, answer, sources, created_at
		FROM history
		WHERE owner_id = $1 AND ($2 = '' OR document_id = $2)
		ORDER BY created_at DESC, id DESC
	`, ownerID, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.HistoryEntry, error) {
		var e domain.HistoryEntry
		err := row.Scan(&e.ID, &e.OwnerID, &e.DocumentID, &e.Question, &e.Answer, &e.Sources, &e.CreatedAt)
		e.CreatedAt = e.CreatedAt.UTC()
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning history: %w", err)
	}
	return entries, nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.MIMEType, &doc.ObjectRef,
		&doc.TotalTextLength, &doc.ChunkCount, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.CreatedAt = doc.CreatedAt.UTC()
	return &doc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
