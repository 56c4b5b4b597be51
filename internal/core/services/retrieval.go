package services

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Chunk sets at least this large are scored in parallel shards.
var (
	parallelScoreThreshold = 4096
	scoreShardSize         = 1024
)

// CosineSimilarity returns dot(a,b)/(|a|*|b|).
// It is 0 when either vector has zero norm or the dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) {
		return 0
	}
	return score
}

// Rank scores every chunk against query and returns the k best, ordered by
// score descending with ties broken by ascending chunk index. k is clamped
// to [0, len(chunks)]. The result depends only on the arguments.
func Rank(ctx context.Context, query []float32, chunks []domain.Chunk, k int) ([]domain.QueryResult, error) {
	k = max(0, min(k, len(chunks)))
	if k == 0 {
		return []domain.QueryResult{}, nil
	}

	scored := make([]domain.QueryResult, len(chunks))
	if len(chunks) < parallelScoreThreshold {
		scoreRange(query, chunks, scored, 0, len(chunks))
	} else if err := scoreParallel(ctx, query, chunks, scored); err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ChunkIndex < scored[j].ChunkIndex
	})

	return scored[:k], nil
}

func scoreRange(query []float32, chunks []domain.Chunk, out []domain.QueryResult, from, to int) {
	for i := from; i < to; i++ {
		out[i] = domain.QueryResult{
			ChunkIndex: chunks[i].Index,
			Text:       chunks[i].Text,
			Score:      CosineSimilarity(query, chunks[i].Embedding),
		}
	}
}

// scoreParallel fills out using one goroutine per shard. Each shard writes a
// disjoint range, so no locking is needed.
func scoreParallel(ctx context.Context, query []float32, chunks []domain.Chunk, out []domain.QueryResult) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for from := 0; from < len(chunks); from += scoreShardSize {
		to := min(from+scoreShardSize, len(chunks))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scoreRange(query, chunks, out, from, to)
			return nil
		})
	}

	return g.Wait()
}

// Retriever ranks a document's chunks against a query vector.
type Retriever struct {
	docStore driven.DocumentStore
}

// NewRetriever creates a retriever reading chunks from docStore.
func NewRetriever(docStore driven.DocumentStore) *Retriever {
	return &Retriever{docStore: docStore}
}

// Retrieve returns the top k chunks of the document for the query vector.
// A document with no chunks yields an empty result.
func (r *Retriever) Retrieve(
	ctx context.Context, documentID string, query []float32, k int,
) ([]domain.QueryResult, error) {
	chunks, err := r.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, storageError("load chunks", err)
	}
	logger.Debug("Scoring %d chunks (k=%d)", len(chunks), k)

	results, err := Rank(ctx, query, chunks, k)
	if err != nil {
		return nil, fmt.Errorf("rank chunks: %w", err)
	}

	for i, res := range results {
		logger.Debug("  #%d chunk %d score %.4f", i+1, res.ChunkIndex, res.Score)
	}
	return results, nil
}
