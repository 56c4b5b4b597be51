package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func chunksWithEmbeddings(docID string, embeddings ...[]float32) []domain.Chunk {
	chunks := make([]domain.Chunk, len(embeddings))
	for i, e := range embeddings {
		chunks[i] = domain.Chunk{
			DocumentID: docID,
			Index:      i,
			Text:       "chunk " + string(rune('a'+i%26)),
			Embedding:  e,
		}
	}
	return chunks
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero query", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero chunk", []float32{1, 1}, []float32{0, 0}, 0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := make([]float32, 1+rng.Intn(64))
		nonZero := false
		for j := range v {
			v[j] = float32(rng.NormFloat64())
			nonZero = nonZero || v[j] != 0
		}
		if !nonZero {
			continue
		}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	}
}

func TestRank_QueryEqualToChunkEmbedding(t *testing.T) {
	e0 := []float32{1, 0, 0}
	e1 := []float32{0.2, 0.9, 0.1}
	e2 := []float32{0, 0.1, 1}
	chunks := chunksWithEmbeddings("doc-1", e0, e1, e2)

	results, err := Rank(context.Background(), e1, chunks, 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].ChunkIndex)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestRank_OrderingAndTies(t *testing.T) {
	same := []float32{1, 1}
	chunks := chunksWithEmbeddings("doc-1",
		[]float32{0, 1}, // 0.707
		same,            // 1.0
		[]float32{1, 0}, // 0.707
		same,            // 1.0
		[]float32{0, 0}, // zero norm
	)

	results, err := Rank(context.Background(), []float32{1, 1}, chunks, 10)

	require.NoError(t, err)
	indexes := make([]int, len(results))
	for i, r := range results {
		indexes[i] = r.ChunkIndex
	}
	assert.Equal(t, []int{1, 3, 0, 2, 4}, indexes)
	assert.Equal(t, 0.0, results[4].Score)
}

func TestRank_ClampsK(t *testing.T) {
	chunks := chunksWithEmbeddings("doc-1", []float32{1, 0}, []float32{0, 1}, []float32{1, 1})
	query := []float32{1, 0}

	for _, k := range []int{-3, 0, 1, 2, 3, 4, 100} {
		results, err := Rank(context.Background(), query, chunks, k)
		require.NoError(t, err)
		assert.Len(t, results, max(0, min(k, len(chunks))), "k=%d", k)
	}
}

func TestRank_EmptyChunkSet(t *testing.T) {
	results, err := Rank(context.Background(), []float32{1, 2}, nil, 5)

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRank_ScoresNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	embeddings := make([][]float32, 200)
	for i := range embeddings {
		embeddings[i] = []float32{float32(rng.Intn(3)), float32(rng.Intn(3)), float32(rng.Intn(3))}
	}
	chunks := chunksWithEmbeddings("doc-1", embeddings...)

	results, err := Rank(context.Background(), []float32{1, 2, 0}, chunks, 200)

	require.NoError(t, err)
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		assert.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			assert.Less(t, prev.ChunkIndex, cur.ChunkIndex)
		}
	}
}

func TestRank_ParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	embeddings := make([][]float32, 1000)
	for i := range embeddings {
		embeddings[i] = []float32{float32(rng.Intn(4)), float32(rng.Intn(4)), float32(rng.Intn(4)), 1}
	}
	chunks := chunksWithEmbeddings("doc-1", embeddings...)
	query := []float32{3, 1, 2, 1}

	sequential, err := Rank(context.Background(), query, chunks, 50)
	require.NoError(t, err)

	threshold, shard := parallelScoreThreshold, scoreShardSize
	parallelScoreThreshold, scoreShardSize = 10, 37
	defer func() { parallelScoreThreshold, scoreShardSize = threshold, shard }()

	parallel, err := Rank(context.Background(), query, chunks, 50)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestRank_ParallelHonoursCancellation(t *testing.T) {
	threshold := parallelScoreThreshold
	parallelScoreThreshold = 1
	defer func() { parallelScoreThreshold = threshold }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks := chunksWithEmbeddings("doc-1", []float32{1}, []float32{2})
	_, err := Rank(ctx, []float32{1}, chunks, 1)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetriever_Retrieve(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx := context.Background()
	now := time.Now()

	chunks := chunksWithEmbeddings("doc-1", []float32{1, 0}, []float32{0, 1}, []float32{1, 1})
	for i := range chunks {
		chunks[i].CreatedAt = now
	}
	doc := &domain.Document{ID: "doc-1", OwnerID: "alice", Filename: "a.txt", ChunkCount: 3, CreatedAt: now}
	require.NoError(t, store.Commit(ctx, doc, chunks))

	results, err := NewRetriever(store).Retrieve(ctx, "doc-1", []float32{0, 1}, 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].ChunkIndex)
	assert.Equal(t, 2, results[1].ChunkIndex)
	assert.Equal(t, chunks[1].Text, results[0].Text)
}

func TestRetriever_UnknownDocumentYieldsEmpty(t *testing.T) {
	results, err := NewRetriever(memory.NewDocumentStore()).Retrieve(context.Background(), "nope", []float32{1}, 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}
