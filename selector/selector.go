// Package selector chooses the few-shot example most semantically similar
// to a user input, using embeddings computed by an external service.
package selector

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// Embedder produces a fixed-length numeric vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Scored pairs an example with its similarity to the query.
type Scored struct {
	Example types.Example
	Score   float64
}

// Semantic ranks a fixed in-memory example set by cosine similarity.
// Example embeddings are computed once at construction and held for the
// lifetime of the selector; Select only embeds the query. For a fixed
// example set and embedding model version, selection is deterministic.
type Semantic struct {
	embedder Embedder
	examples []types.Example
	vectors  [][]float64
	k        int
	logger   utils.Logger
}

// NewSemantic embeds every example up front. An embedding failure here is
// returned as-is; the selector cannot be used without its vectors.
func NewSemantic(ctx context.Context, embedder Embedder, examples []types.Example, k int, logger utils.Logger) (*Semantic, error) {
	if k < 1 {
		k = 1
	}

	vectors := make([][]float64, len(examples))
	for i, example := range examples {
		vector, err := embedder.Embed(ctx, example.Input)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}

	logger.Debug("Example set embedded", "examples", len(examples), "k", k)

	return &Semantic{
		embedder: embedder,
		examples: examples,
		vectors:  vectors,
		k:        k,
		logger:   logger,
	}, nil
}

// Select embeds the query and returns the top-k examples by cosine
// similarity, best first. Embedding failures propagate unmodified.
func (s *Semantic) Select(ctx context.Context, query string) ([]Scored, error) {
	if len(s.examples) == 0 {
		return nil, nil
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored := make([]Scored, len(s.examples))
	for i, example := range s.examples {
		scored[i] = Scored{
			Example: example,
			Score:   Cosine(queryVector, s.vectors[i]),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	k := s.k
	if k > len(scored) {
		k = len(scored)
	}
	top := scored[:k]

	s.logger.Debug("Example selected", "query_len", len(query), "best_score", top[0].Score)
	return top, nil
}

// SelectOne returns the single nearest example, or nil for an empty set.
func (s *Semantic) SelectOne(ctx context.Context, query string) (*types.Example, error) {
	scored, err := s.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return nil, nil
	}
	return &scored[0].Example, nil
}

// Cosine computes cosine similarity between two vectors of equal length.
// Mismatched or zero-length vectors score zero.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func (s *Scored) String() string {
	return fmt.Sprintf("%.4f %q", s.Score, s.Example.Input)
}
