// Package index builds frozen semantic indexes over TextUnits.
package index

import (
	"context"
	"fmt"
	"math"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
)

// Index answers nearest-neighbour queries over a fixed set of units. A built
// index has no insert or delete operations.
type Index interface {
	// Query returns up to k units, best match first. Equal scores are
	// ordered by build position, so repeated queries return the same order.
	Query(ctx context.Context, question string, k int) ([]domain.TextUnit, error)
	Size() int
	Close(ctx context.Context) error
}

// Builder embeds units and returns a frozen Index.
type Builder interface {
	Build(ctx context.Context, units []domain.TextUnit) (Index, error)
}

// Embedder produces vectors with one fixed model.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Shared wraps an index owned elsewhere; closing the wrapper is a no-op.
func Shared(idx Index) Index {
	return sharedIndex{idx}
}

type sharedIndex struct {
	Index
}

func (sharedIndex) Close(context.Context) error { return nil }

func validateUnits(units []domain.TextUnit) error {
	if len(units) == 0 {
		return domain.ErrEmptyCorpus
	}
	seen := make(map[string]bool, len(units))
	for _, u := range units {
		if u.ID == "" || u.Text == "" {
			return domain.Wrap(domain.ErrIndexBuildFailed, fmt.Errorf("unit at position %d has no id or text", u.Position))
		}
		if seen[u.ID] {
			return domain.Wrap(domain.ErrIndexBuildFailed, fmt.Errorf("duplicate unit id %q", u.ID))
		}
		seen[u.ID] = true
	}
	return nil
}

func validateQuery(question string, k int) error {
	if question == "" {
		return domain.ErrEmptyQuestion
	}
	if k < 1 {
		return domain.ErrInvalidTopK
	}
	return nil
}

func embedUnits(ctx context.Context, e Embedder, units []domain.TextUnit) ([][]float32, error) {
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	embeddings, err := e.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, domain.Wrap(domain.ErrIndexBuildFailed, err)
	}
	if len(embeddings) != len(units) {
		return nil, domain.Wrap(domain.ErrIndexBuildFailed, fmt.Errorf("expected %d embeddings, got %d", len(units), len(embeddings)))
	}
	return embeddings, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
