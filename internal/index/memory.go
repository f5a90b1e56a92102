package index

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/telemetry"
	"github.com/philippgille/chromem-go"
)

const collectionName = "text_units"

// MemoryBuilder builds in-process indexes on a chromem-go collection.
type MemoryBuilder struct {
	embedder Embedder
}

func NewMemoryBuilder(embedder Embedder) *MemoryBuilder {
	return &MemoryBuilder{embedder: embedder}
}

// MemoryIndex is a frozen chromem-go collection plus the source units.
type MemoryIndex struct {
	collection *chromem.Collection
	units      map[string]domain.TextUnit
	order      map[string]int
	closed     atomic.Bool
}

func (b *MemoryBuilder) Build(ctx context.Context, units []domain.TextUnit) (Index, error) {
	ctx, span := telemetry.StartSpan(ctx, "index.build", telemetry.SpanAttributes{Backend: "memory", Operation: "build"})
	defer span.End()

	if err := validateUnits(units); err != nil {
		span.SetError(err)
		return nil, err
	}

	embeddings, err := embedUnits(ctx, b.embedder, units)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, b.embedQuery)
	if err != nil {
		return nil, domain.Wrap(domain.ErrIndexBuildFailed, err)
	}

	idx := &MemoryIndex{
		collection: collection,
		units:      make(map[string]domain.TextUnit, len(units)),
		order:      make(map[string]int, len(units)),
	}
	docs := make([]chromem.Document, len(units))
	for i, u := range units {
		idx.units[u.ID] = u
		idx.order[u.ID] = i
		docs[i] = chromem.Document{
			ID:        u.ID,
			Content:   u.Text,
			Embedding: normalize(embeddings[i]),
			Metadata: map[string]string{
				"kind":    string(u.Kind),
				"subject": u.Subject,
			},
		}
	}

	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		err = domain.Wrap(domain.ErrIndexBuildFailed, fmt.Errorf("failed to add documents: %w", err))
		span.SetError(err)
		return nil, err
	}

	log.Printf("index: built in-memory index with %d units", len(units))
	return idx, nil
}

func (b *MemoryBuilder) embedQuery(ctx context.Context, text string) ([]float32, error) {
	v, err := b.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	return normalize(v), nil
}

func (ix *MemoryIndex) Size() int {
	return len(ix.units)
}

func (ix *MemoryIndex) Query(ctx context.Context, question string, k int) ([]domain.TextUnit, error) {
	if ix.closed.Load() {
		return nil, domain.ErrIndexClosed
	}
	question = strings.TrimSpace(question)
	if err := validateQuery(question, k); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "index.query", telemetry.SpanAttributes{Backend: "memory", Operation: "query"})
	defer span.End()

	// Rank the whole collection so ties at the cut-off are resolved by build
	// order rather than by chromem's concurrent scan.
	results, err := ix.collection.Query(ctx, question, ix.collection.Count(), nil, nil)
	if err != nil {
		err = domain.Wrap(domain.ErrRetrievalFailed, err)
		span.SetError(err)
		return nil, err
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Similarity != results[b].Similarity {
			return results[a].Similarity > results[b].Similarity
		}
		return ix.order[results[a].ID] < ix.order[results[b].ID]
	})

	k = min(k, len(results))
	out := make([]domain.TextUnit, k)
	for i := 0; i < k; i++ {
		out[i] = ix.units[results[i].ID]
	}
	return out, nil
}

// Close releases the collection. Later queries fail with ErrIndexClosed.
func (ix *MemoryIndex) Close(context.Context) error {
	ix.closed.Store(true)
	return nil
}
