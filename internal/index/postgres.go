package index

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/telemetry"
	"github.com/google/uuid"
)

// VectorStore persists embedded units under an index id.
type VectorStore interface {
	InsertUnits(ctx context.Context, indexID string, units []domain.TextUnit, embeddings [][]float32) error
	SearchByEmbedding(ctx context.Context, indexID string, embedding []float32, k int) ([]domain.TextUnit, error)
	DeleteIndex(ctx context.Context, indexID string) error
}

// PostgresBuilder builds indexes stored in a pgvector table. Each build gets
// its own index id so concurrent sessions never share rows.
type PostgresBuilder struct {
	store    VectorStore
	embedder Embedder
}

func NewPostgresBuilder(store VectorStore, embedder Embedder) *PostgresBuilder {
	return &PostgresBuilder{store: store, embedder: embedder}
}

// PostgresIndex queries one index id in the vector store.
type PostgresIndex struct {
	id       string
	size     int
	store    VectorStore
	embedder Embedder
	closed   atomic.Bool
}

func (b *PostgresBuilder) Build(ctx context.Context, units []domain.TextUnit) (Index, error) {
	ctx, span := telemetry.StartSpan(ctx, "index.build", telemetry.SpanAttributes{Backend: "postgres", Operation: "build"})
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

	id := uuid.NewString()
	if err := b.store.InsertUnits(ctx, id, units, embeddings); err != nil {
		err = domain.Wrap(domain.ErrIndexBuildFailed, err)
		span.SetError(err)
		return nil, err
	}

	log.Printf("index: built postgres index %s with %d units", id, len(units))
	return &PostgresIndex{id: id, size: len(units), store: b.store, embedder: b.embedder}, nil
}

// ID returns the index id rows are stored under.
func (ix *PostgresIndex) ID() string {
	return ix.id
}

func (ix *PostgresIndex) Size() int {
	return ix.size
}

func (ix *PostgresIndex) Query(ctx context.Context, question string, k int) ([]domain.TextUnit, error) {
	if ix.closed.Load() {
		return nil, domain.ErrIndexClosed
	}
	question = strings.TrimSpace(question)
	if err := validateQuery(question, k); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "index.query", telemetry.SpanAttributes{Backend: "postgres", Operation: "query"})
	defer span.End()

	embedding, err := ix.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		err = domain.Wrap(domain.ErrRetrievalFailed, err)
		span.SetError(err)
		return nil, err
	}

	units, err := ix.store.SearchByEmbedding(ctx, ix.id, embedding, min(k, ix.size))
	if err != nil {
		err = domain.Wrap(domain.ErrRetrievalFailed, err)
		span.SetError(err)
		return nil, err
	}
	return units, nil
}

// Close deletes the index rows. It is safe to call more than once.
func (ix *PostgresIndex) Close(ctx context.Context) error {
	if ix.closed.Swap(true) {
		return nil
	}
	return ix.store.DeleteIndex(ctx, ix.id)
}
