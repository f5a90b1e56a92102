package service

import (
	"context"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/index"
)

// IndexSource hands out the index a session answers from.
type IndexSource interface {
	Acquire(ctx context.Context) (index.Index, error)
}

// BuildPerSession builds a fresh index from the corpus for every caller.
type BuildPerSession struct {
	Builder index.Builder
	Units   []domain.TextUnit
}

func (b *BuildPerSession) Acquire(ctx context.Context) (index.Index, error) {
	return b.Builder.Build(ctx, b.Units)
}

// SharedIndexSource hands every caller the same prebuilt index. Callers may
// close what they receive without affecting the others.
type SharedIndexSource struct {
	idx index.Index
}

func NewSharedIndexSource(idx index.Index) *SharedIndexSource {
	return &SharedIndexSource{idx: idx}
}

func (s *SharedIndexSource) Acquire(context.Context) (index.Index, error) {
	return index.Shared(s.idx), nil
}
