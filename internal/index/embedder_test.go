package index

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"unicode"
)

const fakeDims = 256

// bigramEmbedder hashes character bigrams into a fixed-size vector, so texts
// sharing words land close together without calling a model.
type bigramEmbedder struct {
	mu       sync.Mutex
	calls    int
	failWith error
}

func (e *bigramEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.failWith != nil {
		return nil, e.failWith
	}
	return bigramVector(text), nil
}

func (e *bigramEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.GenerateEmbedding(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func bigramVector(text string) []float32 {
	v := make([]float32, fakeDims)
	var runes []rune
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			runes = append(runes, ' ')
			continue
		}
		runes = append(runes, r)
	}
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == ' ' || runes[i+1] == ' ' {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(string(runes[i : i+2])))
		v[h.Sum32()%fakeDims]++
	}
	return v
}

var errEmbed = errors.New("embedding service down")
