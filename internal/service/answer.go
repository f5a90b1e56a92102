package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/index"
	"github.com/cloo-solutions/dreamcourse/internal/pipetable"
	"github.com/cloo-solutions/dreamcourse/internal/prompt"
	"github.com/cloo-solutions/dreamcourse/internal/telemetry"
)

// DefaultTopK is used for intents without a configured k.
const DefaultTopK = 4

// Completer sends one prompt to the chat model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AnswerService runs retrieve, render and generate against an injected index.
type AnswerService struct {
	completer Completer
	topK      map[domain.Intent]int
}

// Answer is the model's raw reply and the table parsed from it.
type Answer struct {
	Raw   string              `json:"raw"`
	Table *domain.TableResult `json:"table"`
}

func NewAnswerService(completer Completer, topK map[domain.Intent]int) *AnswerService {
	return &AnswerService{completer: completer, topK: topK}
}

// TopK returns the retrieval depth for an intent.
func (s *AnswerService) TopK(intent domain.Intent) int {
	if k := s.topK[intent]; k > 0 {
		return k
	}
	return DefaultTopK
}

// Answer retrieves context for question, renders the contract and returns
// the model output unmodified.
func (s *AnswerService) Answer(ctx context.Context, idx index.Index, contract *prompt.Contract, question string) (string, error) {
	intent := contract.Intent()
	ctx, span := telemetry.StartSpan(ctx, "answer.generate", telemetry.SpanAttributes{
		Intent:    string(intent),
		Operation: "answer",
	})
	defer span.End()

	units, err := idx.Query(ctx, question, s.TopK(intent))
	if err != nil {
		span.SetError(err)
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return "", err
		}
		return "", domain.Wrap(domain.ErrRetrievalFailed, err)
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	rendered, err := contract.Render(strings.Join(texts, "\n\n"), question)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	out, err := s.completer.Complete(ctx, rendered)
	if err != nil {
		err = domain.Wrap(domain.ErrGenerationFailed, err)
		span.SetError(err)
		return "", err
	}

	log.Printf("answer: %s answered from %d units (%d chars)", intent, len(units), len(out))
	return out, nil
}

// Ask answers and parses the reply with the contract's own schema.
func (s *AnswerService) Ask(ctx context.Context, idx index.Index, contract *prompt.Contract, question string) (*Answer, error) {
	raw, err := s.Answer(ctx, idx, contract, question)
	if err != nil {
		return nil, err
	}

	table := pipetable.ParseSchema(raw, contract.Schema())
	if len(table.Rejected) > 0 {
		log.Printf("answer: %s reply had %d malformed rows", contract.Intent(), len(table.Rejected))
	}
	return &Answer{Raw: raw, Table: table}, nil
}
