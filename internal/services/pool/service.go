package pool

import (
	"context"
	"fmt"

	"github.com/mcoot/ladder/internal/dependencies/random"
	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
)

// Service draws questions from the pool held in storage
type Service struct {
	storage storage.Storage
	random  random.Random
}

// New creates a new pool Service
func New(storage storage.Storage, random random.Random) *Service {
	return &Service{
		storage: storage,
		random:  random,
	}
}

// DrawSet picks one question for each entry of levels, in the same order.
// A question is never drawn twice in one call. Storage returns candidates
// ordered by id, so a scripted Random gives a repeatable draw.
func (s *Service) DrawSet(ctx context.Context, levels []int) ([]model.Question, error) {
	drawn := make([]model.Question, 0, len(levels))
	used := make(map[model.QuestionID]bool, len(levels))

	for _, level := range levels {
		candidates, err := s.storage.QuestionsForLevel(ctx, level)
		if err != nil {
			return nil, err
		}

		unused := candidates[:0:0]
		for _, q := range candidates {
			if !used[q.ID] {
				unused = append(unused, q)
			}
		}
		if len(unused) == 0 {
			return nil, fmt.Errorf("%w: level %d", model.ErrInsufficientQuestions, level)
		}

		q := unused[s.random.Intn(len(unused))]
		used[q.ID] = true
		drawn = append(drawn, q)
	}

	return drawn, nil
}
