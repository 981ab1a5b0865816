package api

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"codeladder/internal/ladder"
)

const defaultQuestionCacheSize = 512

type QuestionGetter interface {
	Question(ctx context.Context, id ladder.QuestionID) (ladder.Problem, error)
}

// QuestionCache memoizes question detail lookups. Solved state in cached
// entries may be stale, so it is meant for title/link/tag enrichment only.
type QuestionCache struct {
	source QuestionGetter
	cache  *lru.Cache[ladder.QuestionID, ladder.Problem]
}

func NewQuestionCache(source QuestionGetter, size int) (*QuestionCache, error) {
	if size <= 0 {
		size = defaultQuestionCacheSize
	}
	cache, err := lru.New[ladder.QuestionID, ladder.Problem](size)
	if err != nil {
		return nil, err
	}
	return &QuestionCache{source: source, cache: cache}, nil
}

func (q *QuestionCache) Question(ctx context.Context, id ladder.QuestionID) (ladder.Problem, error) {
	if problem, ok := q.cache.Get(id); ok {
		return problem, nil
	}
	problem, err := q.source.Question(ctx, id)
	if err != nil {
		return ladder.Problem{}, err
	}
	q.cache.Add(id, problem)
	return problem, nil
}

func (q *QuestionCache) Len() int {
	return q.cache.Len()
}
