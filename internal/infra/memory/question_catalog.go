package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizbank-service/internal/domain"
)

// QuestionLoader fetches the question list from the backing store.
type QuestionLoader interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

const catalogKey = "questions"

// QuestionCatalog caches the question list with a TTL to avoid repeated DB hits.
type QuestionCatalog struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
	// generation guards against a slow load repopulating the cache after Invalidate.
	generation uint64
}

func NewQuestionCatalog(loader QuestionLoader, ttl time.Duration) *QuestionCatalog {
	return &QuestionCatalog{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCatalog) Questions(ctx context.Context) ([]domain.Question, error) {
	if cached, ok := c.cached(); ok {
		return cached, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		if cached, ok := c.cached(); ok {
			return cached, nil
		}

		c.mu.RLock()
		generation := c.generation
		c.mu.RUnlock()

		questions, err := c.loader.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation == generation {
			c.questions = questions
			c.expiresAt = c.clock().Add(c.ttlWithJitter())
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

func (c *QuestionCatalog) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.questions = nil
	c.expiresAt = time.Time{}
	c.generation++
	c.mu.Unlock()
	c.sf.Forget(catalogKey)
	return nil
}

func (c *QuestionCatalog) cached() ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.questions == nil || !c.expiresAt.After(c.clock()) {
		return nil, false
	}
	return copyQuestions(c.questions), true
}

func (c *QuestionCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func copyQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out
}
