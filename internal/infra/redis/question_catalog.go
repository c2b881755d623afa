package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizbank-service/internal/domain"
)

// QuestionLoader fetches the question list from the backing store.
type QuestionLoader interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionCatalog caches the question list in Redis as a single JSON value
// and falls back to the loader on a miss:
//
//	SET quizbank:questions <json> EX <ttl>
//
// Invalidate bumps quizbank:questions:gen; a load only writes back if the
// generation it started under is still current.
type QuestionCatalog struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionCatalog(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCatalog {
	return &QuestionCatalog{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const (
	questionsKey  = "quizbank:questions"
	generationKey = "quizbank:questions:gen"
)

func (c *QuestionCatalog) Questions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.fromCache(ctx); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.fromCache(ctx); ok {
			return questions, nil
		}

		gen, genErr := c.generation(ctx, c.client)
		questions, err := c.loader.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			slog.Warn("question catalog generation read failed", "error", genErr)
			return questions, nil
		}
		if err := c.store(ctx, gen, questions); err != nil {
			slog.Warn("question catalog write failed", "error", err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCatalog) Invalidate(ctx context.Context) error {
	c.sf.Forget(questionsKey)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, questionsKey)
		return nil
	})
	return err
}

// store writes the list unless an invalidation happened since gen was read.
func (c *QuestionCatalog) store(ctx context.Context, gen int64, questions []domain.Question) error {
	ttl := c.ttlWithJitter()
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, questionsKey, raw, ttl)
			return nil
		})
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *QuestionCatalog) generation(ctx context.Context, cmd getter) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// fromCache treats Redis errors as a miss so the catalog degrades to the store.
func (c *QuestionCatalog) fromCache(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, questionsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("question catalog read failed", "error", err)
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	return questions, true
}

func (c *QuestionCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
