package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"quizbank-service/internal/auth"
	"quizbank-service/internal/domain"
)

const (
	maxQuestionTextLength = 500
	maxOptionTextLength   = 150
)

// QuestionService manages the question bank. Reads go through the catalog,
// writes go to the repository and then drop the cached list.
type QuestionService struct {
	questions QuestionRepository
	catalog   QuestionCatalog
}

func NewQuestionService(questions QuestionRepository, catalog QuestionCatalog) *QuestionService {
	return &QuestionService{questions: questions, catalog: catalog}
}

func (s *QuestionService) List(ctx context.Context, caller domain.Identity) ([]domain.Question, error) {
	if err := auth.Authorize(caller, auth.AnyRole); err != nil {
		return nil, err
	}
	if s.catalog != nil {
		return s.catalog.Questions(ctx)
	}
	return s.questions.ListQuestions(ctx)
}

func (s *QuestionService) Get(ctx context.Context, caller domain.Identity, id int64) (domain.Question, error) {
	if err := auth.Authorize(caller, auth.AnyRole); err != nil {
		return domain.Question{}, err
	}
	return s.questions.GetQuestion(ctx, id)
}

func (s *QuestionService) Create(ctx context.Context, caller domain.Identity, q domain.Question) (domain.Question, error) {
	if err := auth.Authorize(caller, auth.Privileged); err != nil {
		return domain.Question{}, err
	}
	q, err := normalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	created, err := s.questions.InsertQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *QuestionService) Update(ctx context.Context, caller domain.Identity, q domain.Question) (domain.Question, error) {
	if err := auth.Authorize(caller, auth.Privileged); err != nil {
		return domain.Question{}, err
	}
	q, err := normalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	updated, err := s.questions.UpdateQuestion(ctx, q)
	if err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *QuestionService) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	if err := auth.Authorize(caller, auth.Privileged); err != nil {
		return err
	}
	if err := s.questions.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate is best effort; a stale entry still expires with its TTL.
func (s *QuestionService) invalidate(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		slog.Warn("question catalog invalidation failed", "error", err)
	}
}

func normalizeQuestion(q domain.Question) (domain.Question, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.OptionA = strings.TrimSpace(q.OptionA)
	q.OptionB = strings.TrimSpace(q.OptionB)
	q.OptionC = strings.TrimSpace(q.OptionC)
	q.OptionD = strings.TrimSpace(q.OptionD)
	if q.Text == "" || q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
		return q, fmt.Errorf("%w: question text and all four options are required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(q.Text) > maxQuestionTextLength {
		return q, fmt.Errorf("%w: question text is too long", domain.ErrValidation)
	}
	for _, option := range []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD} {
		if utf8.RuneCountInString(option) > maxOptionTextLength {
			return q, fmt.Errorf("%w: option text is too long", domain.ErrValidation)
		}
	}
	correct, err := domain.ParseOption(string(q.CorrectAnswer))
	if err != nil {
		return q, err
	}
	q.CorrectAnswer = correct
	return q, nil
}
