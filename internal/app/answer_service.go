package app

import (
	"context"

	"quizbank-service/internal/auth"
	"quizbank-service/internal/domain"
)

// AnswerService records submissions. Answers are append-only.
type AnswerService struct {
	answers AnswerRepository
}

func NewAnswerService(answers AnswerRepository) *AnswerService {
	return &AnswerService{answers: answers}
}

// Submit stores the caller's choice for a question. The option letter is
// normalized, so "b" and "B" are the same answer.
func (s *AnswerService) Submit(ctx context.Context, caller domain.Identity, questionID int64, rawOption string) (domain.Answer, error) {
	if err := auth.Authorize(caller, auth.AnyRole); err != nil {
		return domain.Answer{}, err
	}
	option, err := domain.ParseOption(rawOption)
	if err != nil {
		return domain.Answer{}, err
	}
	return s.answers.InsertAnswer(ctx, domain.Answer{
		UserID:         caller.UserID,
		QuestionID:     questionID,
		SelectedOption: option,
	})
}
