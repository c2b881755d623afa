package app

import (
	"context"
	"time"

	"quizbank-service/internal/domain"
)

// UserRepository is the credential store. Lookups and mutations on a missing
// id return domain.ErrNotFound; a taken username returns domain.ErrConflict.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	InsertUser(ctx context.Context, username, passwordHash string, role domain.Role) (domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

// QuestionRepository stores the question bank.
type QuestionRepository interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	GetQuestion(ctx context.Context, id int64) (domain.Question, error)
	InsertQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// AnswerRepository stores submissions. InsertAnswer returns domain.ErrNotFound
// when the question or user does not exist.
type AnswerRepository interface {
	InsertAnswer(ctx context.Context, a domain.Answer) (domain.Answer, error)
	AnswersWithQuestions(ctx context.Context, userID int64) ([]domain.GradedAnswer, error)
}

// QuestionCatalog serves the question list from a cache in front of the repository.
type QuestionCatalog interface {
	Questions(ctx context.Context) ([]domain.Question, error)
	Invalidate(ctx context.Context) error
}

// RevocationList remembers logged-out token ids until they would have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenIssuer is the token service boundary.
type TokenIssuer interface {
	Issue(user domain.User) (string, domain.Identity, error)
	Verify(token string) (domain.Identity, error)
}

// PasswordHasher is the credential verifier boundary.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
