package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"quizbank-service/internal/app"
	"quizbank-service/internal/auth"
	"quizbank-service/internal/domain"
	"quizbank-service/internal/infra/memory"
)

const ownerName = "xasan"

type fixture struct {
	store     *memory.Store
	users     *app.UserService
	questions *app.QuestionService
	answers   *app.AnswerService
	stats     *app.StatisticsService
	owner     domain.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	tokens := auth.NewTokenService("test-secret", "quizbank-test", time.Hour)
	users := app.NewUserService(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, memory.NewRevocationList(), ownerName)

	created, err := users.SeedOwner(ctx, "owner-pass")
	require.NoError(t, err)
	require.True(t, created)
	owner, err := store.FindByUsername(ctx, ownerName)
	require.NoError(t, err)

	return &fixture{
		store:     store,
		users:     users,
		questions: app.NewQuestionService(store, memory.NewQuestionCatalog(store, time.Minute)),
		answers:   app.NewAnswerService(store),
		stats:     app.NewStatisticsService(store, store, 2),
		owner:     identityOf(owner),
	}
}

func identityOf(u domain.User) domain.Identity {
	return domain.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (f *fixture) addUser(t *testing.T, username string, role domain.Role) domain.Identity {
	t.Helper()
	user, err := f.store.InsertUser(context.Background(), username, "hash", role)
	require.NoError(t, err)
	return identityOf(user)
}

func (f *fixture) addQuestion(t *testing.T, text string, correct domain.Option) domain.Question {
	t.Helper()
	q, err := f.questions.Create(context.Background(), f.owner, domain.Question{
		Text:          text,
		OptionA:       "a",
		OptionB:       "b",
		OptionC:       "c",
		OptionD:       "d",
		CorrectAnswer: correct,
	})
	require.NoError(t, err)
	return q
}

func (f *fixture) answer(t *testing.T, caller domain.Identity, q domain.Question, option string) {
	t.Helper()
	_, err := f.answers.Submit(context.Background(), caller, q.ID, option)
	require.NoError(t, err)
}
