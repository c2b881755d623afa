package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizbank-service/internal/app"
	"quizbank-service/internal/domain"
	"quizbank-service/internal/infra/memory"
)

func TestStatisticsForPrivilegedCallers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.addUser(t, "teacher", domain.RoleAdmin)
	p1 := f.addUser(t, "p1", domain.RolePupil)
	p2 := f.addUser(t, "p2", domain.RolePupil)
	q1 := f.addQuestion(t, "2+2?", domain.OptionB)
	q2 := f.addQuestion(t, "3+3?", domain.OptionC)

	f.answer(t, p1, q1, "B")
	f.answer(t, p1, q2, "A")
	f.answer(t, p2, q1, "b")

	for _, caller := range []domain.Identity{f.owner, admin} {
		stats, err := f.stats.Report(ctx, caller)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalPupils)
		assert.Equal(t, 1, stats.TotalTeachers)
		assert.Equal(t, []domain.PupilStatistics{
			{ID: p1.UserID, Username: "p1", CorrectAnswers: 1, IncorrectAnswers: 1},
			{ID: p2.UserID, Username: "p2", CorrectAnswers: 1, IncorrectAnswers: 0},
		}, stats.PupilStatistics)
	}
}

func TestStatisticsPupilSeesOnlyOwnRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "teacher", domain.RoleAdmin)
	p1 := f.addUser(t, "p1", domain.RolePupil)
	p2 := f.addUser(t, "p2", domain.RolePupil)
	q := f.addQuestion(t, "2+2?", domain.OptionB)
	f.answer(t, p1, q, "A")
	f.answer(t, p2, q, "B")

	stats, err := f.stats.Report(ctx, p2)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPupils)
	assert.Equal(t, 0, stats.TotalTeachers)
	require.Len(t, stats.PupilStatistics, 1)
	assert.Equal(t, domain.PupilStatistics{ID: p2.UserID, Username: "p2", CorrectAnswers: 1}, stats.PupilStatistics[0])
}

func TestStatisticsWithNoAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pupil := f.addUser(t, "lonely", domain.RolePupil)

	stats, err := f.stats.Report(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, stats.PupilStatistics, 1)
	assert.Zero(t, stats.PupilStatistics[0].CorrectAnswers)
	assert.Zero(t, stats.PupilStatistics[0].IncorrectAnswers)
	assert.Equal(t, 0, stats.TotalTeachers)

	own, err := f.stats.Report(ctx, pupil)
	require.NoError(t, err)
	assert.Equal(t, "lonely", own.PupilStatistics[0].Username)
}

func TestStatisticsTotalsMatchSubmissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pupil := f.addUser(t, "busy", domain.RolePupil)
	q := f.addQuestion(t, "pick C", domain.OptionC)
	options := []string{"A", "B", "C", "D", "c", "C", "b"}
	for _, o := range options {
		f.answer(t, pupil, q, o)
	}

	stats, err := f.stats.Report(ctx, pupil)
	require.NoError(t, err)
	record := stats.PupilStatistics[0]
	assert.Equal(t, 3, record.CorrectAnswers)
	assert.Equal(t, len(options), record.CorrectAnswers+record.IncorrectAnswers)
}

func TestStatisticsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pupil := f.addUser(t, "p1", domain.RolePupil)
	q := f.addQuestion(t, "pick A", domain.OptionA)
	f.answer(t, pupil, q, "A")

	first, err := f.stats.Report(ctx, f.owner)
	require.NoError(t, err)
	second, err := f.stats.Report(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStatisticsDeletedQuestionDropsAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pupil := f.addUser(t, "p1", domain.RolePupil)
	keep := f.addQuestion(t, "keep", domain.OptionA)
	drop := f.addQuestion(t, "drop", domain.OptionA)
	f.answer(t, pupil, keep, "A")
	f.answer(t, pupil, drop, "B")

	require.NoError(t, f.questions.Delete(ctx, f.owner, drop.ID))

	stats, err := f.stats.Report(ctx, pupil)
	require.NoError(t, err)
	assert.Equal(t, domain.PupilStatistics{ID: pupil.UserID, Username: "p1", CorrectAnswers: 1}, stats.PupilStatistics[0])
}

type failingAnswers struct {
	*memory.Store
	failFor int64
}

func (f failingAnswers) AnswersWithQuestions(ctx context.Context, userID int64) ([]domain.GradedAnswer, error) {
	if userID == f.failFor {
		return nil, errors.New("connection reset")
	}
	return f.Store.AnswersWithQuestions(ctx, userID)
}

func TestStatisticsFailsWholeWhenOneReadFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addUser(t, "p1", domain.RolePupil)
	broken := f.addUser(t, "p2", domain.RolePupil)
	f.addUser(t, "p3", domain.RolePupil)

	stats := app.NewStatisticsService(f.store, failingAnswers{Store: f.store, failFor: broken.UserID}, 1)
	_, err := stats.Report(ctx, f.owner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStatisticsUnavailable))
}

func TestStatisticsRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.stats.Report(context.Background(), domain.Identity{UserID: 99, Role: "guest"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
