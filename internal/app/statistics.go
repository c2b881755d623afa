package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"quizbank-service/internal/auth"
	"quizbank-service/internal/domain"
)

const defaultStatisticsParallelism = 4

// StatisticsService computes per-pupil correctness on demand. Nothing is cached
// and no transaction spans the per-pupil reads.
type StatisticsService struct {
	users       UserRepository
	answers     AnswerRepository
	parallelism int
}

func NewStatisticsService(users UserRepository, answers AnswerRepository, parallelism int) *StatisticsService {
	if parallelism <= 0 {
		parallelism = defaultStatisticsParallelism
	}
	return &StatisticsService{users: users, answers: answers, parallelism: parallelism}
}

// Report returns every pupil's tally to owners and admins, and only the
// caller's own tally to a pupil.
func (s *StatisticsService) Report(ctx context.Context, caller domain.Identity) (domain.Statistics, error) {
	if err := auth.Authorize(caller, auth.AnyRole); err != nil {
		return domain.Statistics{}, err
	}

	totalPupils, err := s.users.CountByRole(ctx, domain.RolePupil)
	if err != nil {
		return domain.Statistics{}, unavailable("count pupils", err)
	}
	totalTeachers, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return domain.Statistics{}, unavailable("count admins", err)
	}
	pupils, err := s.users.ListByRole(ctx, domain.RolePupil)
	if err != nil {
		return domain.Statistics{}, unavailable("list pupils", err)
	}

	records, err := s.tally(ctx, pupils)
	if err != nil {
		return domain.Statistics{}, err
	}

	switch caller.Role {
	case domain.RoleOwner, domain.RoleAdmin:
		return domain.Statistics{
			TotalPupils:     totalPupils,
			TotalTeachers:   totalTeachers,
			PupilStatistics: records,
		}, nil
	case domain.RolePupil:
		return domain.Statistics{
			TotalPupils:     1,
			TotalTeachers:   0,
			PupilStatistics: []domain.PupilStatistics{ownRecord(caller, records)},
		}, nil
	default:
		return domain.Statistics{}, fmt.Errorf("%w: role %s", domain.ErrForbidden, caller.Role)
	}
}

// tally runs one join query per pupil; all of them must succeed.
func (s *StatisticsService) tally(ctx context.Context, pupils []domain.User) ([]domain.PupilStatistics, error) {
	records := make([]domain.PupilStatistics, len(pupils))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, pupil := range pupils {
		i, pupil := i, pupil
		g.Go(func() error {
			graded, err := s.answers.AnswersWithQuestions(gctx, pupil.ID)
			if err != nil {
				return unavailable(fmt.Sprintf("answers of user %d", pupil.ID), err)
			}
			records[i] = score(pupil, graded)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func score(pupil domain.User, graded []domain.GradedAnswer) domain.PupilStatistics {
	correct := 0
	for _, answer := range graded {
		if answer.Correct() {
			correct++
		}
	}
	return domain.PupilStatistics{
		ID:               pupil.ID,
		Username:         pupil.Username,
		CorrectAnswers:   correct,
		IncorrectAnswers: len(graded) - correct,
	}
}

// ownRecord picks the caller's record by username. A missing record means the
// pupil row vanished between the token being issued and this read.
func ownRecord(caller domain.Identity, records []domain.PupilStatistics) domain.PupilStatistics {
	for _, record := range records {
		if record.Username == caller.Username {
			return record
		}
	}
	slog.Warn("statistics: no record for pupil", "user_id", caller.UserID, "username", caller.Username)
	return domain.PupilStatistics{ID: caller.UserID, Username: caller.Username}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStatisticsUnavailable, err)
}
