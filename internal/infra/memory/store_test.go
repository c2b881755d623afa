package memory

import (
	"context"
	"errors"
	"testing"

	"quizbank-service/internal/domain"
)

func TestStoreRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.InsertUser(ctx, "ali", "hash", domain.RolePupil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.InsertUser(ctx, "ali", "hash", domain.RoleAdmin); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStoreMutationsOnMissingIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.DeleteUser(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete user: expected not found, got %v", err)
	}
	if err := store.UpdateRole(ctx, 42, domain.RoleAdmin); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update role: expected not found, got %v", err)
	}
	if _, err := store.UpdateQuestion(ctx, domain.Question{ID: 42}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update question: expected not found, got %v", err)
	}
	if err := store.DeleteQuestion(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete question: expected not found, got %v", err)
	}
}

func TestStoreCascadesAnswerDeletes(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	pupil, _ := store.InsertUser(ctx, "ali", "hash", domain.RolePupil)
	q1, _ := store.InsertQuestion(ctx, domain.Question{Text: "2+2?", CorrectAnswer: domain.OptionB})
	q2, _ := store.InsertQuestion(ctx, domain.Question{Text: "3+3?", CorrectAnswer: domain.OptionA})

	for _, a := range []domain.Answer{
		{UserID: pupil.ID, QuestionID: q1.ID, SelectedOption: domain.OptionB},
		{UserID: pupil.ID, QuestionID: q2.ID, SelectedOption: domain.OptionC},
	} {
		if _, err := store.InsertAnswer(ctx, a); err != nil {
			t.Fatalf("insert answer: %v", err)
		}
	}

	graded, _ := store.AnswersWithQuestions(ctx, pupil.ID)
	if len(graded) != 2 {
		t.Fatalf("expected 2 graded answers, got %d", len(graded))
	}

	if err := store.DeleteQuestion(ctx, q1.ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	graded, _ = store.AnswersWithQuestions(ctx, pupil.ID)
	if len(graded) != 1 || graded[0].CorrectAnswer != domain.OptionA {
		t.Fatalf("expected only q2 answer left, got %+v", graded)
	}

	if err := store.DeleteUser(ctx, pupil.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	graded, _ = store.AnswersWithQuestions(ctx, pupil.ID)
	if len(graded) != 0 {
		t.Fatalf("expected answers removed with user, got %+v", graded)
	}
}

func TestStoreAnswerRequiresQuestion(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	pupil, _ := store.InsertUser(ctx, "ali", "hash", domain.RolePupil)

	_, err := store.InsertAnswer(ctx, domain.Answer{UserID: pupil.ID, QuestionID: 99, SelectedOption: domain.OptionA})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreCountsByRole(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, _ = store.InsertUser(ctx, "owner", "h", domain.RoleOwner)
	_, _ = store.InsertUser(ctx, "t1", "h", domain.RoleAdmin)
	_, _ = store.InsertUser(ctx, "p1", "h", domain.RolePupil)
	_, _ = store.InsertUser(ctx, "p2", "h", domain.RolePupil)

	pupils, _ := store.CountByRole(ctx, domain.RolePupil)
	admins, _ := store.CountByRole(ctx, domain.RoleAdmin)
	if pupils != 2 || admins != 1 {
		t.Fatalf("expected 2 pupils and 1 admin, got %d and %d", pupils, admins)
	}
	list, _ := store.ListByRole(ctx, domain.RolePupil)
	if len(list) != 2 || list[0].Username != "p1" || list[1].Username != "p2" {
		t.Fatalf("unexpected pupil list %+v", list)
	}
}
