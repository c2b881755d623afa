package domain

import (
	"errors"
	"testing"
)

func TestParseOption(t *testing.T) {
	valid := map[string]Option{"a": OptionA, " B ": OptionB, "c": OptionC, "D": OptionD}
	for raw, want := range valid {
		got, err := ParseOption(raw)
		if err != nil || got != want {
			t.Fatalf("ParseOption(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	for _, raw := range []string{"", "E", "AB", "1"} {
		if _, err := ParseOption(raw); !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseOption(%q): expected validation error, got %v", raw, err)
		}
	}
}

func TestParseRoleAndDisplay(t *testing.T) {
	role, err := ParseRole("Admin")
	if err != nil || role != RoleAdmin {
		t.Fatalf("ParseRole: %q, %v", role, err)
	}
	if role.DisplayName() != "Teacher" {
		t.Fatalf("admin should display as Teacher, got %q", role.DisplayName())
	}
	if _, err := ParseRole("teacher"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !RoleOwner.Privileged() || !RoleAdmin.Privileged() || RolePupil.Privileged() {
		t.Fatal("privilege flags are wrong")
	}
}

func TestGradedAnswerCorrect(t *testing.T) {
	if !(GradedAnswer{SelectedOption: OptionB, CorrectAnswer: OptionB}).Correct() {
		t.Fatal("same letter should be correct")
	}
	if (GradedAnswer{SelectedOption: OptionA, CorrectAnswer: OptionB}).Correct() {
		t.Fatal("different letter should be incorrect")
	}
}
