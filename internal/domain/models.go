package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account kinds.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RolePupil Role = "pupil"
)

// ParseRole accepts the wire form of a role, case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleOwner:
		return RoleOwner, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RolePupil:
		return RolePupil, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, raw)
	}
}

// DisplayName is the label shown to people; admins are presented as teachers.
func (r Role) DisplayName() string {
	switch r {
	case RoleOwner:
		return "Owner"
	case RoleAdmin:
		return "Teacher"
	case RolePupil:
		return "Pupil"
	default:
		return string(r)
	}
}

// Privileged reports whether the role sees everyone's statistics.
func (r Role) Privileged() bool {
	switch r {
	case RoleOwner, RoleAdmin:
		return true
	case RolePupil:
		return false
	default:
		return false
	}
}

// Option is one of the four answer letters. The canonical form is upper case.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

// ParseOption normalizes "b", " B " and "B" to OptionB.
func ParseOption(raw string) (Option, error) {
	switch Option(strings.ToUpper(strings.TrimSpace(raw))) {
	case OptionA:
		return OptionA, nil
	case OptionB:
		return OptionB, nil
	case OptionC:
		return OptionC, nil
	case OptionD:
		return OptionD, nil
	default:
		return "", fmt.Errorf("%w: option must be one of A, B, C, D, got %q", ErrValidation, raw)
	}
}

// User is a stored account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
}

// Question is a multiple-choice question with exactly one correct letter.
type Question struct {
	ID            int64  `json:"id"`
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer Option `json:"correct_answer"`
}

// Answer is one submission; several per (user, question) are allowed.
type Answer struct {
	ID             int64
	UserID         int64
	QuestionID     int64
	SelectedOption Option
	CreatedAt      time.Time
}

// GradedAnswer is an answer joined with the correct letter of its question.
type GradedAnswer struct {
	SelectedOption Option
	CorrectAnswer  Option
}

// Correct compares letters exactly; both sides are stored in canonical form.
func (g GradedAnswer) Correct() bool {
	return g.SelectedOption == g.CorrectAnswer
}

// Identity is the verified claim carried by an access token.
type Identity struct {
	UserID    int64
	Username  string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// PupilStatistics is the per-pupil correctness tally.
type PupilStatistics struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	CorrectAnswers   int    `json:"correctAnswers"`
	IncorrectAnswers int    `json:"incorrectAnswers"`
}

// Statistics is the report returned by GET /statistics.
type Statistics struct {
	TotalPupils     int               `json:"totalPupils"`
	TotalTeachers   int               `json:"totalTeachers"`
	PupilStatistics []PupilStatistics `json:"pupilStatistics"`
}
