package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizbank-service/internal/domain"
)

// Store implements the user, question and answer repositories on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// classify maps driver errors onto domain errors.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}

func expectOne(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.findUser(ctx, "find user by username", `
		SELECT id, username, password_hash, role
		FROM users
		WHERE username = $1
	`, username)
}

func (s *Store) FindByID(ctx context.Context, id int64) (domain.User, error) {
	return s.findUser(ctx, "find user by id", `
		SELECT id, username, password_hash, role
		FROM users
		WHERE id = $1
	`, id)
}

func (s *Store) findUser(ctx context.Context, op, query string, arg interface{}) (domain.User, error) {
	var user domain.User
	var role string
	err := s.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &role)
	if err != nil {
		return domain.User{}, classify(op, err)
	}
	user.Role = domain.Role(role)
	return user, nil
}

func (s *Store) InsertUser(ctx context.Context, username, passwordHash string, role domain.Role) (domain.User, error) {
	user := domain.User{Username: username, PasswordHash: passwordHash, Role: role}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`, username, passwordHash, string(role)).Scan(&user.ID)
	if err != nil {
		return domain.User{}, classify("insert user", err)
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return expectOne("delete user", tag, err)
}

func (s *Store) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), id)
	return expectOne("update role", tag, err)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.listUsers(ctx, "list users", `SELECT id, username, role FROM users ORDER BY id`)
}

func (s *Store) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return s.listUsers(ctx, "list users by role", `SELECT id, username, role FROM users WHERE role = $1 ORDER BY id`, string(role))
}

func (s *Store) listUsers(ctx context.Context, op, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		var role string
		if err := rows.Scan(&user.ID, &user.Username, &role); err != nil {
			return nil, classify(op, err)
		}
		user.Role = domain.Role(role)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return users, nil
}

func (s *Store) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(id) FROM users WHERE role = $1`, string(role)).Scan(&count)
	if err != nil {
		return 0, classify("count users", err)
	}
	return count, nil
}

func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, text, option_a, option_b, option_c, option_d, correct_answer
		FROM questions
		ORDER BY id
	`)
	if err != nil {
		return nil, classify("list questions", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, classify("list questions", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list questions", err)
	}
	return questions, nil
}

func (s *Store) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, text, option_a, option_b, option_c, option_d, correct_answer
		FROM questions
		WHERE id = $1
	`, id)
	q, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, classify("get question", err)
	}
	return q, nil
}

func (s *Store) InsertQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO questions (text, option_a, option_b, option_c, option_d, correct_answer)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, string(q.CorrectAnswer)).Scan(&q.ID)
	if err != nil {
		return domain.Question{}, classify("insert question", err)
	}
	return q, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE questions
		SET text = $1, option_a = $2, option_b = $3, option_c = $4, option_d = $5, correct_answer = $6
		WHERE id = $7
	`, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, string(q.CorrectAnswer), q.ID)
	if err := expectOne("update question", tag, err); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return expectOne("delete question", tag, err)
}

func (s *Store) InsertAnswer(ctx context.Context, a domain.Answer) (domain.Answer, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO answers (user_id, question_id, selected_option)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, a.UserID, a.QuestionID, string(a.SelectedOption)).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return domain.Answer{}, classify("insert answer", err)
	}
	return a, nil
}

// AnswersWithQuestions joins every answer of the user to its question's correct letter.
func (s *Store) AnswersWithQuestions(ctx context.Context, userID int64) ([]domain.GradedAnswer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.selected_option, q.correct_answer
		FROM answers a
		JOIN questions q ON a.question_id = q.id
		WHERE a.user_id = $1
		ORDER BY a.id
	`, userID)
	if err != nil {
		return nil, classify("answers with questions", err)
	}
	defer rows.Close()

	graded := make([]domain.GradedAnswer, 0)
	for rows.Next() {
		var selected, correct string
		if err := rows.Scan(&selected, &correct); err != nil {
			return nil, classify("answers with questions", err)
		}
		graded = append(graded, domain.GradedAnswer{
			SelectedOption: domain.Option(selected),
			CorrectAnswer:  domain.Option(correct),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("answers with questions", err)
	}
	return graded, nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	var correct string
	if err := row.Scan(&q.ID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &correct); err != nil {
		return domain.Question{}, err
	}
	q.CorrectAnswer = domain.Option(correct)
	return q, nil
}
