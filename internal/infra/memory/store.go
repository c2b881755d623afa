package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizbank-service/internal/domain"
)

// Store is an in-memory implementation of the user, question and answer
// repositories. It mirrors the relational behavior: unique usernames,
// answers referencing existing rows, and cascading deletes.
type Store struct {
	mu        sync.RWMutex
	clock     func() time.Time
	nextID    int64
	users     map[int64]domain.User
	questions map[int64]domain.Question
	answers   map[int64]domain.Answer
}

func NewStore() *Store {
	return &Store{
		clock:     time.Now,
		users:     make(map[int64]domain.User),
		questions: make(map[int64]domain.Question),
		answers:   make(map[int64]domain.Answer),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) FindByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *Store) FindByID(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (s *Store) InsertUser(_ context.Context, username, passwordHash string, role domain.Role) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return domain.User{}, domain.ErrConflict
		}
	}
	user := domain.User{ID: s.id(), Username: username, PasswordHash: passwordHash, Role: role}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	for answerID, answer := range s.answers {
		if answer.UserID == id {
			delete(s.answers, answerID)
		}
	}
	return nil
}

func (s *Store) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.Role = role
	s.users[id] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sortUsers(users)
	return users, nil
}

func (s *Store) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0)
	for _, user := range s.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	sortUsers(users)
	return users, nil
}

func (s *Store) CountByRole(_ context.Context, role domain.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (s *Store) GetQuestion(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrNotFound
	}
	return q, nil
}

func (s *Store) InsertQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.id()
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) UpdateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.Question{}, domain.ErrNotFound
	}
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.questions, id)
	for answerID, answer := range s.answers {
		if answer.QuestionID == id {
			delete(s.answers, answerID)
		}
	}
	return nil
}

func (s *Store) InsertAnswer(_ context.Context, a domain.Answer) (domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[a.UserID]; !ok {
		return domain.Answer{}, domain.ErrNotFound
	}
	if _, ok := s.questions[a.QuestionID]; !ok {
		return domain.Answer{}, domain.ErrNotFound
	}
	a.ID = s.id()
	a.CreatedAt = s.clock()
	s.answers[a.ID] = a
	return a, nil
}

func (s *Store) AnswersWithQuestions(_ context.Context, userID int64) ([]domain.GradedAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0)
	for id, answer := range s.answers {
		if answer.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	graded := make([]domain.GradedAnswer, 0, len(ids))
	for _, id := range ids {
		answer := s.answers[id]
		q, ok := s.questions[answer.QuestionID]
		if !ok {
			continue
		}
		graded = append(graded, domain.GradedAnswer{
			SelectedOption: answer.SelectedOption,
			CorrectAnswer:  q.CorrectAnswer,
		})
	}
	return graded, nil
}

func sortUsers(users []domain.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}
