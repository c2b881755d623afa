package http

import (
	"net/http"

	"quizbank-service/internal/domain"
)

type questionRequest struct {
	Text          string `json:"text" validate:"required,max=500"`
	OptionA       string `json:"option_a" validate:"required,max=150"`
	OptionB       string `json:"option_b" validate:"required,max=150"`
	OptionC       string `json:"option_c" validate:"required,max=150"`
	OptionD       string `json:"option_d" validate:"required,max=150"`
	CorrectAnswer string `json:"correct_answer" validate:"required"`
}

func (q questionRequest) question(id int64) domain.Question {
	return domain.Question{
		ID:            id,
		Text:          q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectAnswer: domain.Option(q.CorrectAnswer),
	}
}

type answerRequest struct {
	QuestionID     int64  `json:"question_id" validate:"required,gt=0"`
	SelectedOption string `json:"selected_option" validate:"required"`
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.svc.Questions.List(r.Context(), identityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := s.svc.Questions.Get(r.Context(), identityFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	q, err := s.svc.Questions.Create(r.Context(), identityFromContext(r.Context()), req.question(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req questionRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	q, err := s.svc.Questions.Update(r.Context(), identityFromContext(r.Context()), req.question(id))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Questions.Delete(r.Context(), identityFromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	answer, err := s.svc.Answers.Submit(r.Context(), identityFromContext(r.Context()), req.QuestionID, req.SelectedOption)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Message: "Answer submitted", ID: answer.ID})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Statistics.Report(r.Context(), identityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
