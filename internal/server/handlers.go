package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yabatech/campusbot/internal/assistant"
	"github.com/yabatech/campusbot/internal/conversation"
)

const (
	maxBodyBytes = 64 << 10

	invalidBodyMessage = "Invalid request body."
	internalMessage    = "Something went wrong on our side. Please try again."
)

type askRequest struct {
	Message string `json:"message"`
}

type guidedLearningRequest struct {
	Topic string `json:"topic"`
}

// replyResponse is the body of every answer-producing endpoint.
type replyResponse struct {
	Response string `json:"response"`
}

type historyResponse struct {
	Turns []conversation.Turn `json:"turns"`
}

type healthResponse struct {
	Status         string `json:"status"`
	ModelAvailable bool   `json:"model_available"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := s.svc.Ask(r.Context(), sessionKey(r.Context()), req.Message)
	if errors.Is(err, assistant.ErrEmptyQuestion) {
		writeJSON(w, http.StatusBadRequest, replyResponse{Response: assistant.EmptyQuestionMessage})
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, s.replyStatus(reply), replyResponse{Response: reply.Text})
}

func (s *Server) handleGuidedLearning(w http.ResponseWriter, r *http.Request) {
	var req guidedLearningRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := s.svc.GuidedLearning(r.Context(), req.Topic)
	if errors.Is(err, assistant.ErrEmptyTopic) {
		writeJSON(w, http.StatusBadRequest, replyResponse{Response: assistant.EmptyTopicMessage})
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, s.replyStatus(reply), replyResponse{Response: reply.Text})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.History(r.Context(), sessionKey(r.Context()))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	turns := []conversation.Turn(h)
	if turns == nil {
		turns = []conversation.Turn{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Turns: turns})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reset(r.Context(), sessionKey(r.Context())); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		ModelAvailable: s.svc.ModelAvailable(r.Context()),
	})
}

// replyStatus maps a fallback reply to 503 only in strict mode. By default
// the fallback text is delivered with 200 so chat widgets display it.
func (s *Server) replyStatus(reply *assistant.Reply) int {
	if reply.Failed() && s.opts.StrictStatus {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, replyResponse{Response: internalMessage})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, replyResponse{Response: invalidBodyMessage})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
