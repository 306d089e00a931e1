package http

import (
	"net/http"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
	"github.com/abdulaziz1076-hash/fifi/internal/goal"
)

type contributionRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

func (s *Server) goalsReady(w http.ResponseWriter) bool {
	if s.goals == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "goal engine not configured"})
		return false
	}
	return true
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.goals.List())
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	var in core.GoalInput
	if !decodeJSON(w, r, &in) {
		return
	}
	g, err := s.goals.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	g, err := s.goals.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch goal.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}
	g, err := s.goals.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.goals.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req contributionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := s.goals.AddContribution(r.Context(), id, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleLinkTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	txID, ok := pathID(w, r, "txID")
	if !ok {
		return
	}
	c, err := s.goals.LinkTransaction(r.Context(), id, txID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleExportGoals(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.goals.ExportAll())
}

func (s *Server) handleImportGoals(w http.ResponseWriter, r *http.Request) {
	if !s.goalsReady(w) {
		return
	}
	var doc goal.Export
	if !decodeJSON(w, r, &doc) {
		return
	}
	count := s.goals.Import(r.Context(), doc)
	writeJSON(w, http.StatusOK, map[string]int{"imported": count})
}
