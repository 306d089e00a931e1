package http

import (
	"net/http"

	"github.com/abdulaziz1076-hash/fifi/internal/budget"
	"github.com/abdulaziz1076-hash/fifi/internal/core"
)

func (s *Server) budgetsReady(w http.ResponseWriter) bool {
	if s.budgets == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "budget engine not configured"})
		return false
	}
	return true
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.budgets.List())
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	var in core.BudgetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := s.budgets.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := s.budgets.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch budget.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}
	b, err := s.budgets.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.budgets.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDuplicateBudget(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := s.budgets.Duplicate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleRecomputeBudget(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := s.budgets.Recompute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleExportBudgets(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.budgets.ExportAll())
}

func (s *Server) handleImportBudgets(w http.ResponseWriter, r *http.Request) {
	if !s.budgetsReady(w) {
		return
	}
	var doc budget.Export
	if !decodeJSON(w, r, &doc) {
		return
	}
	count := s.budgets.Import(r.Context(), doc)
	writeJSON(w, http.StatusOK, map[string]int{"imported": count})
}
