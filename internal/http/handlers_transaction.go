package http

import (
	"net/http"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if s.transactions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "transaction store not configured"})
		return
	}
	txs, err := s.transactions.Transactions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if s.transactions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "transaction store not configured"})
		return
	}
	var in core.TransactionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	tx, err := s.transactions.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	if s.transactions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "transaction store not configured"})
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in core.TransactionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	tx, err := s.transactions.UpdateTransaction(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if s.transactions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "transaction store not configured"})
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.transactions.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
