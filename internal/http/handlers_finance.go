package http

import (
	"net/http"

	"github.com/abdulaziz1076-hash/fifi/internal/finance"
)

type affordabilityRequest struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	MonthlyIncome  float64 `json:"monthlyIncome"`
}

func (s *Server) handleLoanSummary(w http.ResponseWriter, r *http.Request) {
	var l finance.Loan
	if !decodeJSON(w, r, &l) {
		return
	}
	summary, err := finance.Summarize(l)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLoanSchedule(w http.ResponseWriter, r *http.Request) {
	var l finance.Loan
	if !decodeJSON(w, r, &l) {
		return
	}
	rows, err := finance.Schedule(l)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAffordability(w http.ResponseWriter, r *http.Request) {
	var req affordabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, finance.Afford(req.MonthlyPayment, req.MonthlyIncome))
}

func (s *Server) handleSavingsPlan(w http.ResponseWriter, r *http.Request) {
	var plan finance.SavingsPlan
	if !decodeJSON(w, r, &plan) {
		return
	}
	writeJSON(w, http.StatusOK, finance.Project(plan))
}
