package http

import "net/http"

func (s *Server) reportsReady(w http.ResponseWriter) bool {
	if s.reports == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "reporting not configured"})
		return false
	}
	return true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !s.reportsReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.reports.Dashboard(r.Context()))
}

func (s *Server) handleBudgetAnalytics(w http.ResponseWriter, r *http.Request) {
	if !s.reportsReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.reports.BudgetAnalytics(r.Context()))
}

func (s *Server) handleGoalAnalytics(w http.ResponseWriter, r *http.Request) {
	if !s.reportsReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.reports.GoalAnalytics(r.Context()))
}
