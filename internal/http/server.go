// Package http exposes the JSON API over the ledger, budget and goal
// engines.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/abdulaziz1076-hash/fifi/internal/budget"
	"github.com/abdulaziz1076-hash/fifi/internal/core"
	"github.com/abdulaziz1076-hash/fifi/internal/goal"
	"github.com/abdulaziz1076-hash/fifi/internal/report"
	"github.com/abdulaziz1076-hash/fifi/internal/store"
)

// BudgetService is the budget engine surface the API depends on.
type BudgetService interface {
	Create(ctx context.Context, in core.BudgetInput) (core.Budget, error)
	Get(id int64) (core.Budget, error)
	List() []core.Budget
	Update(ctx context.Context, id int64, patch budget.Patch) (core.Budget, error)
	Delete(ctx context.Context, id int64) error
	Duplicate(ctx context.Context, id int64) (core.Budget, error)
	Recompute(ctx context.Context, id int64) (core.Budget, error)
	ExportAll() budget.Export
	Import(ctx context.Context, doc budget.Export) int
}

// GoalService is the goal engine surface the API depends on.
type GoalService interface {
	Create(ctx context.Context, in core.GoalInput) (core.Goal, error)
	Get(id int64) (core.Goal, error)
	List() []core.Goal
	Update(ctx context.Context, id int64, patch goal.Patch) (core.Goal, error)
	Delete(ctx context.Context, id int64) error
	AddContribution(ctx context.Context, id int64, amount float64, description string) (core.Contribution, error)
	LinkTransaction(ctx context.Context, goalID, transactionID int64) (core.Contribution, error)
	ExportAll() goal.Export
	Import(ctx context.Context, doc goal.Export) int
}

// Reporter builds the aggregate documents served under /api/reports.
type Reporter interface {
	Dashboard(ctx context.Context) report.Dashboard
	BudgetAnalytics(ctx context.Context) report.BudgetAnalytics
	GoalAnalytics(ctx context.Context) report.GoalAnalytics
}

// Server wires the engines behind a JSON API. Any dependency may be nil;
// the affected routes then answer 503.
type Server struct {
	http.Server

	transactions store.TransactionStore
	budgets      BudgetService
	goals        GoalService
	reports      Reporter

	limiter *rateLimiter
	started time.Time
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, transactions store.TransactionStore, budgets BudgetService, goals GoalService, reports Reporter) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		transactions: transactions,
		budgets:      budgets,
		goals:        goals,
		reports:      reports,
		limiter:      newRateLimiter(60, time.Minute),
		started:      time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/transactions", s.withRequestLog(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withRequestLog(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withRequestLog(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withRequestLog(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.withRequestLog(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withRequestLog(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets/export", s.withRequestLog(s.handleExportBudgets))
	mux.HandleFunc("POST /api/budgets/import", s.withRequestLog(s.handleImportBudgets))
	mux.HandleFunc("GET /api/budgets/{id}", s.withRequestLog(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withRequestLog(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withRequestLog(s.handleDeleteBudget))
	mux.HandleFunc("POST /api/budgets/{id}/duplicate", s.withRequestLog(s.handleDuplicateBudget))
	mux.HandleFunc("POST /api/budgets/{id}/recompute", s.withRequestLog(s.handleRecomputeBudget))

	mux.HandleFunc("GET /api/goals", s.withRequestLog(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withRequestLog(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals/export", s.withRequestLog(s.handleExportGoals))
	mux.HandleFunc("POST /api/goals/import", s.withRequestLog(s.handleImportGoals))
	mux.HandleFunc("GET /api/goals/{id}", s.withRequestLog(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withRequestLog(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withRequestLog(s.handleDeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.withRequestLog(s.handleAddContribution))
	mux.HandleFunc("POST /api/goals/{id}/link/{txID}", s.withRequestLog(s.handleLinkTransaction))

	mux.HandleFunc("GET /api/reports/dashboard", s.withRequestLog(s.handleDashboard))
	mux.HandleFunc("GET /api/reports/budgets", s.withRequestLog(s.handleBudgetAnalytics))
	mux.HandleFunc("GET /api/reports/goals", s.withRequestLog(s.handleGoalAnalytics))

	mux.HandleFunc("POST /api/finance/loan", s.withRequestLog(s.handleLoanSummary))
	mux.HandleFunc("POST /api/finance/schedule", s.withRequestLog(s.handleLoanSchedule))
	mux.HandleFunc("POST /api/finance/affordability", s.withRequestLog(s.handleAffordability))
	mux.HandleFunc("POST /api/finance/savings-plan", s.withRequestLog(s.handleSavingsPlan))

	return s
}

// rateLimiter is a fixed-window per-client counter for mutating requests.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*clientWindow
}

type clientWindow struct {
	requests int
	start    time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientWindow),
	}
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[clientIP]
	if !ok || now.Sub(c.start) > rl.window {
		rl.clients[clientIP] = &clientWindow{requests: 1, start: now}
		return true
	}

	c.requests++
	return c.requests <= rl.limit
}
