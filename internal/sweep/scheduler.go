// Package sweep drives the periodic refresh of budgets and goals.
package sweep

import (
	"context"
	"log/slog"
	"time"
)

// BudgetChecker is the budget maintenance surface the scheduler drives.
type BudgetChecker interface {
	RecomputeAll(ctx context.Context)
	CheckExpired(ctx context.Context) int
}

// GoalChecker is the goal maintenance surface the scheduler drives.
type GoalChecker interface {
	CheckProgress(ctx context.Context)
	DailyReminders(ctx context.Context) int
}

// Scheduler runs one maintenance pass per interval until the context is
// cancelled. Either checker may be nil.
type Scheduler struct {
	budgets  BudgetChecker
	goals    GoalChecker
	interval time.Duration
}

func NewScheduler(budgets BudgetChecker, goals GoalChecker, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{budgets: budgets, goals: goals, interval: interval}
}

// Run performs an immediate pass, then one per tick. It returns when the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Sweep scheduler started",
		"component", "sweep", "interval", s.interval)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Sweep scheduler stopped", "component", "sweep")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single maintenance pass.
func (s *Scheduler) RunOnce(ctx context.Context) {
	started := time.Now()

	expired, reminders := 0, 0
	if s.budgets != nil {
		s.budgets.RecomputeAll(ctx)
		expired = s.budgets.CheckExpired(ctx)
	}
	if s.goals != nil {
		s.goals.CheckProgress(ctx)
		reminders = s.goals.DailyReminders(ctx)
	}

	slog.DebugContext(ctx, "Sweep pass finished",
		"component", "sweep",
		"expired_budgets", expired,
		"goal_reminders", reminders,
		"duration", time.Since(started))
}
