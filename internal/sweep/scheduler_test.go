package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingBudgets struct {
	recomputes atomic.Int32
	expired    atomic.Int32
}

func (c *countingBudgets) RecomputeAll(context.Context)     { c.recomputes.Add(1) }
func (c *countingBudgets) CheckExpired(context.Context) int { c.expired.Add(1); return 0 }

type countingGoals struct {
	progress  atomic.Int32
	reminders atomic.Int32
}

func (c *countingGoals) CheckProgress(context.Context)      { c.progress.Add(1) }
func (c *countingGoals) DailyReminders(context.Context) int { c.reminders.Add(1); return 0 }

func TestRunOnce(t *testing.T) {
	budgets := &countingBudgets{}
	goals := &countingGoals{}

	s := NewScheduler(budgets, goals, time.Hour)
	s.RunOnce(context.Background())

	if budgets.recomputes.Load() != 1 || budgets.expired.Load() != 1 {
		t.Fatalf("budget passes = %d/%d", budgets.recomputes.Load(), budgets.expired.Load())
	}
	if goals.progress.Load() != 1 || goals.reminders.Load() != 1 {
		t.Fatalf("goal passes = %d/%d", goals.progress.Load(), goals.reminders.Load())
	}
}

func TestRunOnceToleratesNilCheckers(t *testing.T) {
	s := NewScheduler(nil, nil, time.Hour)
	s.RunOnce(context.Background()) // must not panic
}

func TestRunStopsOnCancel(t *testing.T) {
	budgets := &countingBudgets{}
	s := NewScheduler(budgets, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("scheduler did not stop")
	}

	// Initial pass plus at least one tick.
	if budgets.recomputes.Load() < 2 {
		t.Fatalf("recomputes = %d", budgets.recomputes.Load())
	}
}

func TestNewSchedulerDefaultsInterval(t *testing.T) {
	s := NewScheduler(nil, nil, 0)
	if s.interval != time.Hour {
		t.Fatalf("interval = %v", s.interval)
	}
}
