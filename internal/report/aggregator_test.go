package report

import (
	"context"
	"testing"
	"time"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
	"github.com/abdulaziz1076-hash/fifi/internal/ledger"
)

type stubLedger struct {
	txs []core.Transaction
}

func (s stubLedger) Transactions(context.Context) ([]core.Transaction, error) {
	return s.txs, nil
}

type stubBudgets []core.Budget

func (s stubBudgets) List() []core.Budget { return s }

type stubGoals []core.Goal

func (s stubGoals) List() []core.Goal { return s }

func fixedNow() time.Time {
	return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
}

func TestDashboard(t *testing.T) {
	view := ledger.NewView(stubLedger{txs: []core.Transaction{
		{ID: 1, Amount: 2000, Date: core.NewDate(2025, 3, 1), Kind: core.Income, Category: "salary"},
		{ID: 2, Amount: 600, Date: core.NewDate(2025, 3, 5), Kind: core.Expense, Category: "housing"},
		{ID: 3, Amount: 150.555, Date: core.NewDate(2025, 3, 10), Kind: core.Expense, Category: "food"},
	}})
	budgets := stubBudgets{
		{ID: 1, Amount: 500, ActualSpent: 150, Status: core.BudgetGood},
		{ID: 2, Amount: 300, ActualSpent: 400, Status: core.BudgetExceeded},
		{ID: 3, Amount: 100, ActualSpent: 0, Status: core.BudgetExpired},
	}
	goals := stubGoals{
		{ID: 1, TargetAmount: 1000, CurrentAmount: 1000, Status: core.GoalAchieved},
		{ID: 2, TargetAmount: 2000, CurrentAmount: 500, Status: core.GoalGoodProgress},
	}

	d := NewAggregator(view, budgets, goals, fixedNow).Dashboard(context.Background())

	if d.TotalIncome != 2000 || d.TotalExpenses != 750.56 {
		t.Fatalf("totals = %v / %v", d.TotalIncome, d.TotalExpenses)
	}
	if d.Balance != 1249.44 {
		t.Fatalf("balance = %v", d.Balance)
	}
	if d.ActiveBudgets != 1 || d.ExceededBudgets != 1 {
		t.Fatalf("budget counters = %d/%d", d.ActiveBudgets, d.ExceededBudgets)
	}
	if d.ActiveGoals != 1 || d.AchievedGoals != 1 {
		t.Fatalf("goal counters = %d/%d", d.ActiveGoals, d.AchievedGoals)
	}
	if d.TotalSaved != 1500 || d.TotalTargeted != 3000 {
		t.Fatalf("goal totals = %v/%v", d.TotalSaved, d.TotalTargeted)
	}
}

func TestBudgetAnalytics(t *testing.T) {
	budgets := stubBudgets{
		{ID: 1, Name: "housing", Amount: 1000, ActualSpent: 900, Remaining: 100, Categories: []string{"housing"}, Status: core.BudgetCritical, DaysElapsed: 15, DailyBudget: 30, DailyAverage: 60},
		{ID: 2, Name: "fun", Amount: 500, ActualSpent: 50, Remaining: 450, Categories: []string{"fun"}, Status: core.BudgetExcellent, DaysElapsed: 15, DailyBudget: 16, DailyAverage: 3},
		{ID: 3, Name: "food", Amount: 400, ActualSpent: 500, Remaining: 0, Categories: []string{"food"}, Status: core.BudgetExceeded, DaysElapsed: 15, DailyBudget: 13, DailyAverage: 33},
	}

	a := NewAggregator(nil, budgets, nil, fixedNow).BudgetAnalytics(context.Background())

	if a.Summary.TotalBudgets != 3 || a.Summary.TotalAllocated != 1900 {
		t.Fatalf("summary = %+v", a.Summary)
	}
	wantUtil := core.Round2(1450.0 / 1900 * 100)
	if a.Summary.Utilization != wantUtil {
		t.Fatalf("utilization = %v, want %v", a.Summary.Utilization, wantUtil)
	}

	// Performance sorted by utilization, highest first.
	if a.Performance[0].Name != "food" || a.Performance[2].Name != "fun" {
		t.Fatalf("performance order = %+v", a.Performance)
	}

	types := map[string]bool{}
	for _, r := range a.Recommendations {
		types[r.Type] = true
	}
	for _, want := range []string{"under_utilization", "exceeded_budgets", "fast_spending"} {
		if !types[want] {
			t.Fatalf("missing recommendation %q in %v", want, types)
		}
	}
}

func TestGoalAnalytics(t *testing.T) {
	goals := stubGoals{
		{ID: 1, Title: "done", Category: "travel", TargetAmount: 500, CurrentAmount: 500, Progress: 100, Status: core.GoalAchieved},
		{ID: 2, Title: "slow", Category: "other", TargetAmount: 1000, CurrentAmount: 100, Progress: 10, Status: core.GoalBehind,
			Contributions: []core.Contribution{
				{ID: 1, Amount: 60, Date: core.NewDate(2025, 3, 10)},
				{ID: 2, Amount: 40, Date: core.NewDate(2025, 2, 5)},
				{ID: 3, Amount: 500, Date: core.NewDate(2024, 1, 1)}, // outside the window
			}},
	}

	a := NewAggregator(nil, nil, goals, fixedNow).GoalAnalytics(context.Background())

	if a.Summary.TotalGoals != 2 || a.Summary.AchievedGoals != 1 || a.Summary.AchievementRate != 50 {
		t.Fatalf("summary = %+v", a.Summary)
	}
	// Achieved goals drop out of the ranking.
	if len(a.TopPerforming) != 1 || a.TopPerforming[0].Title != "slow" {
		t.Fatalf("topPerforming = %+v", a.TopPerforming)
	}
	if len(a.NeedsAttention) != 1 || a.NeedsAttention[0].Title != "slow" {
		t.Fatalf("needsAttention = %+v", a.NeedsAttention)
	}
	if a.MonthlyContributions["2025-03"] != 60 || a.MonthlyContributions["2025-02"] != 40 {
		t.Fatalf("monthly = %+v", a.MonthlyContributions)
	}
	if _, ok := a.MonthlyContributions["2024-01"]; ok {
		t.Fatalf("stale month included: %+v", a.MonthlyContributions)
	}

	types := map[string]bool{}
	for _, r := range a.Recommendations {
		types[r.Type] = true
	}
	if !types["behind_schedule"] || !types["good_momentum"] {
		t.Fatalf("recommendations = %v", types)
	}
}

func TestAggregatorToleratesMissingCollaborators(t *testing.T) {
	a := NewAggregator(nil, nil, nil, nil)
	ctx := context.Background()

	d := a.Dashboard(ctx)
	if d.TotalIncome != 0 || d.ActiveBudgets != 0 {
		t.Fatalf("dashboard = %+v", d)
	}
	if got := a.BudgetAnalytics(ctx); got.Summary.TotalBudgets != 0 {
		t.Fatalf("budget analytics = %+v", got)
	}
	if got := a.GoalAnalytics(ctx); got.Summary.TotalGoals != 0 {
		t.Fatalf("goal analytics = %+v", got)
	}
}
