// Package report builds read-only aggregates over the ledger, budgets and
// goals for dashboard and analytics views.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
	"github.com/abdulaziz1076-hash/fifi/internal/ledger"
)

// BudgetLister and GoalLister expose the engine collections to the
// aggregator without coupling it to the engines themselves.
type (
	BudgetLister interface {
		List() []core.Budget
	}

	GoalLister interface {
		List() []core.Goal
	}
)

// Aggregator computes summary documents. All collaborators are optional;
// missing ones contribute empty sections.
type Aggregator struct {
	ledger  *ledger.View
	budgets BudgetLister
	goals   GoalLister
	now     func() time.Time
}

func NewAggregator(view *ledger.View, budgets BudgetLister, goals GoalLister, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{ledger: view, budgets: budgets, goals: goals, now: now}
}

// Dashboard is the top-level overview document.
type Dashboard struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Balance       float64 `json:"balance"`

	ActiveBudgets   int     `json:"activeBudgets"`
	ExceededBudgets int     `json:"exceededBudgets"`
	TotalAllocated  float64 `json:"totalAllocated"`
	TotalSpent      float64 `json:"totalSpent"`

	ActiveGoals   int     `json:"activeGoals"`
	AchievedGoals int     `json:"achievedGoals"`
	TotalSaved    float64 `json:"totalSaved"`
	TotalTargeted float64 `json:"totalTargeted"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// Dashboard sums ledger totals and collection counters into one document.
func (a *Aggregator) Dashboard(ctx context.Context) Dashboard {
	d := Dashboard{GeneratedAt: a.now()}

	d.TotalIncome = core.Round2(a.ledger.TotalByKind(ctx, core.Income, nil))
	d.TotalExpenses = core.Round2(a.ledger.TotalByKind(ctx, core.Expense, nil))
	d.Balance = core.Round2(d.TotalIncome - d.TotalExpenses)

	if a.budgets != nil {
		for _, b := range a.budgets.List() {
			d.TotalAllocated += b.Amount
			d.TotalSpent += b.ActualSpent
			switch b.Status {
			case core.BudgetExceeded:
				d.ExceededBudgets++
			case core.BudgetExpired:
			default:
				d.ActiveBudgets++
			}
		}
		d.TotalAllocated = core.Round2(d.TotalAllocated)
		d.TotalSpent = core.Round2(d.TotalSpent)
	}

	if a.goals != nil {
		for _, g := range a.goals.List() {
			d.TotalSaved += g.CurrentAmount
			d.TotalTargeted += g.TargetAmount
			switch g.Status {
			case core.GoalAchieved:
				d.AchievedGoals++
			case core.GoalExpired:
			default:
				d.ActiveGoals++
			}
		}
		d.TotalSaved = core.Round2(d.TotalSaved)
		d.TotalTargeted = core.Round2(d.TotalTargeted)
	}

	return d
}

// BudgetAnalytics is the detailed budget report.
type BudgetAnalytics struct {
	Summary         BudgetSummary      `json:"summary"`
	ByCategory      map[string]float64 `json:"byCategory"`
	Performance     []BudgetScore      `json:"performance"`
	Recommendations []Recommendation   `json:"recommendations"`
}

type BudgetSummary struct {
	TotalBudgets   int     `json:"totalBudgets"`
	TotalAllocated float64 `json:"totalAllocated"`
	TotalSpent     float64 `json:"totalSpent"`
	TotalRemaining float64 `json:"totalRemaining"`
	Utilization    float64 `json:"utilization"`
}

type BudgetScore struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Utilization float64           `json:"utilization"`
	Status      core.BudgetStatus `json:"status"`
}

type Recommendation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// BudgetAnalytics reports utilization per budget and per category plus
// actionable recommendations.
func (a *Aggregator) BudgetAnalytics(ctx context.Context) BudgetAnalytics {
	out := BudgetAnalytics{ByCategory: map[string]float64{}}
	if a.budgets == nil {
		return out
	}

	budgets := a.budgets.List()
	out.Summary.TotalBudgets = len(budgets)

	var underUtilized, exceeded, fastSpending []string
	for _, b := range budgets {
		out.Summary.TotalAllocated += b.Amount
		out.Summary.TotalSpent += b.ActualSpent
		out.Summary.TotalRemaining += b.Remaining

		utilization := 0.0
		if b.Amount > 0 {
			utilization = b.ActualSpent / b.Amount * 100
		}
		out.Performance = append(out.Performance, BudgetScore{
			ID:          b.ID,
			Name:        b.Name,
			Utilization: core.Round2(utilization),
			Status:      b.Status,
		})
		for _, c := range b.Categories {
			out.ByCategory[c] += b.ActualSpent
		}

		if utilization < 30 && b.DaysElapsed > 7 {
			underUtilized = append(underUtilized, b.Name)
		}
		if b.Status == core.BudgetExceeded {
			exceeded = append(exceeded, b.Name)
		}
		if b.DailyBudget > 0 && b.DailyAverage > b.DailyBudget*1.3 {
			fastSpending = append(fastSpending, b.Name)
		}
	}

	if out.Summary.TotalAllocated > 0 {
		out.Summary.Utilization = core.Round2(out.Summary.TotalSpent / out.Summary.TotalAllocated * 100)
	}
	out.Summary.TotalAllocated = core.Round2(out.Summary.TotalAllocated)
	out.Summary.TotalSpent = core.Round2(out.Summary.TotalSpent)
	out.Summary.TotalRemaining = core.Round2(out.Summary.TotalRemaining)
	for c, v := range out.ByCategory {
		out.ByCategory[c] = core.Round2(v)
	}

	sort.Slice(out.Performance, func(i, j int) bool {
		return out.Performance[i].Utilization > out.Performance[j].Utilization
	})

	if len(underUtilized) > 0 {
		out.Recommendations = append(out.Recommendations, Recommendation{
			Type:    "under_utilization",
			Message: fmt.Sprintf("budgets barely used, consider lowering their caps: %s", join(underUtilized)),
		})
	}
	if len(exceeded) > 0 {
		out.Recommendations = append(out.Recommendations, Recommendation{
			Type:    "exceeded_budgets",
			Message: fmt.Sprintf("budgets over their cap, review recent spending: %s", join(exceeded)),
		})
	}
	if len(fastSpending) > 0 {
		out.Recommendations = append(out.Recommendations, Recommendation{
			Type:    "fast_spending",
			Message: fmt.Sprintf("spending faster than planned on: %s", join(fastSpending)),
		})
	}

	return out
}

// GoalAnalytics is the detailed goal report.
type GoalAnalytics struct {
	Summary              GoalSummary        `json:"summary"`
	ByCategory           map[string]float64 `json:"byCategory"`
	TopPerforming        []GoalScore        `json:"topPerforming"`
	NeedsAttention       []GoalScore        `json:"needsAttention"`
	MonthlyContributions map[string]float64 `json:"monthlyContributions"`
	Recommendations      []Recommendation   `json:"recommendations"`
}

type GoalSummary struct {
	TotalGoals      int     `json:"totalGoals"`
	AchievedGoals   int     `json:"achievedGoals"`
	TotalSaved      float64 `json:"totalSaved"`
	TotalTargeted   float64 `json:"totalTargeted"`
	AchievementRate float64 `json:"achievementRate"`
}

type GoalScore struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Progress float64         `json:"progress"`
	Status   core.GoalStatus `json:"status"`
}

// GoalAnalytics reports saved totals, best and struggling goals, and the
// contribution volume of the last six calendar months.
func (a *Aggregator) GoalAnalytics(ctx context.Context) GoalAnalytics {
	out := GoalAnalytics{
		ByCategory:           map[string]float64{},
		MonthlyContributions: map[string]float64{},
	}
	if a.goals == nil {
		return out
	}

	goals := a.goals.List()
	out.Summary.TotalGoals = len(goals)

	now := a.now()
	cutoff := core.DateOf(now.AddDate(0, -6, 0))

	var behind []GoalScore
	for _, g := range goals {
		out.Summary.TotalSaved += g.CurrentAmount
		out.Summary.TotalTargeted += g.TargetAmount
		if g.Status == core.GoalAchieved {
			out.Summary.AchievedGoals++
		}
		out.ByCategory[g.Category] += g.CurrentAmount

		score := GoalScore{ID: g.ID, Title: g.Title, Progress: core.Round2(g.Progress), Status: g.Status}
		// Achieved goals are excluded from the ranking; it highlights the
		// goals still being worked on.
		if g.Status != core.GoalAchieved {
			out.TopPerforming = append(out.TopPerforming, score)
		}
		if g.Status == core.GoalBehind || g.Status == core.GoalUrgent {
			behind = append(behind, score)
		}

		for _, c := range g.Contributions {
			if c.Date.Before(cutoff.Time) {
				continue
			}
			out.MonthlyContributions[c.Date.Format("2006-01")] += c.Amount
		}
	}

	if out.Summary.TotalGoals > 0 {
		out.Summary.AchievementRate = core.Round2(float64(out.Summary.AchievedGoals) / float64(out.Summary.TotalGoals) * 100)
	}
	out.Summary.TotalSaved = core.Round2(out.Summary.TotalSaved)
	out.Summary.TotalTargeted = core.Round2(out.Summary.TotalTargeted)
	for c, v := range out.ByCategory {
		out.ByCategory[c] = core.Round2(v)
	}
	for m, v := range out.MonthlyContributions {
		out.MonthlyContributions[m] = core.Round2(v)
	}

	sort.Slice(out.TopPerforming, func(i, j int) bool {
		return out.TopPerforming[i].Progress > out.TopPerforming[j].Progress
	})
	if len(out.TopPerforming) > 5 {
		out.TopPerforming = out.TopPerforming[:5]
	}

	sort.Slice(behind, func(i, j int) bool {
		return behind[i].Progress < behind[j].Progress
	})
	if len(behind) > 5 {
		behind = behind[:5]
	}
	out.NeedsAttention = behind

	if len(behind) > 0 {
		names := make([]string, 0, len(behind))
		for _, s := range behind {
			names = append(names, s.Title)
		}
		out.Recommendations = append(out.Recommendations, Recommendation{
			Type:    "behind_schedule",
			Message: fmt.Sprintf("goals falling behind schedule, consider extra contributions: %s", join(names)),
		})
	}
	if out.Summary.TotalGoals > 0 && out.Summary.AchievementRate >= 50 {
		out.Recommendations = append(out.Recommendations, Recommendation{
			Type:    "good_momentum",
			Message: "half or more of your goals are achieved, consider setting a new one",
		})
	}

	return out
}

func join(names []string) string {
	return strings.Join(names, ", ")
}
