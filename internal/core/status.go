package core

import (
	"fmt"
	"time"
)

// ClassifyBudget maps spend percentage and elapsed-time percentage to a
// budget status. Tiers are evaluated top-down, first match wins. The warning
// tier fires either on the 80% spend threshold or when spending runs more
// than 10 points ahead of elapsed time.
func ClassifyBudget(spentPct, daysPct float64) BudgetStatus {
	switch {
	case spentPct >= 100:
		return BudgetExceeded
	case spentPct >= 90:
		return BudgetCritical
	case spentPct >= 80 || spentPct > daysPct+10:
		return BudgetWarning
	case spentPct >= 50:
		return BudgetModerate
	case spentPct >= 30:
		return BudgetGood
	default:
		return BudgetExcellent
	}
}

// BudgetAlerts derives the alert list for a budget from its current derived
// fields. Conditions are independent: a budget can carry several alerts at
// once. The returned slice replaces any previous alerts.
func BudgetAlerts(b *Budget, now time.Time) []Alert {
	var alerts []Alert
	pct := 0.0
	if b.Amount > 0 {
		pct = b.ActualSpent / b.Amount * 100
	}

	if pct >= 100 {
		alerts = append(alerts, Alert{
			Type:      "exceeded",
			Message:   fmt.Sprintf("budget %q is fully spent", b.Name),
			Severity:  "high",
			Timestamp: now,
		})
	}
	if pct >= 80 && pct < 100 {
		alerts = append(alerts, Alert{
			Type:      "warning",
			Message:   fmt.Sprintf("budget %q is close to its cap (%.1f%%)", b.Name, pct),
			Severity:  "medium",
			Timestamp: now,
		})
	}
	if b.DailyAverage > b.DailyBudget*1.5 {
		alerts = append(alerts, Alert{
			Type:      "spending_fast",
			Message:   fmt.Sprintf("spending on %q is faster than planned", b.Name),
			Severity:  "medium",
			Timestamp: now,
		})
	}
	if b.DaysRemaining <= 3 {
		alerts = append(alerts, Alert{
			Type:      "period_ending",
			Message:   fmt.Sprintf("budget %q ends in %d days", b.Name, b.DaysRemaining),
			Severity:  "low",
			Timestamp: now,
		})
	}
	return alerts
}

// ClassifyGoal maps progress and schedule position to a goal status.
// Evaluated top-down, first match wins: a fully funded goal is achieved even
// when the deadline has passed, and expiry overrides every schedule-based
// tier below it.
func ClassifyGoal(progress, daysPct float64, daysRemaining int, deadlinePassed bool) GoalStatus {
	switch {
	case progress >= 100:
		return GoalAchieved
	case deadlinePassed:
		return GoalExpired
	case progress < daysPct-20:
		return GoalBehind
	case progress > daysPct+20:
		return GoalAhead
	case daysRemaining <= 7 && progress < 100:
		return GoalUrgent
	case progress >= 80:
		return GoalNearCompletion
	case progress >= 50:
		return GoalGoodProgress
	case progress >= 25:
		return GoalStarted
	default:
		return GoalNew
	}
}
