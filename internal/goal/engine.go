// Package goal owns the savings goal collection, contributions and
// milestone tracking.
package goal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
	"github.com/abdulaziz1076-hash/fifi/internal/ledger"
	"github.com/abdulaziz1076-hash/fifi/internal/notify"
	"github.com/abdulaziz1076-hash/fifi/internal/store"
)

const snapshotKey = "goals"

const defaultCategory = "other"

// Engine owns the goal collection. Collaborators are optional: a nil ledger
// view disables transaction linking, a nil snapshot store disables
// persistence and a nil notifier disables notifications.
type Engine struct {
	mu        sync.Mutex
	ledger    *ledger.View
	snapshots store.SnapshotStore
	notifier  notify.Sink
	now       func() time.Time

	goals  []*core.Goal
	nextID int64
}

// Patch holds optional field updates; nil fields are left untouched.
// CurrentAmount is settable to allow corrective edits; achieved milestones
// stay achieved even when the amount is lowered.
type Patch struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	TargetAmount  *float64   `json:"targetAmount,omitempty"`
	CurrentAmount *float64   `json:"currentAmount,omitempty"`
	Category      *string    `json:"category,omitempty"`
	StartDate     *core.Date `json:"startDate,omitempty"`
	Deadline      *core.Date `json:"deadline,omitempty"`
}

// Export is the portable snapshot document for backup and restore.
type Export struct {
	Goals      []core.Goal `json:"goals"`
	ExportedAt time.Time   `json:"exportedAt"`
}

func NewEngine(view *ledger.View, snapshots store.SnapshotStore, notifier notify.Sink, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		ledger:    view,
		snapshots: snapshots,
		notifier:  notifier,
		now:       now,
		nextID:    1,
	}
}

// Restore loads the persisted collection. A missing snapshot starts empty;
// a corrupt one is logged and discarded rather than surfaced as a failure.
func (e *Engine) Restore(ctx context.Context) {
	if e.snapshots == nil {
		return
	}

	blob, err := e.snapshots.LoadSnapshot(ctx, snapshotKey)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load goals snapshot, starting empty",
			"component", "goal", "error", err)
		return
	}
	if len(blob) == 0 {
		return
	}

	var goals []*core.Goal
	if err := json.Unmarshal(blob, &goals); err != nil {
		slog.WarnContext(ctx, "Goals snapshot is corrupt, resetting collection",
			"component", "goal", "error", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.goals = goals
	for _, g := range e.goals {
		if g.ID >= e.nextID {
			e.nextID = g.ID + 1
		}
		e.recomputeLocked(ctx, g)
	}

	slog.InfoContext(ctx, "Goals restored", "component", "goal", "count", len(e.goals))
}

// Create validates the input and registers a new goal with its four fixed
// milestones. An initial amount counts toward progress immediately.
func (e *Engine) Create(ctx context.Context, in core.GoalInput) (core.Goal, error) {
	now := e.now()
	if err := in.Validate(now); err != nil {
		return core.Goal{}, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultCategory
	}
	start := in.StartDate
	if start.IsZero() {
		start = core.DateOf(now)
	}

	e.mu.Lock()
	g := &core.Goal{
		ID:            e.nextID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.InitialAmount,
		Category:      category,
		StartDate:     start,
		Deadline:      in.Deadline,
		Milestones:    core.NewMilestones(in.TargetAmount),
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
	e.nextID++
	e.goals = append(e.goals, g)
	e.recomputeLocked(ctx, g)
	e.persistLocked(ctx)
	out := copyGoal(g)
	e.mu.Unlock()

	e.emit(ctx, "goal_created", "Goals",
		fmt.Sprintf("new goal created: %s", out.Title), "normal")

	return out, nil
}

// Get returns a copy of the goal with the given id.
func (e *Engine) Get(id int64) (core.Goal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.findLocked(id)
	if g == nil {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	return copyGoal(g), nil
}

// List returns copies of all goals in creation order.
func (e *Engine) List() []core.Goal {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]core.Goal, 0, len(e.goals))
	for _, g := range e.goals {
		out = append(out, copyGoal(g))
	}
	return out
}

// Update merges the patch, bumps the version and recomputes. The milestone
// schedule is kept as created even when the target amount changes.
func (e *Engine) Update(ctx context.Context, id int64, patch Patch) (core.Goal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.findLocked(id)
	if g == nil {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}

	title := g.Title
	if patch.Title != nil {
		title = *patch.Title
	}
	if len(strings.TrimSpace(title)) < 2 {
		return core.Goal{}, core.ErrTitleTooShort
	}
	target := g.TargetAmount
	if patch.TargetAmount != nil {
		target = *patch.TargetAmount
	}
	if target <= 0 {
		return core.Goal{}, core.ErrInvalidAmount
	}
	current := g.CurrentAmount
	if patch.CurrentAmount != nil {
		current = *patch.CurrentAmount
	}
	if current < 0 {
		return core.Goal{}, core.ErrInvalidAmount
	}

	g.Title = strings.TrimSpace(title)
	g.TargetAmount = target
	g.CurrentAmount = current
	if patch.Description != nil {
		g.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		if c := strings.TrimSpace(*patch.Category); c != "" {
			g.Category = c
		}
	}
	if patch.StartDate != nil {
		g.StartDate = *patch.StartDate
	}
	if patch.Deadline != nil {
		g.Deadline = *patch.Deadline
	}
	g.Version++

	e.recomputeLocked(ctx, g)
	e.persistLocked(ctx)
	return copyGoal(g), nil
}

// Delete removes the goal permanently.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, g := range e.goals {
		if g.ID == id {
			e.goals = append(e.goals[:i], e.goals[i+1:]...)
			e.persistLocked(ctx)
			return nil
		}
	}
	return fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
}

// AddContribution records a manual contribution. The streak advances only
// when the previous contribution was made the day before; a second
// contribution on the same day leaves the streak untouched.
func (e *Engine) AddContribution(ctx context.Context, id int64, amount float64, description string) (core.Contribution, error) {
	if amount <= 0 {
		return core.Contribution{}, core.ErrInvalidAmount
	}

	e.mu.Lock()

	g := e.findLocked(id)
	if g == nil {
		e.mu.Unlock()
		return core.Contribution{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}

	today := core.DateOf(e.now())
	switch {
	case g.LastContribution.IsZero():
		g.Streak = 1
	case g.LastContribution.SameDay(today):
		// Already counted for today.
	case g.LastContribution.SameDay(core.DateOf(today.AddDate(0, 0, -1))):
		g.Streak++
	default:
		g.Streak = 1
	}

	c := core.Contribution{
		ID:          int64(len(g.Contributions)) + 1,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		Date:        today,
		Origin:      core.ManualContribution,
	}
	g.Contributions = append([]core.Contribution{c}, g.Contributions...)
	g.CurrentAmount += amount
	g.LastContribution = today

	e.recomputeLocked(ctx, g)
	e.persistLocked(ctx)
	title := g.Title
	e.mu.Unlock()

	e.emit(ctx, "contribution_added", "Goals",
		fmt.Sprintf("%.2f added to goal %q", amount, title), "low")

	return c, nil
}

// LinkTransaction records a ledger entry as a contribution. The transaction
// itself is left untouched, and linking does not affect the daily streak.
func (e *Engine) LinkTransaction(ctx context.Context, goalID, transactionID int64) (core.Contribution, error) {
	tx, ok := e.ledger.Find(ctx, transactionID)
	if !ok {
		return core.Contribution{}, fmt.Errorf("transaction %d: %w", transactionID, core.ErrNotFound)
	}

	e.mu.Lock()

	g := e.findLocked(goalID)
	if g == nil {
		e.mu.Unlock()
		return core.Contribution{}, fmt.Errorf("goal %d: %w", goalID, core.ErrNotFound)
	}

	c := core.Contribution{
		ID:            int64(len(g.Contributions)) + 1,
		Amount:        tx.Amount,
		Description:   tx.Description,
		Date:          tx.Date,
		Origin:        core.LinkedTransaction,
		TransactionID: tx.ID,
	}
	g.Contributions = append([]core.Contribution{c}, g.Contributions...)
	g.CurrentAmount += tx.Amount

	e.recomputeLocked(ctx, g)
	e.persistLocked(ctx)
	title := g.Title
	e.mu.Unlock()

	e.emit(ctx, "contribution_added", "Goals",
		fmt.Sprintf("%.2f added to goal %q", tx.Amount, title), "low")

	return c, nil
}

// CheckProgress recomputes every goal, firing milestone and status
// notifications for transitions that happened since the last pass.
func (e *Engine) CheckProgress(ctx context.Context) {
	e.mu.Lock()
	for _, g := range e.goals {
		e.recomputeLocked(ctx, g)
	}
	e.persistLocked(ctx)
	e.mu.Unlock()
}

// DailyReminders nudges goals that still need daily saving and sit below
// half of their target. It returns the number of reminders sent.
func (e *Engine) DailyReminders(ctx context.Context) int {
	type reminder struct {
		title string
		daily float64
	}

	e.mu.Lock()
	var due []reminder
	for _, g := range e.goals {
		if g.Status == core.GoalAchieved || g.Status == core.GoalExpired {
			continue
		}
		if g.DailyRequired > 0 && g.Progress < 50 {
			due = append(due, reminder{title: g.Title, daily: g.DailyRequired})
		}
	}
	e.mu.Unlock()

	for _, r := range due {
		e.emit(ctx, "goal_reminder", "Goals",
			fmt.Sprintf("save %.2f today to stay on track for %q", r.daily, r.title), "low")
	}
	return len(due)
}

// ExportAll returns a portable document with every goal.
func (e *Engine) ExportAll() Export {
	return Export{Goals: e.List(), ExportedAt: e.now()}
}

// Import appends the goals from an exported document under fresh identities
// and returns how many were imported.
func (e *Engine) Import(ctx context.Context, doc Export) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for i := range doc.Goals {
		g := doc.Goals[i]
		g.ID = e.nextID
		g.CreatedAt = now
		g.UpdatedAt = now
		e.nextID++
		imported := &g
		e.goals = append(e.goals, imported)
		e.recomputeLocked(ctx, imported)
	}
	if len(doc.Goals) > 0 {
		e.persistLocked(ctx)
	}
	return len(doc.Goals)
}

// recomputeLocked re-derives progress, schedule position, status and
// milestones for g, emitting one-shot notifications for newly crossed
// milestones and for transitions into achieved or urgent. Callers hold e.mu.
func (e *Engine) recomputeLocked(ctx context.Context, g *core.Goal) {
	now := e.now()

	if g.TargetAmount > 0 {
		g.Progress = g.CurrentAmount / g.TargetAmount * 100
	} else {
		g.Progress = 0
	}

	g.DaysElapsed = core.DaysElapsed(g.StartDate, now)
	deadlinePassed := false
	if g.Deadline.IsZero() {
		g.DaysRemaining = 0
	} else {
		g.DaysRemaining = core.DaysRemaining(g.Deadline, now)
		deadlinePassed = g.Deadline.Before(now) && !g.Deadline.SameDay(core.DateOf(now))
	}

	remaining := g.TargetAmount - g.CurrentAmount
	if g.DaysRemaining > 0 {
		g.DailyRequired = remaining / float64(g.DaysRemaining)
	} else {
		g.DailyRequired = remaining
	}
	if g.DailyRequired < 0 {
		g.DailyRequired = 0
	}

	daysPct := 0.0
	if total := g.DaysElapsed + g.DaysRemaining; total > 0 {
		daysPct = float64(g.DaysElapsed) / float64(total) * 100
	}

	for i := range g.Milestones {
		m := &g.Milestones[i]
		if m.Achieved || g.Progress < float64(m.Percentage) {
			continue
		}
		m.Achieved = true
		achievedAt := now
		m.AchievedAt = &achievedAt
		e.emit(ctx, "milestone_achieved", "Goals",
			fmt.Sprintf("goal %q reached %d%% of its target", g.Title, m.Percentage), "medium")
	}

	previous := g.Status
	g.Status = core.ClassifyGoal(g.Progress, daysPct, g.DaysRemaining, deadlinePassed)
	if g.Status != previous {
		switch g.Status {
		case core.GoalAchieved:
			e.emit(ctx, "goal_achieved", "Goals",
				fmt.Sprintf("goal achieved: %s", g.Title), "high")
		case core.GoalUrgent:
			e.emit(ctx, "goal_urgent", "Goals",
				fmt.Sprintf("goal %q has %d days left", g.Title, g.DaysRemaining), "urgent")
		}
	}
	g.UpdatedAt = now
}

func (e *Engine) persistLocked(ctx context.Context) {
	if e.snapshots == nil {
		return
	}
	blob, err := json.Marshal(e.goals)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal goals snapshot",
			"component", "goal", "error", err)
		return
	}
	if err := e.snapshots.SaveSnapshot(ctx, snapshotKey, blob); err != nil {
		slog.WarnContext(ctx, "Failed to persist goals snapshot",
			"component", "goal", "error", err)
	}
}

func (e *Engine) emit(ctx context.Context, kind, title, message, severity string) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, notify.Event{
		Kind:      kind,
		Title:     title,
		Message:   message,
		Severity:  severity,
		Timestamp: e.now(),
	})
}

func (e *Engine) findLocked(id int64) *core.Goal {
	for _, g := range e.goals {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func copyGoal(g *core.Goal) core.Goal {
	out := *g
	out.Milestones = append([]core.Milestone(nil), g.Milestones...)
	out.Contributions = append([]core.Contribution(nil), g.Contributions...)
	return out
}
