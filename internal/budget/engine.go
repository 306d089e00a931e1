// Package budget owns the budget collection and its derived metrics.
package budget

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

const snapshotKey = "budgets"

// Engine owns the budget collection. All collaborators are injected and
// optional except the clock, which defaults to time.Now: a nil ledger view
// yields zero spend, a nil snapshot store disables persistence and a nil
// notifier disables notifications.
type Engine struct {
	mu        sync.Mutex
	ledger    *ledger.View
	snapshots store.SnapshotStore
	notifier  notify.Sink
	now       func() time.Time

	budgets []*core.Budget
	nextID  int64
}

// Patch holds optional field updates; nil fields are left untouched.
type Patch struct {
	Name        *string      `json:"name,omitempty"`
	Amount      *float64     `json:"amount,omitempty"`
	Period      *core.Period `json:"period,omitempty"`
	Categories  []string     `json:"categories,omitempty"`
	StartDate   *core.Date   `json:"startDate,omitempty"`
	Description *string      `json:"description,omitempty"`
}

// Export is the portable snapshot document for backup and restore.
type Export struct {
	Budgets    []core.Budget `json:"budgets"`
	ExportedAt time.Time     `json:"exportedAt"`
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
		slog.WarnContext(ctx, "Failed to load budgets snapshot, starting empty",
			"component", "budget", "error", err)
		return
	}
	if len(blob) == 0 {
		return
	}

	var budgets []*core.Budget
	if err := json.Unmarshal(blob, &budgets); err != nil {
		slog.WarnContext(ctx, "Budgets snapshot is corrupt, resetting collection",
			"component", "budget", "error", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.budgets = budgets
	for _, b := range e.budgets {
		if b.ID >= e.nextID {
			e.nextID = b.ID + 1
		}
		e.recomputeLocked(ctx, b)
	}

	slog.InfoContext(ctx, "Budgets restored", "component", "budget", "count", len(e.budgets))
}

// Create validates the input, seeds the derived fields and registers the
// budget in the collection.
func (e *Engine) Create(ctx context.Context, in core.BudgetInput) (core.Budget, error) {
	if err := in.Validate(); err != nil {
		return core.Budget{}, err
	}

	now := e.now()

	period := in.Period
	if period == "" {
		period = core.Monthly
	}
	start := in.StartDate
	if start.IsZero() {
		start = core.DateOf(now)
	}
	end := core.PeriodEnd(period, start)

	e.mu.Lock()
	b := &core.Budget{
		ID:          e.nextID,
		Name:        strings.TrimSpace(in.Name),
		Amount:      in.Amount,
		Period:      period,
		Categories:  cleanCategories(in.Categories),
		Description: strings.TrimSpace(in.Description),
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}
	e.nextID++

	// The daily allowance is fixed once, from the full period length as seen
	// at creation time.
	elapsed := core.DaysElapsed(b.StartDate, now)
	remaining := core.DaysRemaining(b.EndDate, now)
	if total := elapsed + remaining; total > 0 {
		b.DailyBudget = b.Amount / float64(total)
	}

	e.budgets = append(e.budgets, b)
	e.recomputeLocked(ctx, b)
	e.persistLocked(ctx)
	out := copyBudget(b)
	e.mu.Unlock()

	e.emit(ctx, "budget_created", "Budgets",
		fmt.Sprintf("new budget created: %s", out.Name), "normal")

	return out, nil
}

// Get returns a copy of the budget with the given id.
func (e *Engine) Get(id int64) (core.Budget, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := e.findLocked(id)
	if b == nil {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}
	return copyBudget(b), nil
}

// List returns copies of all budgets in creation order.
func (e *Engine) List() []core.Budget {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]core.Budget, 0, len(e.budgets))
	for _, b := range e.budgets {
		out = append(out, copyBudget(b))
	}
	return out
}

// Update merges the patch, bumps the version and recomputes.
func (e *Engine) Update(ctx context.Context, id int64, patch Patch) (core.Budget, error) {
	e.mu.Lock()

	b := e.findLocked(id)
	if b == nil {
		e.mu.Unlock()
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}

	merged := core.BudgetInput{
		Name:        b.Name,
		Amount:      b.Amount,
		Period:      b.Period,
		Categories:  b.Categories,
		StartDate:   b.StartDate,
		Description: b.Description,
	}
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Amount != nil {
		merged.Amount = *patch.Amount
	}
	if patch.Period != nil {
		merged.Period = *patch.Period
	}
	if patch.Categories != nil {
		merged.Categories = patch.Categories
	}
	if patch.StartDate != nil {
		merged.StartDate = *patch.StartDate
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if err := merged.Validate(); err != nil {
		e.mu.Unlock()
		return core.Budget{}, err
	}

	b.Name = strings.TrimSpace(merged.Name)
	b.Amount = merged.Amount
	b.Period = merged.Period
	b.Categories = cleanCategories(merged.Categories)
	b.Description = strings.TrimSpace(merged.Description)
	if patch.Period != nil || patch.StartDate != nil {
		b.StartDate = merged.StartDate
		b.EndDate = core.PeriodEnd(b.Period, b.StartDate)
	}
	b.Version++

	e.recomputeLocked(ctx, b)
	e.persistLocked(ctx)
	out := copyBudget(b)
	e.mu.Unlock()

	e.emit(ctx, "budget_updated", "Budgets",
		fmt.Sprintf("budget updated: %s", out.Name), "normal")

	return out, nil
}

// Delete removes the budget permanently.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, b := range e.budgets {
		if b.ID == id {
			e.budgets = append(e.budgets[:i], e.budgets[i+1:]...)
			e.persistLocked(ctx)
			return nil
		}
	}
	return fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
}

// Duplicate clones a budget under a fresh identity with derived state reset.
func (e *Engine) Duplicate(ctx context.Context, id int64) (core.Budget, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	src := e.findLocked(id)
	if src == nil {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}

	now := e.now()
	dup := copyBudget(src)
	dup.ID = e.nextID
	dup.Name = src.Name + " (copy)"
	dup.ActualSpent = 0
	dup.Remaining = src.Amount
	dup.Alerts = nil
	dup.CreatedAt = now
	dup.UpdatedAt = now
	dup.Version = 1
	e.nextID++

	b := &dup
	e.budgets = append(e.budgets, b)
	e.recomputeLocked(ctx, b)
	e.persistLocked(ctx)
	return copyBudget(b), nil
}

// Recompute refreshes the derived fields of a single budget from the ledger.
func (e *Engine) Recompute(ctx context.Context, id int64) (core.Budget, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := e.findLocked(id)
	if b == nil {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrNotFound)
	}
	e.recomputeLocked(ctx, b)
	e.persistLocked(ctx)
	return copyBudget(b), nil
}

// RecomputeAll refreshes every budget and forwards the resulting alerts to
// the notification sink.
func (e *Engine) RecomputeAll(ctx context.Context) {
	e.mu.Lock()
	for _, b := range e.budgets {
		e.recomputeLocked(ctx, b)
	}
	e.persistLocked(ctx)
	alerts := make(map[string][]core.Alert, len(e.budgets))
	for _, b := range e.budgets {
		if len(b.Alerts) > 0 {
			alerts[b.Name] = append([]core.Alert(nil), b.Alerts...)
		}
	}
	e.mu.Unlock()

	for name, list := range alerts {
		for _, a := range list {
			e.emit(ctx, "budget_alert", fmt.Sprintf("Budget alert: %s", name), a.Message, a.Severity)
		}
	}
}

// CheckExpired marks budgets whose period has ended and that are not already
// exceeded as expired. It returns the number of budgets newly marked.
func (e *Engine) CheckExpired(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	marked := 0
	for _, b := range e.budgets {
		if b.EndDate.IsZero() || !b.EndDate.Before(now) {
			continue
		}
		if b.Status == core.BudgetExceeded || b.Status == core.BudgetExpired {
			continue
		}
		b.Status = core.BudgetExpired
		b.UpdatedAt = now
		marked++
	}
	if marked > 0 {
		e.persistLocked(ctx)
	}
	return marked
}

// ExportAll returns a portable document with every budget.
func (e *Engine) ExportAll() Export {
	return Export{Budgets: e.List(), ExportedAt: e.now()}
}

// Import appends the budgets from an exported document under fresh
// identities and returns how many were imported.
func (e *Engine) Import(ctx context.Context, doc Export) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for i := range doc.Budgets {
		b := doc.Budgets[i]
		b.ID = e.nextID
		b.CreatedAt = now
		b.UpdatedAt = now
		e.nextID++
		imported := &b
		e.budgets = append(e.budgets, imported)
		e.recomputeLocked(ctx, imported)
	}
	if len(doc.Budgets) > 0 {
		e.persistLocked(ctx)
	}
	return len(doc.Budgets)
}

// recomputeLocked re-derives every dependent field of b. Callers hold e.mu.
func (e *Engine) recomputeLocked(ctx context.Context, b *core.Budget) {
	now := e.now()

	b.ActualSpent = e.ledger.SpentIn(ctx, b.Categories, b.StartDate, b.EndDate)
	b.Remaining = b.Amount - b.ActualSpent
	if b.Remaining < 0 {
		b.Remaining = 0
	}

	b.DaysElapsed = core.DaysElapsed(b.StartDate, now)
	if b.DaysElapsed > 0 {
		b.DailyAverage = b.ActualSpent / float64(b.DaysElapsed)
	} else {
		b.DailyAverage = 0
	}

	b.DaysRemaining = core.DaysRemaining(b.EndDate, now)
	b.ProjectedSpend = b.DailyAverage * float64(b.DaysRemaining)
	b.Variance = b.Remaining - b.ProjectedSpend

	spentPct := 0.0
	if b.Amount > 0 {
		spentPct = b.ActualSpent / b.Amount * 100
	}
	daysPct := 0.0
	if total := b.DaysElapsed + b.DaysRemaining; total > 0 {
		daysPct = float64(b.DaysElapsed) / float64(total) * 100
	}
	b.Status = core.ClassifyBudget(spentPct, daysPct)
	b.Alerts = core.BudgetAlerts(b, now)
	b.UpdatedAt = now
}

func (e *Engine) persistLocked(ctx context.Context) {
	if e.snapshots == nil {
		return
	}
	blob, err := json.Marshal(e.budgets)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal budgets snapshot",
			"component", "budget", "error", err)
		return
	}
	if err := e.snapshots.SaveSnapshot(ctx, snapshotKey, blob); err != nil {
		slog.WarnContext(ctx, "Failed to persist budgets snapshot",
			"component", "budget", "error", err)
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

func (e *Engine) findLocked(id int64) *core.Budget {
	for _, b := range e.budgets {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func cleanCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func copyBudget(b *core.Budget) core.Budget {
	out := *b
	out.Categories = append([]string(nil), b.Categories...)
	out.Alerts = append([]core.Alert(nil), b.Alerts...)
	return out
}
