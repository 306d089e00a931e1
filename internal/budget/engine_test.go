package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
	"github.com/abdulaziz1076-hash/fifi/internal/ledger"
	"github.com/abdulaziz1076-hash/fifi/internal/notify"
	"github.com/abdulaziz1076-hash/fifi/internal/store"
)

type stubLedger struct {
	txs []core.Transaction
}

func (s *stubLedger) Transactions(context.Context) ([]core.Transaction, error) {
	return s.txs, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
}

func expense(id int64, amount float64, category string, d core.Date) core.Transaction {
	return core.Transaction{ID: id, Description: "tx", Amount: amount, Date: d, Kind: core.Expense, Category: category}
}

func newTestEngine(txs []core.Transaction) (*Engine, *notify.MemorySink, *store.Memory) {
	sink := &notify.MemorySink{}
	mem := store.NewMemory()
	view := ledger.NewView(&stubLedger{txs: txs})
	return NewEngine(view, mem, sink, fixedNow), sink, mem
}

func marchBudget() core.BudgetInput {
	return core.BudgetInput{
		Name:       "food",
		Amount:     1000,
		Period:     core.Monthly,
		Categories: []string{"food"},
		StartDate:  core.NewDate(2025, 3, 1),
	}
}

func TestCreateDerivesFields(t *testing.T) {
	ctx := context.Background()
	e, sink, _ := newTestEngine([]core.Transaction{
		expense(1, 850, "food", core.NewDate(2025, 3, 10)),
	})

	b, err := e.Create(ctx, marchBudget())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if b.ID != 1 || b.Version != 1 {
		t.Fatalf("identity: id=%d version=%d", b.ID, b.Version)
	}
	if !b.EndDate.SameDay(core.NewDate(2025, 4, 1)) {
		t.Fatalf("end date = %v", b.EndDate)
	}
	if b.DaysElapsed != 15 || b.DaysRemaining != 17 {
		t.Fatalf("days = %d/%d", b.DaysElapsed, b.DaysRemaining)
	}
	// 1000 over the full 32-day span seen at creation.
	if b.DailyBudget != 31.25 {
		t.Fatalf("daily budget = %v", b.DailyBudget)
	}
	if b.ActualSpent != 850 || b.Remaining != 150 {
		t.Fatalf("spent/remaining = %v/%v", b.ActualSpent, b.Remaining)
	}
	if b.Status != core.BudgetWarning {
		t.Fatalf("status = %s", b.Status)
	}

	if got := sink.ByKind("budget_created"); len(got) != 1 {
		t.Fatalf("expected one budget_created event, got %d", len(got))
	}
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(nil)

	b, err := e.Create(ctx, core.BudgetInput{Name: "misc", Amount: 100, Categories: []string{"misc"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Period != core.Monthly {
		t.Fatalf("period default = %s", b.Period)
	}
	if !b.StartDate.SameDay(core.NewDate(2025, 3, 15)) {
		t.Fatalf("start default = %v", b.StartDate)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(nil)

	if _, err := e.Create(ctx, core.BudgetInput{Name: "x", Amount: 100, Categories: []string{"a"}}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRemainingClampsAtZero(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine([]core.Transaction{
		expense(1, 1200, "food", core.NewDate(2025, 3, 10)),
	})

	b, err := e.Create(ctx, marchBudget())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Remaining != 0 {
		t.Fatalf("remaining = %v, want 0", b.Remaining)
	}
	if b.Status != core.BudgetExceeded {
		t.Fatalf("status = %s", b.Status)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine([]core.Transaction{
		expense(1, 300, "food", core.NewDate(2025, 3, 5)),
	})

	created, _ := e.Create(ctx, marchBudget())

	e.RecomputeAll(ctx)
	e.RecomputeAll(ctx)

	after, err := e.Get(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.ActualSpent != created.ActualSpent ||
		after.Remaining != created.Remaining ||
		after.Status != created.Status ||
		after.DailyBudget != created.DailyBudget {
		t.Fatalf("derived fields drifted: %+v vs %+v", after, created)
	}
	if len(after.Alerts) != len(created.Alerts) {
		t.Fatalf("alerts accumulated: %d vs %d", len(after.Alerts), len(created.Alerts))
	}
}

func TestUpdateBumpsVersion(t *testing.T) {
	ctx := context.Background()
	e, sink, _ := newTestEngine(nil)

	b, _ := e.Create(ctx, marchBudget())
	sink.Reset()

	amount := 2000.0
	updated, err := e.Update(ctx, b.ID, Patch{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != 2 || updated.Amount != 2000 {
		t.Fatalf("update: version=%d amount=%v", updated.Version, updated.Amount)
	}
	// The daily allowance stays as fixed at creation.
	if updated.DailyBudget != b.DailyBudget {
		t.Fatalf("daily budget changed on update: %v", updated.DailyBudget)
	}
	if got := sink.ByKind("budget_updated"); len(got) != 1 {
		t.Fatalf("expected one budget_updated event, got %d", len(got))
	}

	bad := 0.0
	if _, err := e.Update(ctx, b.ID, Patch{Amount: &bad}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdatePeriodRecomputesEndDate(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(nil)

	b, _ := e.Create(ctx, marchBudget())

	weekly := core.Weekly
	updated, err := e.Update(ctx, b.ID, Patch{Period: &weekly})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.EndDate.SameDay(core.NewDate(2025, 3, 8)) {
		t.Fatalf("end date = %v", updated.EndDate)
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(nil)

	b, _ := e.Create(ctx, marchBudget())
	if err := e.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.Get(b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := e.Delete(ctx, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestDuplicate(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(nil)

	b, _ := e.Create(ctx, marchBudget())
	dup, err := e.Duplicate(ctx, b.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == b.ID {
		t.Fatalf("duplicate kept the original id")
	}
	if dup.Name != "food (copy)" {
		t.Fatalf("duplicate name = %q", dup.Name)
	}
	if dup.Version != 1 {
		t.Fatalf("duplicate version = %d", dup.Version)
	}
	if len(e.List()) != 2 {
		t.Fatalf("expected 2 budgets")
	}
}

func TestCheckExpired(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(nil)

	// Daily budget from March 1 ended on March 2, well before the fixed now.
	stale, _ := e.Create(ctx, core.BudgetInput{
		Name:       "stale",
		Amount:     50,
		Period:     core.Daily,
		Categories: []string{"misc"},
		StartDate:  core.NewDate(2025, 3, 1),
	})
	active, _ := e.Create(ctx, marchBudget())

	if marked := e.CheckExpired(ctx); marked != 1 {
		t.Fatalf("marked = %d, want 1", marked)
	}
	got, _ := e.Get(stale.ID)
	if got.Status != core.BudgetExpired {
		t.Fatalf("stale status = %s", got.Status)
	}
	stillActive, _ := e.Get(active.ID)
	if stillActive.Status == core.BudgetExpired {
		t.Fatalf("active budget must not expire")
	}

	// Second pass is a no-op.
	if marked := e.CheckExpired(ctx); marked != 0 {
		t.Fatalf("second pass marked = %d", marked)
	}
}

func TestExceededBudgetNeverExpires(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine([]core.Transaction{
		expense(1, 100, "misc", core.NewDate(2025, 3, 1)),
	})

	b, _ := e.Create(ctx, core.BudgetInput{
		Name:       "blown",
		Amount:     50,
		Period:     core.Daily,
		Categories: []string{"misc"},
		StartDate:  core.NewDate(2025, 3, 1),
	})
	if b.Status != core.BudgetExceeded {
		t.Fatalf("precondition: status = %s", b.Status)
	}

	if marked := e.CheckExpired(ctx); marked != 0 {
		t.Fatalf("exceeded budget was marked expired")
	}
	got, _ := e.Get(b.ID)
	if got.Status != core.BudgetExceeded {
		t.Fatalf("status = %s, want exceeded", got.Status)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	sink := &notify.MemorySink{}
	mem := store.NewMemory()
	view := ledger.NewView(&stubLedger{})

	first := NewEngine(view, mem, sink, fixedNow)
	created, err := first.Create(ctx, marchBudget())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	second := NewEngine(view, mem, sink, fixedNow)
	second.Restore(ctx)

	restored, err := second.Get(created.ID)
	if err != nil {
		t.Fatalf("restore lost the budget: %v", err)
	}
	if restored.Name != "food" || restored.Version != created.Version {
		t.Fatalf("restored = %+v", restored)
	}

	// Fresh ids continue after the restored maximum.
	next, _ := second.Create(ctx, core.BudgetInput{Name: "misc", Amount: 100, Categories: []string{"misc"}})
	if next.ID != created.ID+1 {
		t.Fatalf("next id = %d, want %d", next.ID, created.ID+1)
	}
}

func TestRestoreDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	if err := mem.SaveSnapshot(ctx, "budgets", []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	e := NewEngine(ledger.NewView(nil), mem, nil, fixedNow)
	e.Restore(ctx)

	if got := e.List(); len(got) != 0 {
		t.Fatalf("expected empty collection, got %d", len(got))
	}
	// The engine keeps working after the reset.
	if _, err := e.Create(ctx, marchBudget()); err != nil {
		t.Fatalf("create after reset: %v", err)
	}
}

func TestRecomputeAllForwardsAlerts(t *testing.T) {
	ctx := context.Background()
	e, sink, _ := newTestEngine([]core.Transaction{
		expense(1, 850, "food", core.NewDate(2025, 3, 10)),
	})

	if _, err := e.Create(ctx, marchBudget()); err != nil {
		t.Fatalf("create: %v", err)
	}
	sink.Reset()

	e.RecomputeAll(ctx)

	if got := sink.ByKind("budget_alert"); len(got) == 0 {
		t.Fatalf("expected budget_alert events")
	}
}

func TestNilCollaborators(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(nil, nil, nil, fixedNow)

	b, err := e.Create(ctx, marchBudget())
	if err != nil {
		t.Fatalf("create without collaborators: %v", err)
	}
	if b.ActualSpent != 0 {
		t.Fatalf("spent = %v without ledger", b.ActualSpent)
	}
	e.RecomputeAll(ctx)
	e.Restore(ctx)
}
