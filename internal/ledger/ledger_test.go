package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
)

type staticProvider struct {
	txs []core.Transaction
	err error
}

func (p staticProvider) Transactions(context.Context) ([]core.Transaction, error) {
	return p.txs, p.err
}

func fixtures() []core.Transaction {
	return []core.Transaction{
		{ID: 4, Description: "salary", Amount: 2000, Date: core.NewDate(2025, 3, 25), Kind: core.Income, Category: "salary"},
		{ID: 3, Description: "rent", Amount: 800, Date: core.NewDate(2025, 3, 5), Kind: core.Expense, Category: "housing"},
		{ID: 2, Description: "groceries", Amount: 120, Date: core.NewDate(2025, 3, 10), Kind: core.Expense, Category: "food"},
		{ID: 1, Description: "dinner", Amount: 45, Date: core.NewDate(2025, 2, 28), Kind: core.Expense, Category: "food"},
	}
}

func TestTotalByKind(t *testing.T) {
	ctx := context.Background()
	v := NewView(staticProvider{txs: fixtures()})

	if got := v.TotalByKind(ctx, core.Income, nil); got != 2000 {
		t.Fatalf("income = %v", got)
	}
	if got := v.TotalByKind(ctx, core.Expense, nil); got != 965 {
		t.Fatalf("expenses = %v", got)
	}

	r := &Range{Start: core.NewDate(2025, 3, 1), End: core.NewDate(2025, 3, 31)}
	if got := v.TotalByKind(ctx, core.Expense, r); got != 920 {
		t.Fatalf("march expenses = %v", got)
	}
}

func TestSpentIn(t *testing.T) {
	ctx := context.Background()
	v := NewView(staticProvider{txs: fixtures()})

	start, end := core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 31)
	cases := []struct {
		name       string
		categories []string
		want       float64
	}{
		{"single category", []string{"food"}, 120},
		{"multiple categories", []string{"food", "housing"}, 920},
		{"income ignored", []string{"salary"}, 0},
		{"unknown category", []string{"travel"}, 0},
		{"no categories", nil, 0},
	}
	for _, tc := range cases {
		if got := v.SpentIn(ctx, tc.categories, start, end); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFindAndMatching(t *testing.T) {
	ctx := context.Background()
	v := NewView(staticProvider{txs: fixtures()})

	tx, ok := v.Find(ctx, 3)
	if !ok || tx.Description != "rent" {
		t.Fatalf("find = %+v / %v", tx, ok)
	}
	if _, ok := v.Find(ctx, 99); ok {
		t.Fatalf("expected not found")
	}

	food := v.Matching(ctx, func(tx core.Transaction) bool { return tx.Category == "food" })
	if len(food) != 2 || food[0].ID != 2 {
		t.Fatalf("matching preserved ordering? got %+v", food)
	}
}

func TestViewDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	var nilView *View
	if got := nilView.TotalByKind(ctx, core.Expense, nil); got != 0 {
		t.Fatalf("nil view total = %v", got)
	}

	noProvider := NewView(nil)
	if got := noProvider.TotalByKind(ctx, core.Expense, nil); got != 0 {
		t.Fatalf("nil provider total = %v", got)
	}

	failing := NewView(staticProvider{err: errors.New("db gone")})
	if got := failing.SpentIn(ctx, []string{"food"}, core.NewDate(2025, 3, 1), core.NewDate(2025, 3, 31)); got != 0 {
		t.Fatalf("failing provider spent = %v", got)
	}
	if _, ok := failing.Find(ctx, 1); ok {
		t.Fatalf("failing provider should find nothing")
	}
}
