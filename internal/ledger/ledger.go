// Package ledger provides a read-only view over the transaction collection.
package ledger

import (
	"context"
	"log/slog"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
)

// Provider supplies the current transaction sequence, most recent first.
// A nil Provider, or one returning an error, is treated as an empty ledger.
type Provider interface {
	Transactions(ctx context.Context) ([]core.Transaction, error)
}

// Range is an inclusive calendar-date window for sum queries.
type Range struct {
	Start core.Date
	End   core.Date
}

// View is the read-only accessor handed to the engines. It never mutates
// the underlying collection and degrades to zero/empty results when the
// provider is absent or failing.
type View struct {
	provider Provider
}

func NewView(provider Provider) *View {
	return &View{provider: provider}
}

func (v *View) all(ctx context.Context) []core.Transaction {
	if v == nil || v.provider == nil {
		return nil
	}
	txs, err := v.provider.Transactions(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Ledger provider unavailable, treating as empty",
			"component", "ledger", "error", err)
		return nil
	}
	return txs
}

// TotalByKind sums transaction amounts of the given kind, optionally
// restricted to an inclusive date range.
func (v *View) TotalByKind(ctx context.Context, kind core.TransactionKind, r *Range) float64 {
	var total float64
	for _, t := range v.all(ctx) {
		if t.Kind != kind {
			continue
		}
		if r != nil && !core.InWindow(t.Date, r.Start, r.End) {
			continue
		}
		total += t.Amount
	}
	return total
}

// Matching returns transactions satisfying the predicate, preserving the
// provider's ordering.
func (v *View) Matching(ctx context.Context, pred func(core.Transaction) bool) []core.Transaction {
	var out []core.Transaction
	for _, t := range v.all(ctx) {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

// SpentIn sums expense transactions whose category is in the given set and
// whose date falls within [start, end].
func (v *View) SpentIn(ctx context.Context, categories []string, start, end core.Date) float64 {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}

	var total float64
	for _, t := range v.all(ctx) {
		if t.Kind != core.Expense {
			continue
		}
		if _, ok := set[t.Category]; !ok {
			continue
		}
		if !core.InWindow(t.Date, start, end) {
			continue
		}
		total += t.Amount
	}
	return total
}

// Find looks a transaction up by id.
func (v *View) Find(ctx context.Context, id int64) (core.Transaction, bool) {
	for _, t := range v.all(ctx) {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}
