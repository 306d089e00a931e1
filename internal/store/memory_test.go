package store

import (
	"context"
	"errors"
	"testing"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
)

func validInput(desc string, amount float64) core.TransactionInput {
	return core.TransactionInput{
		Description: desc,
		Amount:      amount,
		Date:        core.NewDate(2025, 3, 10),
		Kind:        core.Expense,
		Category:    "food",
	}
}

func TestMemoryTransactionCRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first, err := m.AddTransaction(ctx, validInput("coffee", 3.50))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := m.AddTransaction(ctx, validInput("lunch", 12))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must be unique")
	}

	txs, err := m.Transactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != second.ID {
		t.Fatalf("expected most recent first, got %+v", txs)
	}

	updated, err := m.UpdateTransaction(ctx, first.ID, validInput("espresso", 4))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "espresso" || updated.Amount != 4 {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := m.DeleteTransaction(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	txs, _ = m.Transactions(ctx)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction after delete, got %d", len(txs))
	}
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.UpdateTransaction(ctx, 99, validInput("x", 1)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := m.DeleteTransaction(ctx, 99); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	bad := validInput("", 1)
	if _, err := m.AddTransaction(ctx, bad); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMemorySnapshots(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// Absent snapshot is (nil, nil), not an error.
	blob, err := m.LoadSnapshot(ctx, "budgets")
	if err != nil || blob != nil {
		t.Fatalf("expected empty load, got %v / %v", blob, err)
	}

	if err := m.SaveSnapshot(ctx, "budgets", []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	blob, err = m.LoadSnapshot(ctx, "budgets")
	if err != nil || string(blob) != `[{"id":1}]` {
		t.Fatalf("load = %s / %v", blob, err)
	}

	// Overwrite replaces the previous blob.
	if err := m.SaveSnapshot(ctx, "budgets", []byte(`[]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	blob, _ = m.LoadSnapshot(ctx, "budgets")
	if string(blob) != `[]` {
		t.Fatalf("overwrite failed, got %s", blob)
	}
}
