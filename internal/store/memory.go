package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
)

// Memory is an in-memory Store used for tests and for running without a
// database file.
type Memory struct {
	mu        sync.Mutex
	txs       []core.Transaction
	nextID    int64
	snapshots map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		nextID:    1,
		snapshots: make(map[string][]byte),
	}
}

func (m *Memory) AddTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := core.Transaction{
		ID:          m.nextID,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Kind:        in.Kind,
		Category:    in.Category,
	}
	m.nextID++
	// Most recent first, matching the ledger ordering contract.
	m.txs = append([]core.Transaction{tx}, m.txs...)
	return tx, nil
}

func (m *Memory) UpdateTransaction(_ context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.txs {
		if tx.ID == id {
			tx.Description = in.Description
			tx.Amount = in.Amount
			tx.Date = in.Date
			tx.Kind = in.Kind
			tx.Category = in.Category
			m.txs[i] = tx
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
}

func (m *Memory) DeleteTransaction(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.txs {
		if tx.ID == id {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
}

func (m *Memory) Transactions(_ context.Context) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.txs...), nil
}

func (m *Memory) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.snapshots[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), blob...), nil
}

func (m *Memory) SaveSnapshot(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[key] = append([]byte(nil), blob...)
	return nil
}

func (m *Memory) Close() error { return nil }
