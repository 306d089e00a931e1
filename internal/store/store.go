// Package store provides the persistence backends: snapshot blobs for the
// budget/goal collections and the transaction ledger itself.
package store

import (
	"context"

	"github.com/abdulaziz1076-hash/fifi/internal/core"
)

// SnapshotStore persists opaque JSON blobs keyed by collection name.
// LoadSnapshot returns (nil, nil) when no blob exists for the key; callers
// treat that, and any error, as "no data" rather than a failure.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
	SaveSnapshot(ctx context.Context, key string, blob []byte) error
}

// TransactionStore owns the transaction ledger. Transactions returns the
// collection most recent first.
type TransactionStore interface {
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Transactions(ctx context.Context) ([]core.Transaction, error)
}

// Store is the full persistence surface wired into the application.
type Store interface {
	SnapshotStore
	TransactionStore
	Close() error
}
