// pkg/memdb/transaction_manager.go
package memdb

import (
	"context"
	"fmt"
)

// TxController defines methods for controlling a store transaction.
// *Tx implicitly implements this interface.
type TxController interface {
	Commit() error
	Rollback() error
}

// TxBeginner defines the interface for beginning transactions.
// *DB implements this.
type TxBeginner interface {
	BeginTx(ctx context.Context) (*Tx, error)
}

// Function types for injecting transaction control into services.
type (
	BeginTxFunc    func(ctx context.Context, db TxBeginner) (TxController, error)
	CommitTxFunc   func(tx TxController) error
	RollbackTxFunc func(tx TxController)
)

// Tx is an in-flight store transaction. It holds the DB's mutex for its
// whole lifetime and stages writes in an overlay; Commit applies the
// overlay to the base store, Rollback discards it. Reads observe staged
// writes first and fall through to the base state.
//
// While a Tx is open the DB's autocommit methods block, so a service
// must operate either through the Tx or through the DB, never both.
type Tx struct {
	db     *DB
	staged map[string]*bucket
	done   bool
}

// BeginTx starts a new store transaction, taking the store-wide lock.
func (d *DB) BeginTx(ctx context.Context) (*Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	return &Tx{db: d, staged: make(map[string]*bucket)}, nil
}

// Get returns the value under key, preferring staged writes.
func (t *Tx) Get(name, key string) (any, bool) {
	if b, ok := t.staged[name]; ok {
		if v, ok := b.items[key]; ok {
			return v, true
		}
	}
	return t.db.get(name, key)
}

// Put stages value under key; visible to this Tx immediately, to the
// base store only after Commit.
func (t *Tx) Put(name, key string, value any) {
	b, ok := t.staged[name]
	if !ok {
		b = newBucket()
		t.staged[name] = b
	}
	b.put(key, value)
}

// List returns base values in insertion order with staged overrides
// applied, followed by staged-new entries in staging order.
func (t *Tx) List(name string) []any {
	staged := t.staged[name]
	base, ok := t.db.buckets[name]

	var out []any
	seen := make(map[string]bool)
	if ok {
		for _, key := range base.order {
			seen[key] = true
			if staged != nil {
				if v, sok := staged.items[key]; sok {
					out = append(out, v)
					continue
				}
			}
			out = append(out, base.items[key])
		}
	}
	if staged != nil {
		for _, key := range staged.order {
			if !seen[key] {
				out = append(out, staged.items[key])
			}
		}
	}
	return out
}

// Len returns the entry count as seen by this Tx.
func (t *Tx) Len(name string) int {
	n := 0
	if base, ok := t.db.buckets[name]; ok {
		n = len(base.items)
	}
	if staged, ok := t.staged[name]; ok {
		for _, key := range staged.order {
			if _, inBase := t.db.get(name, key); !inBase {
				n++
			}
		}
	}
	return n
}

// Commit applies all staged writes to the base store and releases the
// store-wide lock.
func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	for name, staged := range t.staged {
		for _, key := range staged.order {
			t.db.put(name, key, staged.items[key])
		}
	}
	t.db.mu.Unlock()
	return nil
}

// Rollback discards all staged writes and releases the store-wide lock.
func (t *Tx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.staged = nil
	t.db.mu.Unlock()
	return nil
}

// BeginTx starts a new store transaction.
// It returns a TxController interface, which *Tx implements.
func BeginTx(ctx context.Context, db TxBeginner) (TxController, error) {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction. It is safe to defer after a
// successful commit; the resulting ErrTxDone is swallowed.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && err != ErrTxDone {
		fmt.Printf("Error rolling back transaction: %v\n", err)
	}
}
