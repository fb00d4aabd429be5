// internal/repository/memory/transaction_mem.go
package memory

import (
	"context"

	"minibank/internal/domain"
	"minibank/internal/repository"

	"github.com/shopspring/decimal"
)

// TransactionRepository implements repository.TransactionRepository
// over memdb. Entries are keyed by their uuid and kept in one bucket
// whose insertion order is the global append order; per-account ledger
// order falls out of filtering it.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// Append adds a ledger entry using the provided Executor.
func (r *TransactionRepository) Append(ctx context.Context, q repository.Executor, transaction *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.Put(repository.BucketTransactions, transaction.ID.String(), *transaction)
	return nil
}

// ByAccountID retrieves an account's ledger entries in append order.
func (r *TransactionRepository) ByAccountID(ctx context.Context, q repository.Executor, accountID string) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := []domain.Transaction{}
	for _, v := range q.List(repository.BucketTransactions) {
		entry := v.(domain.Transaction)
		if entry.AccountID == accountID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// SumByAccountID folds the signed amounts of an account's ledger.
func (r *TransactionRepository) SumByAccountID(ctx context.Context, q repository.Executor, accountID string) (decimal.Decimal, error) {
	entries, err := r.ByAccountID(ctx, q, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, entry := range entries {
		sum = sum.Add(entry.Amount)
	}
	return sum, nil
}
