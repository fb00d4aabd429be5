// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"minibank/internal/domain"

	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for ledger entry operations.
// The ledger is append-only: there is no update or delete.
type TransactionRepository interface {
	// Append adds a new ledger entry using the provided Executor.
	// No amount validation happens here; callers enforce the balance
	// invariant before appending.
	Append(ctx context.Context, q Executor, transaction *domain.Transaction) error
	// ByAccountID retrieves an account's ledger entries in append order.
	ByAccountID(ctx context.Context, q Executor, accountID string) ([]domain.Transaction, error)
	// SumByAccountID folds the signed amounts of an account's ledger.
	// This fold-sum is the account's balance; it is derived here and
	// stored nowhere else.
	SumByAccountID(ctx context.Context, q Executor, accountID string) (decimal.Decimal, error)
}
