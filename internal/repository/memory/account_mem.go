// internal/repository/memory/account_mem.go
package memory

import (
	"context"
	"fmt"

	"minibank/internal/domain"
	"minibank/internal/repository"
	"minibank/internal/util"
)

// AccountRepository implements repository.AccountRepository over memdb.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository() repository.AccountRepository {
	return &AccountRepository{}
}

// CreateAccount inserts a new account into the global account index
// using the provided Executor.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.Executor, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := q.Get(repository.BucketAccounts, account.ID); ok {
		return fmt.Errorf("account %s: %w", account.ID, util.ErrDuplicateEntry)
	}
	q.Put(repository.BucketAccounts, account.ID, *account)
	return nil
}

// AccountByID retrieves an account by identifier using the provided Executor.
func (r *AccountRepository) AccountByID(ctx context.Context, q repository.Executor, id string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := q.Get(repository.BucketAccounts, id)
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, util.ErrNotFound)
	}
	account := v.(domain.Account)
	return &account, nil
}
