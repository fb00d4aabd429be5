// internal/repository/account_repo.go
package repository

import (
	"context"

	"minibank/internal/domain"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	// CreateAccount adds a new account to the store's global account
	// index using the provided Executor. It does not attach the account
	// to any user; the caller must also call UserRepository.AttachAccount.
	CreateAccount(ctx context.Context, q Executor, account *domain.Account) error
	// AccountByID retrieves an account by its identifier using the provided Executor.
	AccountByID(ctx context.Context, q Executor, id string) (*domain.Account, error)
}
