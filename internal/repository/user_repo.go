// internal/repository/user_repo.go
package repository

import (
	"context"

	"minibank/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user to the store using the provided Executor.
	CreateUser(ctx context.Context, q Executor, user *domain.User) error
	// UserByID retrieves a user by their identifier using the provided Executor.
	UserByID(ctx context.Context, q Executor, id string) (*domain.User, error)
	// AttachAccount appends an account id to the user's ordered account list.
	// It does not register the account itself; see AccountRepository.
	AttachAccount(ctx context.Context, q Executor, userID, accountID string) error
}
