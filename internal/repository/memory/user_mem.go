// internal/repository/memory/user_mem.go
package memory

import (
	"context"
	"fmt"

	"minibank/internal/domain"
	"minibank/internal/repository"
	"minibank/internal/util"
)

// UserRepository implements repository.UserRepository over memdb.
// It is stateless; all state lives in the Executor passed to each
// method. Users are stored as value copies so a rolled-back transaction
// leaves no aliasing behind.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user using the provided Executor.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.Executor, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := q.Get(repository.BucketUsers, user.ID); ok {
		return fmt.Errorf("user %s: %w", user.ID, util.ErrDuplicateEntry)
	}
	q.Put(repository.BucketUsers, user.ID, *user)
	return nil
}

// UserByID retrieves a user by identifier using the provided Executor.
func (r *UserRepository) UserByID(ctx context.Context, q repository.Executor, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := q.Get(repository.BucketUsers, id)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, util.ErrNotFound)
	}
	user := v.(domain.User)
	// Copy the slice so callers cannot mutate stored state.
	user.AccountIDs = append([]string(nil), user.AccountIDs...)
	return &user, nil
}

// AttachAccount appends accountID to the user's ordered account list.
func (r *UserRepository) AttachAccount(ctx context.Context, q repository.Executor, userID, accountID string) error {
	user, err := r.UserByID(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("attach account: %w", err)
	}
	user.AccountIDs = append(user.AccountIDs, accountID)
	q.Put(repository.BucketUsers, user.ID, *user)
	return nil
}
