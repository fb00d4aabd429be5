// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrIndexOutOfRange      = errors.New("account index out of range")
	ErrAuthenticationFailed = errors.New("authentication failed") // Unknown id and wrong PIN are indistinguishable
	ErrSameAccountTransfer  = errors.New("cannot transfer to the same account")
	ErrDuplicateEntry       = errors.New("duplicate entry")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
