// internal/domain/user.go
package domain

import "time"

// User is a bank customer. The PIN is held only as a one-way digest;
// the plaintext is discarded immediately after digesting. AccountIDs is
// append-only and its order defines the account indices the outside
// world uses ("account #2" is AccountIDs[1]).
type User struct {
	ID         string    `json:"id"` // 6-digit identifier, unique across all users
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	PINDigest  []byte    `json:"-"` // bcrypt digest, never serialized
	AccountIDs []string  `json:"account_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUser creates a new User instance with no accounts attached yet.
func NewUser(id, firstName, lastName string, pinDigest []byte, ts time.Time) *User {
	return &User{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		PINDigest: pinDigest,
		CreatedAt: ts,
	}
}

// NumAccounts returns how many accounts the user holds.
func (u *User) NumAccounts() int {
	return len(u.AccountIDs)
}
