// internal/domain/account.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account is one ledgered account. It carries no balance field: the
// balance is always the fold-sum of the account's transactions, so the
// ledger and the balance cannot diverge. The owning user is referenced
// by id only.
type Account struct {
	ID        string    `json:"id"`       // 10-digit identifier, unique across all accounts
	Label     string    `json:"label"`    // e.g. "Savings", "Checking"
	OwnerID   string    `json:"owner_id"` // Id of the owning user, no object reference
	CreatedAt time.Time `json:"created_at"`
}

// NewAccount creates a new Account instance.
func NewAccount(id, label, ownerID string, ts time.Time) *Account {
	return &Account{
		ID:        id,
		Label:     label,
		OwnerID:   ownerID,
		CreatedAt: ts,
	}
}

// SummaryLine renders the one-line display form of the account with the
// given balance, e.g. "1234567890 : $100.00 : Savings".
func (a *Account) SummaryLine(balance decimal.Decimal) string {
	return fmt.Sprintf("%s : $%s : %s", a.ID, balance.StringFixed(2), a.Label)
}
