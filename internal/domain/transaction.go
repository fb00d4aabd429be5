// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Transaction is a single immutable ledger entry for one account.
// Sign convention: positive amounts are credits (deposits, incoming
// transfer legs), negative amounts are debits (withdrawals, outgoing
// transfer legs). Entries are never edited or removed once appended.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	AccountID string          `json:"account_id"` // Account whose ledger holds this entry
	Amount    decimal.Decimal `json:"amount"`     // Signed amount
	Memo      string          `json:"memo"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTransaction creates a new Transaction instance.
// The timestamp is supplied by the caller so the clock stays an
// injected dependency of the core.
func NewTransaction(accountID string, amount decimal.Decimal, memo string, ts time.Time) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Memo:      memo,
		Timestamp: ts,
	}
}
