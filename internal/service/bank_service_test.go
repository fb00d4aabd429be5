// internal/service/bank_service_test.go
package service_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"minibank/internal/idgen"
	"minibank/internal/repository/memory"
	"minibank/internal/service"
	"minibank/internal/util"
	"minibank/pkg/memdb"
)

var testClock = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

// newTestService wires a BankService against a fresh in-memory store
// with a deterministic rng and a fixed clock.
func newTestService(t *testing.T) service.BankService {
	t.Helper()
	db := memdb.New()
	rng := rand.New(rand.NewPCG(42, 7))
	return service.NewBankService(
		db,
		db,
		memory.NewUserRepository(),
		memory.NewAccountRepository(),
		memory.NewTransactionRepository(),
		memdb.BeginTx,
		memdb.CommitTx,
		memdb.RollbackTx,
		idgen.New(6, rng),
		idgen.New(10, rng),
		bcrypt.MinCost,
		func() time.Time { return testClock },
	)
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateUserProvisionsDefaultAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, account, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)

	assert.Len(t, user.ID, 6)
	assert.Equal(t, "John", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.Nil(t, user.PINDigest, "digest must not leave the core")

	require.Equal(t, 1, user.NumAccounts())
	assert.Len(t, account.ID, 10)
	assert.Equal(t, service.DefaultAccountLabel, account.Label)
	assert.Equal(t, user.ID, account.OwnerID)
	assert.Equal(t, []string{account.ID}, user.AccountIDs)

	balance, err := svc.Balance(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	lines, err := svc.AccountsSummary(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, fmt.Sprintf("%s : $0.00 : Savings", account.ID), lines[0])
}

func TestIdentifierUniquenessWithinClass(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	userIDs := make(map[string]bool)
	accountIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		user, account, err := svc.CreateUser(ctx, "First", "Last", "0000")
		require.NoError(t, err)
		require.False(t, userIDs[user.ID], "user id %s issued twice", user.ID)
		require.False(t, accountIDs[account.ID], "account id %s issued twice", account.ID)
		userIDs[user.ID] = true
		accountIDs[account.ID] = true
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)

	t.Run("correct PIN", func(t *testing.T) {
		got, err := svc.Login(ctx, user.ID, "1234")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "John", got.FirstName)
		assert.Nil(t, got.PINDigest)
	})

	t.Run("wrong PIN", func(t *testing.T) {
		_, err := svc.Login(ctx, user.ID, "4321")
		assert.ErrorIs(t, err, util.ErrAuthenticationFailed)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Login(ctx, "000000", "1234")
		assert.ErrorIs(t, err, util.ErrAuthenticationFailed)
	})

	t.Run("failure causes are indistinguishable", func(t *testing.T) {
		_, wrongPIN := svc.Login(ctx, user.ID, "4321")
		_, unknownID := svc.Login(ctx, "000000", "1234")
		assert.Equal(t, wrongPIN.Error(), unknownID.Error())
	})
}

func TestBalanceIsFoldSumOfLedger(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)

	amounts := []string{"100.00", "2.50", "-40.25", "7.75", "-10.00"}
	expected := decimal.Zero
	for _, raw := range amounts {
		amount := mustDecimal(raw)
		expected = expected.Add(amount)
		if amount.IsPositive() {
			_, _, err = svc.Deposit(ctx, user.ID, 0, amount, "credit")
		} else {
			_, _, err = svc.Withdraw(ctx, user.ID, 0, amount.Neg(), "debit")
		}
		require.NoError(t, err)
	}

	balance, err := svc.Balance(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.True(t, expected.Equal(balance), "want %s, got %s", expected, balance)
	assert.False(t, balance.IsNegative())

	// The history folds to the same value and is in append order.
	entries, err := svc.History(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, len(amounts))
	fold := decimal.Zero
	for i, entry := range entries {
		assert.True(t, mustDecimal(amounts[i]).Equal(entry.Amount))
		assert.Equal(t, testClock, entry.Timestamp)
		fold = fold.Add(entry.Amount)
	}
	assert.True(t, fold.Equal(balance))
}

func TestDepositRejectsNonPositiveAmounts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)

	for _, raw := range []string{"0", "-1", "-0.01"} {
		_, _, err := svc.Deposit(ctx, user.ID, 0, mustDecimal(raw), "bad")
		assert.ErrorIs(t, err, util.ErrInvalidAmount, "amount %s", raw)
	}

	entries, err := svc.History(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed deposits must not touch the ledger")
}

func TestWithdrawGuards(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)
	_, _, err = svc.Deposit(ctx, user.ID, 0, mustDecimal("100.00"), "init")
	require.NoError(t, err)

	t.Run("non-positive amount", func(t *testing.T) {
		for _, raw := range []string{"0", "-5"} {
			_, _, err := svc.Withdraw(ctx, user.ID, 0, mustDecimal(raw), "bad")
			assert.ErrorIs(t, err, util.ErrInvalidAmount)
		}
	})

	t.Run("insufficient funds", func(t *testing.T) {
		_, _, err := svc.Withdraw(ctx, user.ID, 0, mustDecimal("150.00"), "too much")
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
	})

	t.Run("ledger untouched by failures", func(t *testing.T) {
		entries, err := svc.History(ctx, user.ID, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		balance, err := svc.Balance(ctx, user.ID, 0)
		require.NoError(t, err)
		assert.True(t, mustDecimal("100.00").Equal(balance))
	})

	t.Run("exact balance may be withdrawn", func(t *testing.T) {
		_, balance, err := svc.Withdraw(ctx, user.ID, 0, mustDecimal("100.00"), "all of it")
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})
}

func TestAccountIndexOutOfRange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)

	for _, index := range []int{-1, 1, 5} {
		_, _, err := svc.Deposit(ctx, user.ID, index, mustDecimal("10.00"), "memo")
		assert.ErrorIs(t, err, util.ErrIndexOutOfRange, "index %d", index)

		_, err = svc.Balance(ctx, user.ID, index)
		assert.ErrorIs(t, err, util.ErrIndexOutOfRange, "index %d", index)
	}
}

func TestOpenAccountKeepsStableOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, savings, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)

	checking, err := svc.OpenAccount(ctx, user.ID, "Checking")
	require.NoError(t, err)
	assert.NotEqual(t, savings.ID, checking.ID)

	infos, err := svc.Accounts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, 0, infos[0].Index)
	assert.Equal(t, "Savings", infos[0].Label)
	assert.Equal(t, savings.ID, infos[0].AccountID)
	assert.Equal(t, 1, infos[1].Index)
	assert.Equal(t, "Checking", infos[1].Label)
	assert.Equal(t, checking.ID, infos[1].AccountID)

	n, err := svc.NumAccounts(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenAccountUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.OpenAccount(context.Background(), "000000", "Checking")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestTransfer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, savings, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)
	checking, err := svc.OpenAccount(ctx, user.ID, "Checking")
	require.NoError(t, err)
	_, _, err = svc.Deposit(ctx, user.ID, 0, mustDecimal("100.00"), "init")
	require.NoError(t, err)

	t.Run("moves funds and conserves the pair sum", func(t *testing.T) {
		sourceBalance, destinationBalance, err := svc.Transfer(ctx, user.ID, 0, 1, mustDecimal("40.00"))
		require.NoError(t, err)
		assert.True(t, mustDecimal("60.00").Equal(sourceBalance))
		assert.True(t, mustDecimal("40.00").Equal(destinationBalance))
		assert.True(t, mustDecimal("100.00").Equal(sourceBalance.Add(destinationBalance)))
	})

	t.Run("exactly two legs with counterparty memos", func(t *testing.T) {
		savingsEntries, err := svc.History(ctx, user.ID, 0)
		require.NoError(t, err)
		require.Len(t, savingsEntries, 2) // init deposit + debit leg
		debit := savingsEntries[1]
		assert.True(t, mustDecimal("-40.00").Equal(debit.Amount))
		assert.Equal(t, fmt.Sprintf("Transfer to account %s", checking.ID), debit.Memo)

		checkingEntries, err := svc.History(ctx, user.ID, 1)
		require.NoError(t, err)
		require.Len(t, checkingEntries, 1)
		credit := checkingEntries[0]
		assert.True(t, mustDecimal("40.00").Equal(credit.Amount))
		assert.Equal(t, fmt.Sprintf("Transfer from account %s", savings.ID), credit.Memo)
		assert.Equal(t, debit.Timestamp, credit.Timestamp)
	})

	t.Run("insufficient funds leaves both ledgers untouched", func(t *testing.T) {
		_, _, err := svc.Transfer(ctx, user.ID, 0, 1, mustDecimal("1000.00"))
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)

		savingsEntries, _ := svc.History(ctx, user.ID, 0)
		checkingEntries, _ := svc.History(ctx, user.ID, 1)
		assert.Len(t, savingsEntries, 2)
		assert.Len(t, checkingEntries, 1)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, _, err := svc.Transfer(ctx, user.ID, 0, 1, decimal.Zero)
		assert.ErrorIs(t, err, util.ErrInvalidAmount)
	})

	t.Run("same account", func(t *testing.T) {
		_, _, err := svc.Transfer(ctx, user.ID, 0, 0, mustDecimal("5.00"))
		assert.ErrorIs(t, err, util.ErrSameAccountTransfer)
	})

	t.Run("bad index", func(t *testing.T) {
		_, _, err := svc.Transfer(ctx, user.ID, 0, 7, mustDecimal("5.00"))
		assert.ErrorIs(t, err, util.ErrIndexOutOfRange)
	})
}

func TestConcurrentTransfersConserveTotal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)
	_, err = svc.OpenAccount(ctx, user.ID, "Checking")
	require.NoError(t, err)
	_, _, err = svc.Deposit(ctx, user.ID, 0, mustDecimal("1000.00"), "init")
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := 0, 1
			if i%2 == 1 {
				from, to = 1, 0
			}
			for j := 0; j < 20; j++ {
				// Insufficient funds is a legal outcome under contention.
				_, _, err := svc.Transfer(ctx, user.ID, from, to, mustDecimal("3.00"))
				if err != nil {
					require.ErrorIs(t, err, util.ErrInsufficientFunds)
				}
			}
		}(i)
	}
	wg.Wait()

	savingsBalance, err := svc.Balance(ctx, user.ID, 0)
	require.NoError(t, err)
	checkingBalance, err := svc.Balance(ctx, user.ID, 1)
	require.NoError(t, err)

	assert.True(t, mustDecimal("1000.00").Equal(savingsBalance.Add(checkingBalance)),
		"total changed: savings=%s checking=%s", savingsBalance, checkingBalance)
	assert.False(t, savingsBalance.IsNegative())
	assert.False(t, checkingBalance.IsNegative())

	// Legs always come in pairs.
	savingsEntries, err := svc.History(ctx, user.ID, 0)
	require.NoError(t, err)
	checkingEntries, err := svc.History(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, len(savingsEntries)-1, len(checkingEntries)) // minus the init deposit
}

// The end-to-end scenario: create a user, deposit, overdraw, open a
// second account, transfer between them, then fail a login.
func TestRetailScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "0.00", balance.StringFixed(2))

	_, balance, err = svc.Deposit(ctx, user.ID, 0, mustDecimal("100.00"), "init")
	require.NoError(t, err)
	assert.Equal(t, "100.00", balance.StringFixed(2))

	_, _, err = svc.Withdraw(ctx, user.ID, 0, mustDecimal("150.00"), "too much")
	assert.ErrorIs(t, err, util.ErrInsufficientFunds)
	balance, err = svc.Balance(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "100.00", balance.StringFixed(2))

	_, err = svc.OpenAccount(ctx, user.ID, "Checking")
	require.NoError(t, err)

	savingsBalance, checkingBalance, err := svc.Transfer(ctx, user.ID, 0, 1, mustDecimal("40.00"))
	require.NoError(t, err)
	assert.Equal(t, "60.00", savingsBalance.StringFixed(2))
	assert.Equal(t, "40.00", checkingBalance.StringFixed(2))

	_, err = svc.Login(ctx, user.ID, "9999")
	assert.ErrorIs(t, err, util.ErrAuthenticationFailed)
}

// Guard against accidental aliasing: mutating a returned history slice
// must not affect stored state.
func TestHistoryIsACopy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.CreateUser(ctx, "John", "Doe", "1234")
	require.NoError(t, err)
	_, _, err = svc.Deposit(ctx, user.ID, 0, mustDecimal("10.00"), "init")
	require.NoError(t, err)

	entries, err := svc.History(ctx, user.ID, 0)
	require.NoError(t, err)
	entries[0].Amount = mustDecimal("9999.00")
	entries[0].Memo = "tampered"

	fresh, err := svc.History(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.True(t, mustDecimal("10.00").Equal(fresh[0].Amount))
	assert.Equal(t, "init", fresh[0].Memo)
}
