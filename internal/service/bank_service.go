// internal/service/bank_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"minibank/internal/credential"
	"minibank/internal/domain"
	"minibank/internal/idgen"
	"minibank/internal/repository"
	"minibank/internal/util"
	"minibank/pkg/memdb"

	"github.com/shopspring/decimal"
)

// DefaultAccountLabel is the label of the account auto-provisioned for
// every new user. No user ever exists without at least this account.
const DefaultAccountLabel = "Savings"

// AccountInfo is the read model for one account of a user, addressed by
// its stable 0-based position in the user's account list.
type AccountInfo struct {
	Index     int             `json:"index"`
	AccountID string          `json:"account_id"`
	Label     string          `json:"label"`
	Balance   decimal.Decimal `json:"balance"`
}

// BankService defines the interface for the bank's business logic.
// Account-addressing indices are 0-based here; presentation layers
// translate from the 1-based indices users see.
type BankService interface {
	CreateUser(ctx context.Context, firstName, lastName, pin string) (*domain.User, *domain.Account, error)
	OpenAccount(ctx context.Context, userID, label string) (*domain.Account, error)
	Login(ctx context.Context, userID, pin string) (*domain.User, error)
	Deposit(ctx context.Context, userID string, accountIndex int, amount decimal.Decimal, memo string) (*domain.Transaction, decimal.Decimal, error)
	Withdraw(ctx context.Context, userID string, accountIndex int, amount decimal.Decimal, memo string) (*domain.Transaction, decimal.Decimal, error)
	Transfer(ctx context.Context, userID string, fromIndex, toIndex int, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error)
	Balance(ctx context.Context, userID string, accountIndex int) (decimal.Decimal, error)
	History(ctx context.Context, userID string, accountIndex int) ([]domain.Transaction, error)
	Accounts(ctx context.Context, userID string) ([]AccountInfo, error)
	AccountsSummary(ctx context.Context, userID string) ([]string, error)
	NumAccounts(ctx context.Context, userID string) (int, error)
}

// bankService implements the BankService interface.
type bankService struct {
	dbBeginner      memdb.TxBeginner    // For starting store transactions
	dbExecutor      repository.Executor // For non-transactional reads
	userRepo        repository.UserRepository
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	beginTx         memdb.BeginTxFunc
	commitTx        memdb.CommitTxFunc
	rollbackTx      memdb.RollbackTxFunc
	userIDs         *idgen.Generator
	accountIDs      *idgen.Generator
	pinCost         int
	now             func() time.Time // Injected clock for ledger timestamps
}

// NewBankService creates a new instance of BankService.
func NewBankService(
	dbBeginner memdb.TxBeginner,
	dbExecutor repository.Executor,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	beginTx memdb.BeginTxFunc,
	commitTx memdb.CommitTxFunc,
	rollbackTx memdb.RollbackTxFunc,
	userIDs *idgen.Generator,
	accountIDs *idgen.Generator,
	pinCost int,
	now func() time.Time,
) BankService {
	if now == nil {
		now = time.Now
	}
	return &bankService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		userIDs:         userIDs,
		accountIDs:      accountIDs,
		pinCost:         pinCost,
		now:             now,
	}
}

// CreateUser mints a new user identifier, digests the PIN, and creates
// the user together with an auto-provisioned default account, all in
// one store transaction. This is the only way a user comes into
// existence.
func (s *bankService) CreateUser(ctx context.Context, firstName, lastName, pin string) (*domain.User, *domain.Account, error) {
	pinDigest, err := credential.Digest(pin, s.pinCost)
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("create user: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.Executor)
	if !ok {
		return nil, nil, fmt.Errorf("create user: transaction controller does not implement Executor")
	}

	userID := s.userIDs.Next(func(id string) bool {
		_, taken := txExecutor.Get(repository.BucketUsers, id)
		return taken
	})
	user := domain.NewUser(userID, firstName, lastName, pinDigest, s.now().UTC())
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	account, err := s.openAccount(ctx, txExecutor, user.ID, DefaultAccountLabel)
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}
	user.AccountIDs = append(user.AccountIDs, account.ID)

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("create user: failed to commit transaction: %w", err)
	}

	user.PINDigest = nil
	return user, account, nil
}

// OpenAccount mints a new account identifier, registers the account in
// the bank's account index, and attaches it to the user's ordered
// account list, all in one store transaction.
func (s *bankService) OpenAccount(ctx context.Context, userID, label string) (*domain.Account, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("open account: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.Executor)
	if !ok {
		return nil, fmt.Errorf("open account: transaction controller does not implement Executor")
	}

	if _, err := s.userRepo.UserByID(ctx, txExecutor, userID); err != nil {
		return nil, fmt.Errorf("open account: %w", err)
	}

	account, err := s.openAccount(ctx, txExecutor, userID, label)
	if err != nil {
		return nil, fmt.Errorf("open account: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("open account: failed to commit transaction: %w", err)
	}

	return account, nil
}

// openAccount creates and attaches one account inside an already-open
// transaction.
func (s *bankService) openAccount(ctx context.Context, q repository.Executor, userID, label string) (*domain.Account, error) {
	accountID := s.accountIDs.Next(func(id string) bool {
		_, taken := q.Get(repository.BucketAccounts, id)
		return taken
	})
	account := domain.NewAccount(accountID, label, userID, s.now().UTC())
	if err := s.accountRepo.CreateAccount(ctx, q, account); err != nil {
		return nil, err
	}
	if err := s.userRepo.AttachAccount(ctx, q, userID, account.ID); err != nil {
		return nil, err
	}
	return account, nil
}

// Login authenticates a user by identifier and PIN. An unknown id and a
// wrong PIN both return ErrAuthenticationFailed; the unknown-id path
// still runs a digest comparison (against a sentinel) so the two causes
// stay indistinguishable. Neither the plaintext PIN nor the stored
// digest ever leaves this method.
func (s *bankService) Login(ctx context.Context, userID, pin string) (*domain.User, error) {
	user, err := s.userRepo.UserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			credential.Verify(credential.Sentinel(), pin)
			return nil, util.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !credential.Verify(user.PINDigest, pin) {
		return nil, util.ErrAuthenticationFailed
	}

	user.PINDigest = nil
	return user, nil
}

// Deposit appends a credit entry to the addressed account's ledger and
// returns the entry together with the new balance.
func (s *bankService) Deposit(ctx context.Context, userID string, accountIndex int, amount decimal.Decimal, memo string) (*domain.Transaction, decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, decimal.Zero, util.ErrInvalidAmount
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.Executor)
	if !ok {
		return nil, decimal.Zero, fmt.Errorf("deposit: transaction controller does not implement Executor")
	}

	account, err := s.accountAt(ctx, txExecutor, userID, accountIndex)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("deposit: %w", err)
	}

	entry := domain.NewTransaction(account.ID, amount, memo, s.now().UTC())
	if err := s.transactionRepo.Append(ctx, txExecutor, entry); err != nil {
		return nil, decimal.Zero, fmt.Errorf("deposit: failed to append ledger entry: %w", err)
	}

	balance, err := s.transactionRepo.SumByAccountID(ctx, txExecutor, account.ID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("deposit: failed to derive balance: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, decimal.Zero, fmt.Errorf("deposit: failed to commit transaction: %w", err)
	}

	return entry, balance, nil
}

// Withdraw appends a debit entry to the addressed account's ledger. The
// balance guard runs before the append, so a failed withdrawal never
// mutates the ledger and no post-condition can leave the balance
// negative.
func (s *bankService) Withdraw(ctx context.Context, userID string, accountIndex int, amount decimal.Decimal, memo string) (*domain.Transaction, decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, decimal.Zero, util.ErrInvalidAmount
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.Executor)
	if !ok {
		return nil, decimal.Zero, fmt.Errorf("withdraw: transaction controller does not implement Executor")
	}

	account, err := s.accountAt(ctx, txExecutor, userID, accountIndex)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: %w", err)
	}

	balance, err := s.transactionRepo.SumByAccountID(ctx, txExecutor, account.ID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to derive balance: %w", err)
	}
	if balance.LessThan(amount) {
		return nil, decimal.Zero, util.ErrInsufficientFunds
	}

	entry := domain.NewTransaction(account.ID, amount.Neg(), memo, s.now().UTC())
	if err := s.transactionRepo.Append(ctx, txExecutor, entry); err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to append ledger entry: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, decimal.Zero, fmt.Errorf("withdraw: failed to commit transaction: %w", err)
	}

	return entry, balance.Sub(amount), nil
}

// Transfer moves funds between two of the user's accounts as exactly
// two ledger entries, staged in one store transaction: the debit leg's
// memo names the destination account, the credit leg's memo names the
// source. No observer ever sees one leg without the other.
func (s *bankService) Transfer(ctx context.Context, userID string, fromIndex, toIndex int, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, util.ErrInvalidAmount
	}
	if fromIndex == toIndex {
		return decimal.Zero, decimal.Zero, util.ErrSameAccountTransfer
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.Executor)
	if !ok {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: transaction controller does not implement Executor")
	}

	source, err := s.accountAt(ctx, txExecutor, userID, fromIndex)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: %w", err)
	}
	destination, err := s.accountAt(ctx, txExecutor, userID, toIndex)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: %w", err)
	}

	sourceBalance, err := s.transactionRepo.SumByAccountID(ctx, txExecutor, source.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: failed to derive source balance: %w", err)
	}
	if sourceBalance.LessThan(amount) {
		return decimal.Zero, decimal.Zero, util.ErrInsufficientFunds
	}

	now := s.now().UTC()
	debit := domain.NewTransaction(source.ID, amount.Neg(),
		fmt.Sprintf("Transfer to account %s", destination.ID), now)
	credit := domain.NewTransaction(destination.ID, amount,
		fmt.Sprintf("Transfer from account %s", source.ID), now)

	if err := s.transactionRepo.Append(ctx, txExecutor, debit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: failed to append debit leg: %w", err)
	}
	if err := s.transactionRepo.Append(ctx, txExecutor, credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: failed to append credit leg: %w", err)
	}

	destinationBalance, err := s.transactionRepo.SumByAccountID(ctx, txExecutor, destination.ID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: failed to derive destination balance: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}

	return sourceBalance.Sub(amount), destinationBalance, nil
}

// Balance returns the fold-sum of the addressed account's ledger.
func (s *bankService) Balance(ctx context.Context, userID string, accountIndex int) (decimal.Decimal, error) {
	account, err := s.accountAt(ctx, s.dbExecutor, userID, accountIndex)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance: %w", err)
	}
	balance, err := s.transactionRepo.SumByAccountID(ctx, s.dbExecutor, account.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance: failed to derive balance: %w", err)
	}
	return balance, nil
}

// History returns the addressed account's ledger entries in append order.
func (s *bankService) History(ctx context.Context, userID string, accountIndex int) ([]domain.Transaction, error) {
	account, err := s.accountAt(ctx, s.dbExecutor, userID, accountIndex)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	entries, err := s.transactionRepo.ByAccountID(ctx, s.dbExecutor, account.ID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return entries, nil
}

// Accounts returns the user's accounts in their stable order with
// derived balances.
func (s *bankService) Accounts(ctx context.Context, userID string) ([]AccountInfo, error) {
	user, err := s.userRepo.UserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("accounts: %w", err)
	}

	infos := make([]AccountInfo, 0, len(user.AccountIDs))
	for i, accountID := range user.AccountIDs {
		account, err := s.accountRepo.AccountByID(ctx, s.dbExecutor, accountID)
		if err != nil {
			return nil, fmt.Errorf("accounts: %w", err)
		}
		balance, err := s.transactionRepo.SumByAccountID(ctx, s.dbExecutor, accountID)
		if err != nil {
			return nil, fmt.Errorf("accounts: failed to derive balance: %w", err)
		}
		infos = append(infos, AccountInfo{
			Index:     i,
			AccountID: account.ID,
			Label:     account.Label,
			Balance:   balance,
		})
	}
	return infos, nil
}

// AccountsSummary returns one display line per account, in account order.
func (s *bankService) AccountsSummary(ctx context.Context, userID string) ([]string, error) {
	infos, err := s.Accounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(infos))
	for _, info := range infos {
		account := domain.Account{ID: info.AccountID, Label: info.Label}
		lines = append(lines, account.SummaryLine(info.Balance))
	}
	return lines, nil
}

// NumAccounts returns how many accounts the user holds.
func (s *bankService) NumAccounts(ctx context.Context, userID string) (int, error) {
	user, err := s.userRepo.UserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return 0, fmt.Errorf("num accounts: %w", err)
	}
	return user.NumAccounts(), nil
}

// accountAt resolves a user's account by its 0-based position, failing
// with ErrIndexOutOfRange outside [0, NumAccounts). This failure stays
// distinct from authentication failures: once logged in, the caller may
// learn how many accounts exist.
func (s *bankService) accountAt(ctx context.Context, q repository.Executor, userID string, accountIndex int) (*domain.Account, error) {
	user, err := s.userRepo.UserByID(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	if accountIndex < 0 || accountIndex >= len(user.AccountIDs) {
		return nil, util.ErrIndexOutOfRange
	}
	return s.accountRepo.AccountByID(ctx, q, user.AccountIDs[accountIndex])
}
