// internal/api/handler/bank.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"minibank/internal/api/types"
	"minibank/internal/domain"
	"minibank/internal/service"
	"minibank/internal/util"
)

// DefaultTimeout bounds request handling time at the router level.
const DefaultTimeout = 10 * time.Second

// BankHandler handles HTTP requests for bank operations. Account
// indices in URLs are 1-based, matching what users see; the handler
// translates to the core's 0-based addressing.
type BankHandler struct {
	service service.BankService
	logger  *slog.Logger
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(svc service.BankService, logger *slog.Logger) *BankHandler {
	return &BankHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func (h *BankHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *BankHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidAmount), util.IsError(err, util.ErrSameAccountTransfer):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrIndexOutOfRange):
		statusCode = http.StatusBadRequest
		message = "Account index out of range"
	case util.IsError(err, util.ErrAuthenticationFailed):
		// One message for unknown id and wrong PIN alike.
		statusCode = http.StatusUnauthorized
		message = "Authentication failed"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// accountIndex parses the 1-based account index URL parameter and
// returns the core's 0-based index.
func accountIndex(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(chi.URLParam(r, "accountIndex"))
	if err != nil || idx < 1 {
		return 0, util.ErrIndexOutOfRange
	}
	return idx - 1, nil
}

// CreateUserRequest represents the request body for user creation.
type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PIN       string `json:"pin"`
}

// CreateUser handles new user registration.
// POST /users
func (h *BankHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.PIN == "" {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "first_name, last_name and pin are required"})
		return
	}

	user, account, err := h.service.CreateUser(r.Context(), req.FirstName, req.LastName, req.PIN)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.logger.Info("New user created", "user_id", user.ID, "last_name", user.LastName)
	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id":       user.ID,
		"account_id":    account.ID,
		"account_label": account.Label,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	UserID string `json:"user_id"`
	PIN    string `json:"pin"`
}

// Login authenticates a user by id and PIN.
// POST /login
func (h *BankHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.service.Login(r.Context(), req.UserID, req.PIN)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      user.ID,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"num_accounts": user.NumAccounts(),
	})
}

// ListAccounts returns the user's accounts with derived balances.
// GET /users/{userID}/accounts
func (h *BankHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	infos, err := h.service.Accounts(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.ListResponse[service.AccountInfo]{
		Data:  infos,
		Count: len(infos),
	})
}

// OpenAccountRequest represents the request body for opening an account.
type OpenAccountRequest struct {
	Label string `json:"label"`
}

// OpenAccount opens an additional account for the user.
// POST /users/{userID}/accounts
func (h *BankHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Label == "" {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "label is required"})
		return
	}

	account, err := h.service.OpenAccount(r.Context(), userID, req.Label)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.logger.Info("Account opened", "user_id", userID, "account_id", account.ID, "label", account.Label)
	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"account_id": account.ID,
		"label":      account.Label,
	})
}

// AmountRequest represents the request body for deposit and withdrawal.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Memo   string          `json:"memo"`
}

// Deposit handles the deposit money request.
// POST /users/{userID}/accounts/{accountIndex}/deposit
func (h *BankHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	index, err := accountIndex(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}

	entry, balance, err := h.service.Deposit(r.Context(), userID, index, req.Amount, req.Memo)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Deposit successful",
		"transaction_id": entry.ID,
		"account_id":     entry.AccountID,
		"new_balance":    balance,
	})
}

// Withdraw handles the withdraw money request.
// POST /users/{userID}/accounts/{accountIndex}/withdraw
func (h *BankHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	index, err := accountIndex(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}

	entry, balance, err := h.service.Withdraw(r.Context(), userID, index, req.Amount, req.Memo)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Withdrawal successful",
		"transaction_id": entry.ID,
		"account_id":     entry.AccountID,
		"new_balance":    balance,
	})
}

// TransferRequest represents the request body for transfer.
type TransferRequest struct {
	FromIndex int             `json:"from_index"` // 1-based
	ToIndex   int             `json:"to_index"`   // 1-based
	Amount    decimal.Decimal `json:"amount"`
}

// Transfer moves funds between two of the user's accounts.
// POST /users/{userID}/transfers
func (h *BankHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.FromIndex < 1 || req.ToIndex < 1 {
		h.respondWithError(w, util.ErrIndexOutOfRange)
		return
	}

	sourceBalance, destinationBalance, err := h.service.Transfer(r.Context(), userID, req.FromIndex-1, req.ToIndex-1, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":                 "Transfer successful",
		"source_new_balance":      sourceBalance,
		"destination_new_balance": destinationBalance,
	})
}

// GetBalance returns the derived balance of one account.
// GET /users/{userID}/accounts/{accountIndex}/balance
func (h *BankHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	index, err := accountIndex(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	balance, err := h.service.Balance(r.Context(), userID, index)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"balance": balance,
	})
}

// GetTransactionHistory returns one account's ledger in append order.
// GET /users/{userID}/accounts/{accountIndex}/transactions
func (h *BankHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	index, err := accountIndex(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	entries, err := h.service.History(r.Context(), userID, index)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.ListResponse[domain.Transaction]{
		Data:  entries,
		Count: len(entries),
	})
}
