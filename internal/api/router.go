// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"minibank/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(bankHandler *handler.BankHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Post("/users", bankHandler.CreateUser)
	r.Post("/login", bankHandler.Login)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/accounts", bankHandler.ListAccounts)
		r.Post("/accounts", bankHandler.OpenAccount)
		r.Post("/accounts/{accountIndex}/deposit", bankHandler.Deposit)
		r.Post("/accounts/{accountIndex}/withdraw", bankHandler.Withdraw)
		r.Get("/accounts/{accountIndex}/balance", bankHandler.GetBalance)
		r.Get("/accounts/{accountIndex}/transactions", bankHandler.GetTransactionHistory)

		// Transfers involve two accounts of the same user
		r.Post("/transfers", bankHandler.Transfer)
	})

	return r
}
