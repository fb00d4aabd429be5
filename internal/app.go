// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	router "minibank/internal/api"
	"minibank/internal/api/handler"
	"minibank/internal/config"
	"minibank/internal/idgen"
	"minibank/internal/repository"
	"minibank/internal/repository/memory"
	"minibank/internal/service"
	"minibank/internal/util"
	"minibank/pkg/memdb"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *memdb.DB

	// Repositories
	UserRepository        repository.UserRepository
	AccountRepository     repository.AccountRepository
	TransactionRepository repository.TransactionRepository

	// Services
	BankService service.BankService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components. The store is
// in-memory only: a fresh Application starts empty and all state is
// lost on exit.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.", "bank", cfg.BankName)

	// 3. Initialize the in-memory store
	app.DB = memdb.New()
	app.Logger.Info("In-memory store initialized.")

	// 4. Initialize Repositories
	app.UserRepository = memory.NewUserRepository()
	app.AccountRepository = memory.NewAccountRepository()
	app.TransactionRepository = memory.NewTransactionRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Services
	seed := uint64(time.Now().UnixNano())
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	app.BankService = service.NewBankService(
		app.DB, // This is the TxBeginner
		app.DB, // This is the Executor for non-transactional reads
		app.UserRepository,
		app.AccountRepository,
		app.TransactionRepository,
		memdb.BeginTx,
		memdb.CommitTx,
		memdb.RollbackTx,
		idgen.New(cfg.UserIDLength, rng),
		idgen.New(cfg.AccountIDLength, rng),
		cfg.PINDigestCost,
		time.Now,
	)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	bankHandler := handler.NewBankHandler(app.BankService, app.Logger)
	app.HTTPHandler = router.NewRouter(bankHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources. The store is
// process memory, so there is nothing to flush; this is the hook where
// a durable backend would close.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
