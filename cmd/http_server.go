package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/auth"
	authPostgres "github.com/frahmantamala/vesta-ledger/internal/auth/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/budget"
	budgetPostgres "github.com/frahmantamala/vesta-ledger/internal/budget/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/category"
	categoryPostgres "github.com/frahmantamala/vesta-ledger/internal/category/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/expense"
	expensePostgres "github.com/frahmantamala/vesta-ledger/internal/expense/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/loan"
	loanPostgres "github.com/frahmantamala/vesta-ledger/internal/loan/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/recurring"
	recurringPostgres "github.com/frahmantamala/vesta-ledger/internal/recurring/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/saving"
	savingPostgres "github.com/frahmantamala/vesta-ledger/internal/saving/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/frahmantamala/vesta-ledger/internal/transport/rest"
	"github.com/frahmantamala/vesta-ledger/internal/transport/swagger"
	"github.com/frahmantamala/vesta-ledger/internal/user"
	userPostgres "github.com/frahmantamala/vesta-ledger/internal/user/postgres"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	Handlers rest.Handlers
	Events   *eventPipeline
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("Failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Events.Close()
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	opts := rest.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		OpenAPIPath:    deps.Config.Server.OpenAPIPath,
	}
	if opts.OpenAPIPath != "" {
		doc, err := swagger.LoadSpec(context.Background(), opts.OpenAPIPath)
		if err != nil {
			return err
		}
		opts.OpenAPI = doc
	}

	rest.RegisterAllRoutes(deps.Router, deps.Handlers, opts, deps.Logger)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	loc, err := config.Ledger.Location()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	today := func() calendar.Date { return calendar.Today(loc) }

	pipeline, err := newEventPipeline(config.Events, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTAccessSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokens, config.Security.BCryptCost, log).
		WithDefaultCurrency(config.Ledger.DefaultCurrency)
	userService := user.NewService(userPostgres.NewPostgresRepo(db), log)

	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), pipeline.Bus, log)
	expenseService := expense.NewService(expensePostgres.NewExpenseRepository(gormDB), categoryService, today, log)
	budgetService := budget.NewService(budgetPostgres.NewBudgetRepository(gormDB), categoryService, expenseService, today, log)

	recurringRepo := recurringPostgres.NewRecurringRepository(gormDB)
	loanRepo := loanPostgres.NewLoanRepository(gormDB)
	savingRepo := savingPostgres.NewSavingRepository(gormDB)

	engine := obligation.NewEngine(pipeline.Bus, today, log)
	engine.Register(obligation.KindRecurringExpense, recurringRepo)
	engine.Register(obligation.KindLoan, loanRepo)
	engine.Register(obligation.KindSaving, savingRepo)

	recurringService := recurring.NewService(recurringRepo, categoryService, engine, today, log)
	loanService := loan.NewService(loanRepo, engine, today, log)
	savingService := saving.NewService(savingRepo, engine, today, log)

	health := rest.NewHealthHandler(db)
	if pipeline.forwarder != nil {
		health.WithCheck("broker", pipeline.forwarder.Check)
	}

	handlers := rest.Handlers{
		Health:    health,
		Auth:      auth.NewHandler(authService),
		User:      user.NewHandler(userService),
		Category:  category.NewHandler(transport.NewBaseHandler(log), categoryService),
		Expense:   expense.NewHandler(expenseService),
		Budget:    budget.NewHandler(budgetService),
		Recurring: recurring.NewHandler(recurringService),
		Loan:      loan.NewHandler(loanService),
		Saving:    saving.NewHandler(savingService),
	}

	return &Dependencies{
		Config:   config,
		Logger:   log,
		DB:       db,
		Gorm:     gormDB,
		Router:   chi.NewRouter(),
		Handlers: handlers,
		Events:   pipeline,
	}, nil
}

// initDB opens the pgx-backed pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm reuses the sqlx pool so both layers share connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
