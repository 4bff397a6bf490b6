package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vesta-ledger/internal/auth"
	"github.com/frahmantamala/vesta-ledger/internal/budget"
	"github.com/frahmantamala/vesta-ledger/internal/category"
	"github.com/frahmantamala/vesta-ledger/internal/expense"
	"github.com/frahmantamala/vesta-ledger/internal/loan"
	"github.com/frahmantamala/vesta-ledger/internal/recurring"
	"github.com/frahmantamala/vesta-ledger/internal/saving"
	"github.com/frahmantamala/vesta-ledger/internal/transport/middleware"
	"github.com/frahmantamala/vesta-ledger/internal/transport/swagger"
	"github.com/frahmantamala/vesta-ledger/internal/user"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the HTTP handlers mounted under /api/v1. A nil handler
// leaves its routes unmounted.
type Handlers struct {
	Health    *HealthHandler
	Auth      *auth.Handler
	User      *user.Handler
	Category  *category.Handler
	Expense   *expense.Handler
	Budget    *budget.Handler
	Recurring *recurring.Handler
	Loan      *loan.Handler
	Saving    *saving.Handler
}

// Options carries router settings that come from configuration.
type Options struct {
	AllowedOrigins string
	OpenAPIPath    string
	OpenAPI        *openapi3.T
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware(logger))

	if opts.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
	}
	if opts.OpenAPI != nil {
		router.Get("/openapi.json", swagger.SpecHandler(opts.OpenAPI))
	}
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", h.Auth.Register)
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.Patch("/users/me", h.User.UpdateCurrentUser)
			}

			if h.Category != nil {
				pr.Route("/categories", func(cr chi.Router) {
					cr.Get("/", h.Category.GetCategories)
					cr.Post("/", h.Category.CreateCategory)
					cr.Patch("/{id}", h.Category.UpdateCategory)
					cr.Get("/{id}/usage", h.Category.GetCategoryUsage)
					cr.Delete("/{id}", h.Category.DeleteCategory) // ?confirm=true when in use
				})
			}

			if h.Expense != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", h.Expense.CreateExpense)
					er.Get("/", h.Expense.ListExpenses)
					er.Get("/summary", h.Expense.GetSummary)
					er.Get("/comparison", h.Expense.GetComparison)
					er.Get("/daily", h.Expense.GetDaily)
					er.Get("/export", h.Expense.ExportExpenses)
					er.Get("/{id}", h.Expense.GetExpense)
					er.Patch("/{id}", h.Expense.UpdateExpense)
					er.Delete("/{id}", h.Expense.DeleteExpense)
				})
			}

			if h.Budget != nil {
				pr.Route("/budgets", func(br chi.Router) {
					br.Get("/", h.Budget.GetBudgets)
					br.Put("/", h.Budget.UpsertBudget)
					br.Delete("/{id}", h.Budget.DeleteBudget)
				})
			}

			if h.Recurring != nil {
				pr.Route("/recurring-expenses", func(rr chi.Router) {
					rr.Post("/", h.Recurring.CreateRecurring)
					rr.Get("/", h.Recurring.ListRecurring)
					rr.Get("/{id}", h.Recurring.GetRecurring)
					rr.Patch("/{id}", h.Recurring.UpdateRecurring)
					rr.Delete("/{id}", h.Recurring.DeleteRecurring)
					rr.Post("/{id}/process", h.Recurring.ProcessRecurring)
				})
			}

			if h.Loan != nil {
				pr.Route("/loans", func(lr chi.Router) {
					lr.Post("/", h.Loan.CreateLoan)
					lr.Get("/", h.Loan.ListLoans)
					lr.Get("/summary", h.Loan.GetSummary)
					lr.Get("/export", h.Loan.ExportLoans)
					lr.Get("/payments", h.Loan.ListPayments)
					lr.Get("/payments/export", h.Loan.ExportPayments)
					lr.Get("/{id}", h.Loan.GetLoan)
					lr.Patch("/{id}", h.Loan.UpdateLoan)
					lr.Delete("/{id}", h.Loan.DeleteLoan)
					lr.Post("/{id}/payments", h.Loan.MakePayment)
				})
			}

			if h.Saving != nil {
				pr.Route("/savings", func(sr chi.Router) {
					sr.Post("/", h.Saving.CreateSaving)
					sr.Get("/", h.Saving.ListSavings)
					sr.Get("/summary", h.Saving.GetSummary)
					sr.Get("/export", h.Saving.ExportSavings)
					sr.Get("/contributions", h.Saving.ListContributions)
					sr.Get("/contributions/export", h.Saving.ExportContributions)
					sr.Get("/{id}", h.Saving.GetSaving)
					sr.Patch("/{id}", h.Saving.UpdateSaving)
					sr.Delete("/{id}", h.Saving.DeleteSaving)
					sr.Post("/{id}/contributions", h.Saving.RecordContribution)
				})
			}
		})
	})
}
