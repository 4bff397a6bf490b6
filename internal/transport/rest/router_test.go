package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal/auth"
	authPostgres "github.com/frahmantamala/vesta-ledger/internal/auth/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/sqlitetest"
	"github.com/frahmantamala/vesta-ledger/internal/core/events"
	"github.com/frahmantamala/vesta-ledger/internal/loan"
	loanPostgres "github.com/frahmantamala/vesta-ledger/internal/loan/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/saving"
	savingPostgres "github.com/frahmantamala/vesta-ledger/internal/saving/postgres"
	"github.com/frahmantamala/vesta-ledger/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var _ = Describe("Router", func() {
	var (
		db       *gorm.DB
		router   *chi.Mux
		bus      *events.EventBus
		realized []events.Event
		token    string
	)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		today := func() calendar.Date { return calendar.MustParse("2024-03-05") }

		db, err = sqlitetest.Open()
		Expect(err).NotTo(HaveOccurred())

		realized = nil
		bus = events.NewEventBus(log)
		bus.Subscribe(events.EventTypeObligationRealized, func(_ context.Context, e events.Event) error {
			realized = append(realized, e)
			return nil
		})

		tokens := auth.NewJWTTokenGenerator("access", "refresh", time.Minute, time.Hour)
		authService := auth.NewService(authPostgres.NewRepository(db), tokens, bcrypt.MinCost, log)

		loanRepo := loanPostgres.NewLoanRepository(db)
		savingRepo := savingPostgres.NewSavingRepository(db)
		engine := obligation.NewEngine(bus, today, log)
		engine.Register(obligation.KindLoan, loanRepo)
		engine.Register(obligation.KindSaving, savingRepo)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Auth:   auth.NewHandler(authService),
			Loan:   loan.NewHandler(loan.NewService(loanRepo, engine, today, log)),
			Saving: saving.NewHandler(saving.NewService(savingRepo, engine, today, log)),
		}, rest.Options{AllowedOrigins: "*"}, log)

		token = ""
		w := do(http.MethodPost, "/api/v1/auth/register", `{"email":"dana@example.com","name":"Dana","password":"longenough"}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())

		var registered struct {
			AccessToken string `json:"access_token"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&registered)).To(Succeed())
		token = registered.AccessToken
	})

	AfterEach(func() {
		Expect(sqlitetest.Close(db)).To(Succeed())
	})

	It("should reject protected routes without a token", func() {
		token = ""
		w := do(http.MethodGet, "/api/v1/loans", "")

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Body.String()).To(ContainSubstring("AUTH_MISSING"))
	})

	It("should echo the trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
		req.Header.Set("X-Trace-ID", "trace-abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Header().Get("X-Trace-ID")).To(Equal("trace-abc"))
	})

	It("should pay a loan down through the API", func() {
		w := do(http.MethodPost, "/api/v1/loans",
			`{"name":"Car","recurring_payment":100,"duration":12,"next_due_date":"2024-03-10"}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())

		var created loan.Loan
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.TotalAmount.Equal(decimal.NewFromInt(1200))).To(BeTrue())

		w = do(http.MethodPost, "/api/v1/loans/"+created.ID+"/payments", "")
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())

		var result loan.PaymentResult
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.Loan.TotalAmount.Equal(decimal.NewFromInt(1100))).To(BeTrue())
		Expect(result.Loan.MonthsPaid).To(Equal(1))
		Expect(result.Payment.Amount.Equal(decimal.NewFromInt(100))).To(BeTrue())

		bus.Wait()
		Expect(realized).To(HaveLen(1))

		w = do(http.MethodGet, "/api/v1/loans/payments", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"total":100`))
	})

	It("should keep loans private to their owner", func() {
		w := do(http.MethodPost, "/api/v1/loans", `{"name":"Car","total_amount":500}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created loan.Loan
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		w = do(http.MethodPost, "/api/v1/auth/register", `{"email":"other@example.com","name":"Other","password":"longenough"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var other struct {
			AccessToken string `json:"access_token"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&other)).To(Succeed())
		token = other.AccessToken

		w = do(http.MethodGet, "/api/v1/loans/"+created.ID, "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should record a savings contribution", func() {
		w := do(http.MethodPost, "/api/v1/savings",
			`{"name":"House","current_amount":100,"recurring_contribution":50,"duration":4,"next_contribution_date":"2024-03-01"}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())

		var created saving.Saving
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		w = do(http.MethodPost, "/api/v1/savings/"+created.ID+"/contributions", `{"note":"march"}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		Expect(w.Body.String()).To(ContainSubstring(`"current_amount":150`))
		Expect(w.Body.String()).To(ContainSubstring(`"next_contribution_date":"2024-04-01"`))
	})
})
