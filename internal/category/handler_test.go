package category_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/category"
	categoryPostgres "github.com/frahmantamala/vesta-ledger/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/sqlitetest"
	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
		gymID  string
	)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req = req.WithContext(internal.ContextWithUserID(context.Background(), "owner-1"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = sqlitetest.Open()
		Expect(err).NotTo(HaveOccurred())

		repo := categoryPostgres.NewCategoryRepository(db)
		service := category.NewService(repo, nil, slogger)
		handler := category.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/categories", handler.GetCategories)
		router.Post("/categories", handler.CreateCategory)
		router.Patch("/categories/{id}", handler.UpdateCategory)
		router.Get("/categories/{id}/usage", handler.GetCategoryUsage)
		router.Delete("/categories/{id}", handler.DeleteCategory)

		Expect(db.Create(&categoryDatamodel.Category{Name: "Food", IsDefault: true}).Error).To(Succeed())

		w := do(http.MethodPost, "/categories", `{"name":"Gym","emoji":"💪"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created category.Category
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		gymID = created.ID

		Expect(db.Create(&expenseDatamodel.Expense{
			UserID:     "owner-1",
			CategoryID: &gymID,
			Amount:     decimal.NewFromInt(25),
			Date:       time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		}).Error).To(Succeed())
	})

	AfterEach(func() {
		Expect(sqlitetest.Close(db)).To(Succeed())
	})

	It("should handle GET /categories request successfully", func() {
		w := do(http.MethodGet, "/categories", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(2))
		Expect(response.Categories[0].Name).To(Equal("Food"))
	})

	It("should reject unknown fields", func() {
		w := do(http.MethodPost, "/categories", `{"name":"Pets","colour":"red"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report usage", func() {
		w := do(http.MethodGet, "/categories/"+gymID+"/usage", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var usage category.UsageResponse
		Expect(json.NewDecoder(w.Body).Decode(&usage)).To(Succeed())
		Expect(usage.Expenses).To(Equal(int64(1)))
		Expect(usage.Total).To(Equal(int64(1)))
	})

	It("should return 409 when deleting a used category without confirmation", func() {
		w := do(http.MethodDelete, "/categories/"+gymID, "")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("CATEGORY_IN_USE"))
	})

	It("should cascade when confirmed", func() {
		w := do(http.MethodDelete, "/categories/"+gymID+"?confirm=true", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var count int64
		Expect(db.Model(&expenseDatamodel.Expense{}).Count(&count).Error).To(Succeed())
		Expect(count).To(BeZero())
	})

	It("should return 404 for an unknown category", func() {
		w := do(http.MethodPatch, "/categories/missing", `{"name":"X"}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
