package expense

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/export"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	Today() calendar.Date
	CreateExpense(ctx context.Context, dto CreateExpenseDTO) (*Expense, error)
	GetExpense(ctx context.Context, id string) (*Expense, error)
	UpdateExpense(ctx context.Context, id string, dto UpdateExpenseDTO) (*Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, filter Filter) ([]*Expense, error)
	Summary(ctx context.Context) (report.SpendingSummary, error)
	Comparison(ctx context.Context) (report.Comparison, error)
	Daily(ctx context.Context, filter Filter) ([]report.DayTotal, error)
	Export(ctx context.Context, filter Filter, format export.Format) ([]byte, string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var dto CreateExpenseDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "CreateExpense", err)
		return
	}

	created, err := h.Service.CreateExpense(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "CreateExpense", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "GetExpense", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var dto UpdateExpenseDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "UpdateExpense", err)
		return
	}

	updated, err := h.Service.UpdateExpense(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateExpense", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, "DeleteExpense", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListExpenses handles GET /expenses?range=&start=&end=&category=&search=
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query(), h.Service.Today())
	if err != nil {
		h.HandleServiceError(w, r, "ListExpenses", err)
		return
	}

	expenses, err := h.Service.ListExpenses(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, "ListExpenses", err)
		return
	}

	amounts := make([]decimal.Decimal, 0, len(expenses))
	for _, e := range expenses {
		amounts = append(amounts, e.Amount)
	}

	h.WriteJSON(w, http.StatusOK, ExpensesResponse{
		Expenses: expenses,
		Total:    money.Sum(amounts...),
		Count:    len(expenses),
	})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, "GetSummary", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	comparison, err := h.Service.Comparison(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, "GetComparison", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, comparison)
}

// GetDaily handles GET /expenses/daily?range=&start=&end=&category=
func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query(), h.Service.Today())
	if err != nil {
		h.HandleServiceError(w, r, "GetDaily", err)
		return
	}

	series, err := h.Service.Daily(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, "GetDaily", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, series)
}

// ExportExpenses handles GET /expenses/export?format=csv|xlsx plus the list filters.
func (h *Handler) ExportExpenses(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.HandleServiceError(w, r, "ExportExpenses", err)
		return
	}

	filter, err := ParseFilter(r.URL.Query(), h.Service.Today())
	if err != nil {
		h.HandleServiceError(w, r, "ExportExpenses", err)
		return
	}

	data, filename, err := h.Service.Export(r.Context(), filter, format)
	if err != nil {
		h.HandleServiceError(w, r, "ExportExpenses", err)
		return
	}

	h.WriteFile(w, format.ContentType(), filename, data)
}
