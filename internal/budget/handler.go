package budget

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Today() calendar.Date
	Upsert(ctx context.Context, dto UpsertBudgetDTO) (*Budget, error)
	List(ctx context.Context, month calendar.Date) ([]*Progress, error)
	Delete(ctx context.Context, id string) error
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

func (h *Handler) UpsertBudget(w http.ResponseWriter, r *http.Request) {
	var dto UpsertBudgetDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "UpsertBudget", err)
		return
	}

	saved, err := h.Service.Upsert(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpsertBudget", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, saved)
}

// GetBudgets lists ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query().Get("month"), h.Service.Today())
	if err != nil {
		h.HandleServiceError(w, r, "GetBudgets", err)
		return
	}

	budgets, err := h.Service.List(r.Context(), month)
	if err != nil {
		h.HandleServiceError(w, r, "GetBudgets", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BudgetsResponse{Month: month, Budgets: budgets})
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, "DeleteBudget", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
