package recurring

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateRecurringDTO) (*RecurringExpense, error)
	Get(ctx context.Context, id string) (*RecurringExpense, error)
	Update(ctx context.Context, id string, dto UpdateRecurringDTO) (*RecurringExpense, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) (RecurringListResponse, error)
	Process(ctx context.Context, id string) (*ProcessResult, error)
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

func (h *Handler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	var dto CreateRecurringDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "CreateRecurring", err)
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "CreateRecurring", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetRecurring(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "GetRecurring", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) UpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var dto UpdateRecurringDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "UpdateRecurring", err)
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateRecurring", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, "DeleteRecurring", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, "ListRecurring", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ProcessRecurring(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Process(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "ProcessRecurring", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}
