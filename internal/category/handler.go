package category

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Category, error)
	Get(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, dto CreateCategoryDTO) (*Category, error)
	Update(ctx context.Context, id string, dto UpdateCategoryDTO) (*Category, error)
	Usage(ctx context.Context, id string) (Usage, error)
	Delete(ctx context.Context, id string, confirm bool) (Usage, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, "GetCategories", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: categories,
	})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CreateCategoryDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "CreateCategory", err)
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "CreateCategory", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var dto UpdateCategoryDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "UpdateCategory", err)
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateCategory", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) GetCategoryUsage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	usage, err := h.Service.Usage(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, "GetCategoryUsage", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsageResponse{CategoryID: id, Usage: usage, Total: usage.Total()})
}

// DeleteCategory handles DELETE /categories/{id}?confirm=true
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	removed, err := h.Service.Delete(r.Context(), id, confirm)
	if err != nil {
		h.HandleServiceError(w, r, "DeleteCategory", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsageResponse{CategoryID: id, Usage: removed, Total: removed.Total()})
}
