package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"
)

type ServiceAPI interface {
	GetCurrent(ctx context.Context) (*User, error)
	UpdateCurrent(ctx context.Context, dto UpdateProfileDTO) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetCurrent(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, "GetCurrentUser", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// UpdateCurrentUser handles PATCH /users/me
func (h *Handler) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	var dto UpdateProfileDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "UpdateCurrentUser", err)
		return
	}

	u, err := h.Service.UpdateCurrent(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateCurrentUser", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}
