package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"
)

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

type registerResponse struct {
	User *User `json:"user"`
	AuthTokens
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "Register", err)
		return
	}

	user, tokens, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "Register", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, registerResponse{User: user, AuthTokens: tokens})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "Login", err)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "Login", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "RefreshToken", err)
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, r, "RefreshToken", err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.HandleServiceError(w, r, "RefreshToken", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout only checks the token; tokens are stateless and expire on their own.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteAppError(w, internal.NewAuthMissingError("missing authorization token"))
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.HandleServiceError(w, r, "Logout", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.From(r.Context())

		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			log.Warn("auth middleware: missing authorization token")
			h.WriteAppError(w, internal.NewAuthMissingError("missing authorization token"))
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			log.Warn("auth middleware: token validation failed", "error", err)
			h.HandleServiceError(w, r, "AuthMiddleware", err)
			return
		}

		user, err := h.Service.GetUser(r.Context(), claims.UserID)
		if err != nil {
			log.Warn("auth middleware: failed to load user", "user_id", claims.UserID, "error", err)
			h.WriteAppError(w, ErrInvalidToken)
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "owner_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
