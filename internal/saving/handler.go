package saving

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/export"
	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	Today() calendar.Date
	Create(ctx context.Context, dto CreateSavingDTO) (*Saving, error)
	Get(ctx context.Context, id string) (*Saving, error)
	Update(ctx context.Context, id string, dto UpdateSavingDTO) (*Saving, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Saving, error)
	Contribute(ctx context.Context, id string, dto ContributionDTO) (*ContributionResult, error)
	Contributions(ctx context.Context, filter ContributionFilter) ([]*Contribution, error)
	Summary(ctx context.Context) (SummaryResponse, error)
	ExportSavings(ctx context.Context, format export.Format) ([]byte, string, error)
	ExportContributions(ctx context.Context, filter ContributionFilter, format export.Format) ([]byte, string, error)
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

func (h *Handler) CreateSaving(w http.ResponseWriter, r *http.Request) {
	var dto CreateSavingDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "CreateSaving", err)
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "CreateSaving", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetSaving(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "GetSaving", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) UpdateSaving(w http.ResponseWriter, r *http.Request) {
	var dto UpdateSavingDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "UpdateSaving", err)
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateSaving", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteSaving(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, "DeleteSaving", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSavings(w http.ResponseWriter, r *http.Request) {
	savings, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, "ListSavings", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SavingsResponse{Savings: savings})
}

func (h *Handler) RecordContribution(w http.ResponseWriter, r *http.Request) {
	var dto ContributionDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(w, r, &dto); err != nil {
			h.HandleServiceError(w, r, "RecordContribution", err)
			return
		}
	}

	result, err := h.Service.Contribute(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "RecordContribution", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseContributionFilter(r.URL.Query(), h.Service.Today())
	if err != nil {
		h.HandleServiceError(w, r, "ListContributions", err)
		return
	}

	contributions, err := h.Service.Contributions(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, "ListContributions", err)
		return
	}

	amounts := make([]decimal.Decimal, 0, len(contributions))
	for _, c := range contributions {
		amounts = append(amounts, c.Amount)
	}
	h.WriteJSON(w, http.StatusOK, ContributionsResponse{Contributions: contributions, Total: money.Sum(amounts...)})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, "GetSavingsSummary", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) ExportSavings(w http.ResponseWriter, r *http.Request) {
	format, err := exportFormat(r)
	if err != nil {
		h.HandleServiceError(w, r, "ExportSavings", err)
		return
	}

	data, filename, err := h.Service.ExportSavings(r.Context(), format)
	if err != nil {
		h.HandleServiceError(w, r, "ExportSavings", err)
		return
	}

	h.WriteFile(w, format.ContentType(), filename, data)
}

func (h *Handler) ExportContributions(w http.ResponseWriter, r *http.Request) {
	format, err := exportFormat(r)
	if err != nil {
		h.HandleServiceError(w, r, "ExportContributions", err)
		return
	}

	filter, err := ParseContributionFilter(r.URL.Query(), h.Service.Today())
	if err != nil {
		h.HandleServiceError(w, r, "ExportContributions", err)
		return
	}

	data, filename, err := h.Service.ExportContributions(r.Context(), filter, format)
	if err != nil {
		h.HandleServiceError(w, r, "ExportContributions", err)
		return
	}

	h.WriteFile(w, format.ContentType(), filename, data)
}

// exportFormat defaults to PDF.
func exportFormat(r *http.Request) (export.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return export.FormatPDF, nil
	}
	return export.ParseFormat(raw)
}
