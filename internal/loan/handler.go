package loan

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vesta-ledger/internal/core/calendar"
	"github.com/frahmantamala/vesta-ledger/internal/core/money"
	"github.com/frahmantamala/vesta-ledger/internal/export"
	"github.com/frahmantamala/vesta-ledger/internal/obligation"
	"github.com/frahmantamala/vesta-ledger/internal/report"
	"github.com/frahmantamala/vesta-ledger/internal/transport"
	"github.com/frahmantamala/vesta-ledger/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	Today() calendar.Date
	Create(ctx context.Context, dto CreateLoanDTO) (*Loan, error)
	Get(ctx context.Context, id string) (*Loan, error)
	Update(ctx context.Context, id string, dto UpdateLoanDTO) (*Loan, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, status *obligation.Status) ([]*Loan, error)
	Pay(ctx context.Context, id string, dto PaymentDTO) (*PaymentResult, error)
	Payments(ctx context.Context, filter PaymentFilter) ([]*Payment, error)
	Summary(ctx context.Context) (report.LoanSummary, error)
	ExportLoans(ctx context.Context, status *obligation.Status, format export.Format) ([]byte, string, error)
	ExportPayments(ctx context.Context, filter PaymentFilter, format export.Format) ([]byte, string, error)
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

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var dto CreateLoanDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "CreateLoan", err)
		return
	}

	created, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, "CreateLoan", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	found, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, "GetLoan", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	var dto UpdateLoanDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, "UpdateLoan", err)
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "UpdateLoan", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, "DeleteLoan", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLoans accepts ?status=active|closed.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Service.List(r.Context(), ParseStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.HandleServiceError(w, r, "ListLoans", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LoansResponse{Loans: loans})
}

func (h *Handler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var dto PaymentDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(w, r, &dto); err != nil {
			h.HandleServiceError(w, r, "MakePayment", err)
			return
		}
	}

	result, err := h.Service.Pay(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, "MakePayment", err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	filter, err := ParsePaymentFilter(r.URL.Query(), h.Service.Today())
	if err != nil {
		h.HandleServiceError(w, r, "ListPayments", err)
		return
	}

	payments, err := h.Service.Payments(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, "ListPayments", err)
		return
	}

	amounts := make([]decimal.Decimal, 0, len(payments))
	for _, p := range payments {
		amounts = append(amounts, p.Amount)
	}
	h.WriteJSON(w, http.StatusOK, PaymentsResponse{Payments: payments, Total: money.Sum(amounts...)})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, "GetLoanSummary", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

// ExportLoans serves ?status= as a PDF unless ?format= asks otherwise.
func (h *Handler) ExportLoans(w http.ResponseWriter, r *http.Request) {
	format, err := exportFormat(r)
	if err != nil {
		h.HandleServiceError(w, r, "ExportLoans", err)
		return
	}

	data, filename, err := h.Service.ExportLoans(r.Context(), ParseStatus(r.URL.Query().Get("status")), format)
	if err != nil {
		h.HandleServiceError(w, r, "ExportLoans", err)
		return
	}

	h.WriteFile(w, format.ContentType(), filename, data)
}

func (h *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	format, err := exportFormat(r)
	if err != nil {
		h.HandleServiceError(w, r, "ExportPayments", err)
		return
	}

	filter, err := ParsePaymentFilter(r.URL.Query(), h.Service.Today())
	if err != nil {
		h.HandleServiceError(w, r, "ExportPayments", err)
		return
	}

	data, filename, err := h.Service.ExportPayments(r.Context(), filter, format)
	if err != nil {
		h.HandleServiceError(w, r, "ExportPayments", err)
		return
	}

	h.WriteFile(w, format.ContentType(), filename, data)
}

func exportFormat(r *http.Request) (export.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return export.FormatPDF, nil
	}
	return export.ParseFormat(raw)
}
