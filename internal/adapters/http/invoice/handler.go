package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rechnungswerk/ms_einvoice_core/internal/application/lifecycle"
	"rechnungswerk/ms_einvoice_core/internal/application/totals"
	"rechnungswerk/ms_einvoice_core/internal/application/xrechnung"
	"rechnungswerk/ms_einvoice_core/internal/core/issuer"
	httperrors "rechnungswerk/ms_einvoice_core/internal/infrastructure/http"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/metrics"
)

// Handler bridges HTTP traffic with the invoice lifecycle service.
type Handler struct {
	service *lifecycle.Service
	issuer  issuer.Provider
	log     *slog.Logger
}

// NewHandler creates a new invoice HTTP handler.
func NewHandler(service *lifecycle.Service, issuerProvider issuer.Provider, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		issuer:  issuerProvider,
		log:     log,
	}
}

// CreateInvoice handles POST /api/v1/invoices requests. The invoice is
// accepted, persisted in state "processing", and submitted to the access
// point in the background. The response does not wait for delivery.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var reqBody lifecycle.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Validation Error", []string{"Request body is not valid JSON"}, h.log)
		return
	}

	created, err := h.service.Create(r.Context(), reqBody)
	if err != nil {
		h.handleError(w, err)
		return
	}

	// Fire and forget: the submission detaches from the request context
	// and records its outcome on the stored invoice.
	h.service.SubmitAsync(r.Context(), created)

	httperrors.WriteJSON(w, http.StatusCreated, created, h.log)
}

// ListInvoices handles GET /api/v1/invoices requests.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	response := map[string]interface{}{
		"data":  invoices,
		"total": len(invoices),
	}

	httperrors.WriteJSON(w, http.StatusOK, response, h.log)
}

// GetInvoice handles GET /api/v1/invoices/{id} requests.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httperrors.WriteError(w, http.StatusBadRequest, "Validation Error", []string{"id is required in the URL"}, h.log)
		return
	}

	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, inv, h.log)
}

// DownloadXRechnung handles GET /api/v1/invoices/{id}/xrechnung requests.
// The stored invoice is rendered as an XRechnung 3.0 UBL document.
func (h *Handler) DownloadXRechnung(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httperrors.WriteError(w, http.StatusBadRequest, "Validation Error", []string{"id is required in the URL"}, h.log)
		return
	}

	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if report := totals.Check(inv); !report.Consistent {
		metrics.RecordTotalsMismatch()
		h.log.Warn("encoding invoice with inconsistent aggregates",
			"invoice_id", inv.ID,
			"computed_subtotal", report.ComputedSubtotal,
			"computed_tax", report.ComputedTax,
			"computed_total", report.ComputedTotal,
		)
	}

	issuerCfg, err := h.issuer.Get(r.Context())
	if err != nil {
		h.log.Warn("issuer lookup failed, using defaults", "invoice_id", inv.ID, "error", err)
		issuerCfg = issuer.Config{}
	}

	document, err := xrechnung.Encode(inv, issuerCfg)
	if err != nil {
		h.handleError(w, err)
		return
	}

	metrics.RecordDocumentEncoded()

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(document)); err != nil {
		h.log.Error("failed to write document response", "invoice_id", inv.ID, "error", err)
	}
}

// handleError maps domain errors to appropriate HTTP status codes and formats.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		httperrors.WriteError(w, http.StatusNotFound, "Not Found", []string{"No invoice exists with the requested id"}, h.log)

	case errors.Is(err, xrechnung.ErrMissingItems), errors.Is(err, xrechnung.ErrMissingTotals):
		httperrors.WriteError(w, http.StatusUnprocessableEntity, "Document Error", []string{err.Error()}, h.log)

	case strings.Contains(err.Error(), "required"):
		httperrors.WriteError(w, http.StatusBadRequest, "Validation Error", []string{err.Error()}, h.log)

	default:
		h.log.Error("request failed", "error", err)
		httperrors.WriteError(w, http.StatusInternalServerError, "Internal Server Error", []string{"An internal error has occurred"}, h.log)
	}
}
