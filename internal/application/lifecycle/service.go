// Package lifecycle governs an invoice's status field across its life and
// drives the asynchronous submission step that attempts delivery and records
// the outcome.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rechnungswerk/ms_einvoice_core/internal/application/totals"
	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
	"rechnungswerk/ms_einvoice_core/internal/infrastructure/metrics"
)

// ErrNotFound is returned when no invoice with the requested id exists.
var ErrNotFound = errors.New("invoice not found")

const defaultSubmitTimeout = 30 * time.Second

// Service orchestrates invoice creation and submission. All state lives in
// the injected repository; the service holds no invoice data across calls.
type Service struct {
	repo      invoice.Repository
	gateway   invoice.SubmissionGateway
	namespace string
	timeout   time.Duration
	log       *slog.Logger

	now      func() time.Time
	idSuffix func() string

	// Serializes read-modify-write cycles issued by this instance. The
	// repository offers no cross-call transaction, so concurrent writers
	// from other processes still race last-writer-wins.
	mu sync.Mutex
}

// NewService creates a lifecycle service.
// submitTimeout bounds the gateway call; 0 applies the default.
func NewService(repo invoice.Repository, gateway invoice.SubmissionGateway, namespace string, submitTimeout time.Duration, log *slog.Logger) *Service {
	return NewServiceWithClock(repo, gateway, namespace, submitTimeout, log, time.Now)
}

// NewServiceWithClock creates a lifecycle service with an injected clock,
// for deterministic tests.
func NewServiceWithClock(repo invoice.Repository, gateway invoice.SubmissionGateway, namespace string, submitTimeout time.Duration, log *slog.Logger, now func() time.Time) *Service {
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}
	return &Service{
		repo:      repo,
		gateway:   gateway,
		namespace: namespace,
		timeout:   submitTimeout,
		log:       log,
		now:       now,
		idSuffix:  randomSuffix,
	}
}

// CreateInput carries caller-supplied invoice fields. Aggregates are
// optional: when any of subtotal, tax amount or total is absent, all three
// are recomputed from the items.
type CreateInput struct {
	InvoiceNumber   string                   `json:"invoiceNumber"`
	Date            string                   `json:"date"`
	DueDate         string                   `json:"dueDate"`
	Currency        string                   `json:"currency"`
	Items           []invoice.Item           `json:"items"`
	Subtotal        *float64                 `json:"subtotal"`
	TaxRate         *float64                 `json:"taxRate"`
	TaxAmount       *float64                 `json:"taxAmount"`
	Total           *float64                 `json:"total"`
	BusinessPartner *invoice.BusinessPartner `json:"businessPartner"`
	Customer        *invoice.LegacyCustomer  `json:"customer"`
}

// Create assigns an id, normalizes currency and aggregates, and persists the
// record. The persisted initial state is always "processing": "received" is
// transient and only marks the instant of acceptance.
func (s *Service) Create(ctx context.Context, in CreateInput) (invoice.Invoice, error) {
	if strings.TrimSpace(in.InvoiceNumber) == "" {
		return invoice.Invoice{}, fmt.Errorf("invoice number is required")
	}

	now := s.now()
	inv := invoice.Invoice{
		ID:              fmt.Sprintf("%d-%s", now.UnixMilli(), s.idSuffix()),
		InvoiceNumber:   in.InvoiceNumber,
		Date:            in.Date,
		DueDate:         in.DueDate,
		Currency:        in.Currency,
		Items:           in.Items,
		Subtotal:        in.Subtotal,
		TaxRate:         in.TaxRate,
		TaxAmount:       in.TaxAmount,
		Total:           in.Total,
		BusinessPartner: in.BusinessPartner,
		Customer:        in.Customer,
		Status:          invoice.StatusProcessing,
		ReceivedAt:      &now,
		ProcessedAt:     &now,
	}
	if inv.Currency == "" {
		inv.Currency = "EUR"
	}

	if inv.Subtotal == nil || inv.TaxAmount == nil || inv.Total == nil {
		subtotal, tax, total := totals.Compute(inv)
		inv.Subtotal = &subtotal
		inv.TaxAmount = &tax
		inv.Total = &total
	} else if report := totals.Check(inv); !report.Consistent {
		// Caller-supplied aggregates are kept, but an inconsistency is
		// advisory-logged so it can be traced later.
		metrics.RecordTotalsMismatch()
		s.log.Warn("stored aggregates disagree with recomputed totals",
			"invoice_id", inv.ID,
			"invoice_number", inv.InvoiceNumber,
			"computed_subtotal", report.ComputedSubtotal,
			"computed_tax", report.ComputedTax,
			"computed_total", report.ComputedTotal,
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.GetAll(ctx, s.namespace)
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("load invoices: %w", err)
	}
	all = append(all, inv)
	if err := s.repo.ReplaceAll(ctx, s.namespace, all); err != nil {
		return invoice.Invoice{}, fmt.Errorf("store invoices: %w", err)
	}

	metrics.RecordInvoiceCreated()
	s.log.Info("invoice accepted for processing",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"status", inv.Status,
	)
	return inv, nil
}

// Outcome is the observable result of an asynchronous submission step.
type Outcome struct {
	InvoiceID string
	Status    invoice.Status
	Err       error
}

// SubmitAsync schedules exactly one gateway submission for the invoice and
// returns a channel that yields the outcome once the terminal state has been
// recorded. Once scheduled, the step always runs to completion: the wrapped
// context is detached from caller cancellation and bounded only by the
// configured timeout. Failures are recorded on the record and never escape
// the asynchronous boundary.
func (s *Service) SubmitAsync(ctx context.Context, inv invoice.Invoice) <-chan Outcome {
	done := make(chan Outcome, 1)

	go func() {
		detached := context.WithoutCancel(ctx)
		submitCtx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()

		result, err := s.gateway.Submit(submitCtx, inv)
		outcome := s.complete(detached, inv.ID, result, err)
		done <- outcome
		close(done)
	}()

	return done
}

// complete transitions the invoice to its terminal state and persists it.
// A transport error is treated identically to a non-delivered result.
// Completing an already-terminal invoice overwrites nothing and triggers no
// side effects, making repeated completion safe.
func (s *Service) complete(ctx context.Context, id string, result invoice.SubmissionResult, submitErr error) Outcome {
	now := s.now()

	delivered := submitErr == nil && result.Delivered
	reason := ""
	if !delivered {
		switch {
		case errors.Is(submitErr, context.DeadlineExceeded):
			reason = "timeout: gateway did not respond within the submission deadline"
		case submitErr != nil:
			reason = fmt.Sprintf("transport error: %v", submitErr)
		case result.ErrorMessage != "":
			reason = result.ErrorMessage
		default:
			reason = "delivery rejected by gateway"
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.GetAll(ctx, s.namespace)
	if err != nil {
		s.log.Error("submission completed but invoices could not be loaded", "invoice_id", id, "error", err)
		return Outcome{InvoiceID: id, Err: fmt.Errorf("load invoices: %w", err)}
	}

	idx := -1
	for i := range all {
		if all[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Error("submission completed for unknown invoice", "invoice_id", id)
		return Outcome{InvoiceID: id, Err: ErrNotFound}
	}

	if all[idx].Status.Terminal() {
		s.log.Warn("submission completion for already terminal invoice ignored",
			"invoice_id", id, "status", all[idx].Status)
		return Outcome{InvoiceID: id, Status: all[idx].Status}
	}

	if delivered {
		all[idx].Status = invoice.StatusSent
		all[idx].SentAt = &now
		all[idx].Error = ""
		all[idx].ErrorAt = nil
	} else {
		all[idx].Status = invoice.StatusFailed
		all[idx].ErrorAt = &now
		all[idx].Error = reason
	}

	if err := s.repo.ReplaceAll(ctx, s.namespace, all); err != nil {
		s.log.Error("failed to persist submission outcome", "invoice_id", id, "error", err)
		return Outcome{InvoiceID: id, Status: all[idx].Status, Err: fmt.Errorf("store invoices: %w", err)}
	}

	metrics.RecordSubmission(string(all[idx].Status))
	if delivered {
		s.log.Info("invoice delivered", "invoice_id", id, "reference", result.Reference)
	} else {
		s.log.Warn("invoice submission failed", "invoice_id", id, "reason", reason)
	}
	return Outcome{InvoiceID: id, Status: all[idx].Status}
}

// List returns the current invoice collection.
func (s *Service) List(ctx context.Context) ([]invoice.Invoice, error) {
	all, err := s.repo.GetAll(ctx, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	return all, nil
}

// Get returns a single invoice by id.
func (s *Service) Get(ctx context.Context, id string) (invoice.Invoice, error) {
	all, err := s.repo.GetAll(ctx, s.namespace)
	if err != nil {
		return invoice.Invoice{}, fmt.Errorf("load invoices: %w", err)
	}
	for i := range all {
		if all[i].ID == id {
			return all[i], nil
		}
	}
	return invoice.Invoice{}, ErrNotFound
}

func randomSuffix() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
