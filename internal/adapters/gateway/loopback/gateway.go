package loopback

import (
	"context"
	"fmt"
	"log/slog"

	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
)

// Gateway implements invoice.SubmissionGateway without any network hop.
// Every invoice is reported as delivered. It backs local development and
// environments without access-point credentials.
type Gateway struct {
	log *slog.Logger
}

// New creates a loopback submission gateway.
func New(log *slog.Logger) invoice.SubmissionGateway {
	return &Gateway{log: log}
}

// Submit acknowledges the invoice immediately.
func (g *Gateway) Submit(ctx context.Context, inv invoice.Invoice) (invoice.SubmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return invoice.SubmissionResult{}, err
	}

	g.log.Info("loopback gateway accepted invoice", "invoice_id", inv.ID)

	return invoice.SubmissionResult{
		Delivered: true,
		Reference: fmt.Sprintf("loopback-%s", inv.ID),
	}, nil
}
