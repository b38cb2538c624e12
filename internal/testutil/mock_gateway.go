package testutil

import (
	"context"
	"sync"

	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
	"rechnungswerk/ms_einvoice_core/internal/core/issuer"
)

// MockGateway is a deterministic test double for invoice.SubmissionGateway.
type MockGateway struct {
	mu         sync.Mutex
	calls      []string
	SubmitFunc func(ctx context.Context, inv invoice.Invoice) (invoice.SubmissionResult, error)
}

// Submit calls the mock function if set, otherwise reports delivery.
func (m *MockGateway) Submit(ctx context.Context, inv invoice.Invoice) (invoice.SubmissionResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, inv.ID)
	m.mu.Unlock()

	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, inv)
	}
	return invoice.SubmissionResult{Delivered: true, Reference: "mock-ref"}, nil
}

// Calls returns the invoice ids submitted so far.
func (m *MockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockIssuerProvider is a test double for issuer.Provider.
type MockIssuerProvider struct {
	Config issuer.Config
	Err    error
}

// Get returns the configured profile or error.
func (m *MockIssuerProvider) Get(_ context.Context) (issuer.Config, error) {
	return m.Config, m.Err
}
