package testutil

import (
	"context"
	"sync"

	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
)

// MockRepository is an in-memory implementation of invoice.Repository for
// testing. Optional function hooks override the default behavior to inject
// errors.
type MockRepository struct {
	mu          sync.Mutex
	collections map[string][]invoice.Invoice

	GetAllFunc     func(ctx context.Context, namespace string) ([]invoice.Invoice, error)
	ReplaceAllFunc func(ctx context.Context, namespace string, invoices []invoice.Invoice) error
}

// NewMockRepository creates an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{collections: make(map[string][]invoice.Invoice)}
}

// GetAll calls the hook if set, otherwise returns a copy of the stored
// collection.
func (m *MockRepository) GetAll(ctx context.Context, namespace string) ([]invoice.Invoice, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx, namespace)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.collections[namespace]
	out := make([]invoice.Invoice, len(stored))
	copy(out, stored)
	return out, nil
}

// ReplaceAll calls the hook if set, otherwise stores a copy of the given
// collection.
func (m *MockRepository) ReplaceAll(ctx context.Context, namespace string, invoices []invoice.Invoice) error {
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(ctx, namespace, invoices)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]invoice.Invoice, len(invoices))
	copy(stored, invoices)
	m.collections[namespace] = stored
	return nil
}

// Stored returns the current collection for direct assertions.
func (m *MockRepository) Stored(namespace string) []invoice.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collections[namespace]
}

// Seed replaces the stored collection without going through ReplaceAll.
func (m *MockRepository) Seed(namespace string, invoices []invoice.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[namespace] = invoices
}
