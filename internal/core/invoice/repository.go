package invoice

import "context"

// Repository is durable keyed list storage for invoice collections. The
// backing store only offers full-collection semantics: there is no
// partial-update primitive, and no transaction spans a GetAll/ReplaceAll
// pair. Callers own the read-modify-write cycle.
type Repository interface {
	GetAll(ctx context.Context, namespace string) ([]Invoice, error)
	ReplaceAll(ctx context.Context, namespace string, invoices []Invoice) error
}
