package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
)

// keyPrefix namespaces invoice collections within a shared Redis instance.
const keyPrefix = "einvoice:collection:"

// Repository implements the invoice.Repository interface on Redis.
// The whole collection is stored as a single JSON value per namespace,
// mirroring the PostgreSQL adapter's replace-on-write contract.
type Repository struct {
	client goredis.Cmdable
}

// NewRepository creates a new Redis invoice repository.
func NewRepository(client goredis.Cmdable) invoice.Repository {
	return &Repository{client: client}
}

// GetAll loads the invoice collection stored under the given namespace.
// A namespace that was never written yields an empty slice.
func (r *Repository) GetAll(ctx context.Context, namespace string) ([]invoice.Invoice, error) {
	payload, err := r.client.Get(ctx, keyPrefix+namespace).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return []invoice.Invoice{}, nil
		}
		return nil, fmt.Errorf("get invoice collection: %w", err)
	}

	var invoices []invoice.Invoice
	if err := json.Unmarshal(payload, &invoices); err != nil {
		return nil, fmt.Errorf("unmarshal invoice collection: %w", err)
	}

	if invoices == nil {
		invoices = []invoice.Invoice{}
	}

	return invoices, nil
}

// ReplaceAll overwrites the invoice collection stored under the given namespace.
func (r *Repository) ReplaceAll(ctx context.Context, namespace string, invoices []invoice.Invoice) error {
	if invoices == nil {
		invoices = []invoice.Invoice{}
	}

	payload, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("marshal invoice collection: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+namespace, payload, 0).Err(); err != nil {
		return fmt.Errorf("set invoice collection: %w", err)
	}

	return nil
}
