package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"rechnungswerk/ms_einvoice_core/internal/core/invoice"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the invoice.Repository interface using PostgreSQL.
// Each namespace owns a single JSONB document column holding the full
// invoice collection, replaced atomically on every write.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL invoice repository.
func NewRepository(pool *pgxpool.Pool) invoice.Repository {
	return &Repository{pool: pool}
}

// GetAll loads the invoice collection stored under the given namespace.
// A namespace that was never written yields an empty slice.
func (r *Repository) GetAll(ctx context.Context, namespace string) ([]invoice.Invoice, error) {
	query := "SELECT documents FROM invoice_collection WHERE namespace = $1"

	var documents []byte
	err := r.pool.QueryRow(ctx, query, namespace).Scan(&documents)
	if err != nil {
		if err == pgx.ErrNoRows {
			return []invoice.Invoice{}, nil
		}
		return nil, fmt.Errorf("query invoice collection: %w", err)
	}

	var invoices []invoice.Invoice
	if err := json.Unmarshal(documents, &invoices); err != nil {
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

	documents, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("marshal invoice collection: %w", err)
	}

	query := `
		INSERT INTO invoice_collection (namespace, documents, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (namespace)
		DO UPDATE SET documents = EXCLUDED.documents, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, namespace, documents); err != nil {
		return fmt.Errorf("replace invoice collection: %w", err)
	}

	return nil
}
