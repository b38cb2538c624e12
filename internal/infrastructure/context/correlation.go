package context

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// CorrelationIDKey is the context key for correlation IDs.
const CorrelationIDKey contextKey = "correlation_id"

// InvoiceIDKey is the context key for the invoice being processed.
const InvoiceIDKey contextKey = "invoice_id"

// WithCorrelationID adds a correlation ID to the context.
// The correlation ID tracks a request from the initial HTTP call through
// the asynchronous submission that outlives it.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationID retrieves the correlation ID from the context.
// Returns an empty string if no correlation ID is present.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithInvoiceID tags the context with the invoice currently in flight so
// gateway and repository logs can be tied back to a document.
func WithInvoiceID(ctx context.Context, invoiceID string) context.Context {
	return context.WithValue(ctx, InvoiceIDKey, invoiceID)
}

// GetInvoiceID retrieves the invoice ID from the context.
// Returns an empty string if no invoice ID is present.
func GetInvoiceID(ctx context.Context) string {
	if id, ok := ctx.Value(InvoiceIDKey).(string); ok {
		return id
	}
	return ""
}
