package invoice

import "time"

// Status is the lifecycle state of an invoice.
type Status string

const (
	// StatusReceived is transient: it marks the instant a submission was
	// accepted, before the record is durably stored. The first persisted
	// state is always StatusProcessing.
	StatusReceived   Status = "received"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition may leave this status.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Item is a single invoice line. Quantity and Price are pointers because the
// legacy data distinguishes "absent" from zero: an absent quantity counts as 1
// and an absent price as 0 when totals are recomputed.
type Item struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// PartnerAddress is the structured postal address carried by the modern
// business-partner shape. Email and TaxID may live here instead of on the
// partner itself in older records.
type PartnerAddress struct {
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"houseNumber,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	Country     string `json:"country,omitempty"`
	Email       string `json:"email,omitempty"`
	TaxID       string `json:"taxId,omitempty"`
}

// BusinessPartner is the modern counterpart (buyer) shape.
type BusinessPartner struct {
	Name    string          `json:"name,omitempty"`
	Email   string          `json:"email,omitempty"`
	TaxID   string          `json:"taxId,omitempty"`
	Address *PartnerAddress `json:"address,omitempty"`
}

// LegacyCustomer is the pre-migration counterpart shape. Its address is a
// single free-text line without structured postal fields.
type LegacyCustomer struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
	Address string `json:"address,omitempty"`
}

// Invoice is the central entity. At most one of BusinessPartner and Customer
// is expected to be set; both absent is valid and degrades to defaults.
// Aggregate fields are pointers so that "absent" survives persistence: the
// encoder refuses to produce a document without them, while the totals
// validator recomputes its own view from the items.
type Invoice struct {
	ID              string           `json:"id"`
	InvoiceNumber   string           `json:"invoiceNumber"`
	Date            string           `json:"date,omitempty"`
	DueDate         string           `json:"dueDate,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	Items           []Item           `json:"items"`
	Subtotal        *float64         `json:"subtotal,omitempty"`
	TaxRate         *float64         `json:"taxRate,omitempty"`
	TaxAmount       *float64         `json:"taxAmount,omitempty"`
	Total           *float64         `json:"total,omitempty"`
	BusinessPartner *BusinessPartner `json:"businessPartner,omitempty"`
	Customer        *LegacyCustomer  `json:"customer,omitempty"`
	Status          Status           `json:"status"`
	ReceivedAt      *time.Time       `json:"receivedAt,omitempty"`
	ProcessedAt     *time.Time       `json:"processedAt,omitempty"`
	SentAt          *time.Time       `json:"sentAt,omitempty"`
	ErrorAt         *time.Time       `json:"errorAt,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// CurrencyOrDefault returns the invoice currency, falling back to EUR.
func (i Invoice) CurrencyOrDefault() string {
	if i.Currency == "" {
		return "EUR"
	}
	return i.Currency
}
