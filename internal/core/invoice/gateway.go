package invoice

import "context"

// SubmissionResult is the outcome reported by the outbound transmission
// channel for a single invoice.
type SubmissionResult struct {
	Delivered    bool   `json:"delivered"`
	Reference    string `json:"reference,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// SubmissionGateway is the outbound transmission channel. A returned error
// (transport failure) is treated by callers exactly like Delivered=false.
type SubmissionGateway interface {
	Submit(ctx context.Context, inv Invoice) (SubmissionResult, error)
}
