package peppol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"rechnungswerk/ms_einvoice_core/internal/application/xrechnung"
	"rechnungswerk/ms_einvoice_core/internal/core/invoice"
	"rechnungswerk/ms_einvoice_core/internal/core/issuer"
	ctxutil "rechnungswerk/ms_einvoice_core/internal/infrastructure/context"
)

// Client implements the invoice.SubmissionGateway interface against a
// Peppol-style access point. The invoice is rendered as an XRechnung
// document and posted as XML.
type Client struct {
	baseURL    string
	auth       *AuthManager
	httpClient HTTPClient
	issuer     issuer.Provider
	log        *slog.Logger
}

// submissionResponse is the access point's reply to a document post.
type submissionResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// NewClient creates a new access-point submission client.
func NewClient(baseURL string, auth *AuthManager, httpClient HTTPClient, issuerProvider issuer.Provider, log *slog.Logger) invoice.SubmissionGateway {
	return &Client{
		baseURL:    baseURL,
		auth:       auth,
		httpClient: httpClient,
		issuer:     issuerProvider,
		log:        log,
	}
}

// Submit renders the invoice as XRechnung XML and delivers it to the
// access point. A rejected document is reported through the result,
// not the error: errors are reserved for transport-level failures.
func (c *Client) Submit(ctx context.Context, inv invoice.Invoice) (invoice.SubmissionResult, error) {
	ctx = ctxutil.WithInvoiceID(ctx, inv.ID)

	issuerCfg, err := c.issuer.Get(ctx)
	if err != nil {
		c.log.Warn("issuer lookup failed, using defaults",
			"invoice_id", inv.ID, "error", err)
		issuerCfg = issuer.Config{}
	}

	document, err := xrechnung.Encode(inv, issuerCfg)
	if err != nil {
		return invoice.SubmissionResult{
			Delivered:    false,
			ErrorMessage: fmt.Sprintf("document encoding failed: %v", err),
		}, nil
	}

	resp, body, err := c.post(ctx, document, inv.ID)
	if err != nil {
		return invoice.SubmissionResult{}, err
	}

	// A stale token gets one retry with fresh credentials.
	if resp.StatusCode == http.StatusUnauthorized {
		c.auth.ClearToken()
		resp, body, err = c.post(ctx, document, inv.ID)
		if err != nil {
			return invoice.SubmissionResult{}, err
		}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var parsed submissionResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			// Some access points answer with a bare reference string.
			parsed.Reference = strings.TrimSpace(string(body))
		}
		c.log.Info("invoice delivered to access point",
			"invoice_id", inv.ID, "reference", parsed.Reference)
		return invoice.SubmissionResult{
			Delivered: true,
			Reference: parsed.Reference,
		}, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		message := rejectionMessage(body, resp.StatusCode)
		c.log.Warn("invoice rejected by access point",
			"invoice_id", inv.ID, "status", resp.StatusCode, "message", message)
		return invoice.SubmissionResult{
			Delivered:    false,
			ErrorMessage: message,
		}, nil

	default:
		return invoice.SubmissionResult{}, fmt.Errorf(
			"access point returned status %d: %s", resp.StatusCode, string(body))
	}
}

// post sends the encoded document to the submission endpoint.
func (c *Client) post(ctx context.Context, document, invoiceID string) (*http.Response, []byte, error) {
	token, err := c.auth.GetToken(ctx)
	if err != nil {
		return nil, nil, err
	}

	url := fmt.Sprintf("%s/api/v1/documents", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(document))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Authorization", "Bearer "+token)
	if correlationID := ctxutil.GetCorrelationID(ctx); correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}
	req.Header.Set("X-Document-ID", invoiceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}

	return resp, body, nil
}

// rejectionMessage extracts a human-readable reason from an error response.
func rejectionMessage(body []byte, statusCode int) string {
	var parsed submissionResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}

	text := strings.TrimSpace(string(body))
	if text != "" {
		return text
	}

	return fmt.Sprintf("access point rejected the document with status %d", statusCode)
}
