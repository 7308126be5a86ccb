// Package payments implements the outbound payment authority port against
// the payments service's REST API.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

const requestTimeout = 5 * time.Second

type paymentStatusResponse struct {
	OrderID string `json:"orderId"`
	Paid    bool   `json:"paid"`
}

// HTTPPaymentAuthority asks the payments service whether an order's payment
// has settled.
type HTTPPaymentAuthority struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPaymentAuthority creates a payment authority client. baseURL points
// at the payments service root, e.g. "http://payments:8080".
func NewHTTPPaymentAuthority(baseURL string) *HTTPPaymentAuthority {
	return &HTTPPaymentAuthority{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// IsPaid reports whether the payment for the given order has settled. An
// unknown order is reported as unpaid rather than as an error, so admission
// can proceed with quota consumption deferred.
func (a *HTTPPaymentAuthority) IsPaid(ctx context.Context, orderID kernel.UUID) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/payments/%s/status", a.baseURL, orderID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("payment status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment status request: unexpected status %d", resp.StatusCode)
	}

	var body paymentStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("payment status response: %w", err)
	}
	return body.Paid, nil
}
