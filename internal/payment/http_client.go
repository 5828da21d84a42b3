package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPClient checks advance-payment status against the payment service's
// REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates an HTTPClient for the payment service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type advanceStatusResponse struct {
	BookingID uuid.UUID `json:"booking_id"`
	Complete  bool      `json:"complete"`
}

// IsComplete calls GET /api/v1/payments/advance/:bookingID/status. An unknown
// booking counts as not paid rather than an error.
func (c *HTTPClient) IsComplete(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/payments/advance/%s/status", c.baseURL, bookingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build payment status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("payment status request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var body advanceStatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, fmt.Errorf("failed to decode payment status response: %w", err)
		}
		return body.Complete, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("payment service returned status %d", resp.StatusCode)
	}
}
