package paymentgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storefronthq/storefront/internal/domain/payment"
)

// Client talks to a hosted-checkout payment provider over HTTP. The
// provider is opaque: one POST creates a session, anything non-2xx is a
// provider failure surfaced as payment.ErrProvider.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

type lineItemPayload struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	UnitAmount float64 `json:"unit_amount"`
	Quantity   int     `json:"quantity"`
}

type sessionPayload struct {
	LineItems  []lineItemPayload `json:"line_items"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

func (c *Client) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	payload := sessionPayload{
		LineItems:  make([]lineItemPayload, 0, len(req.LineItems)),
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	}
	for _, li := range req.LineItems {
		payload.LineItems = append(payload.LineItems, lineItemPayload{
			ProductID:  li.ProductID,
			Name:       li.Name,
			UnitAmount: li.UnitAmount,
			Quantity:   li.Quantity,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", payment.ErrProvider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", payment.ErrProvider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", payment.ErrProvider, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", payment.ErrProvider, resp.StatusCode)
	}

	var decoded sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", payment.ErrProvider, err)
	}
	if decoded.SessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", payment.ErrProvider)
	}

	return &payment.Session{ID: decoded.SessionID, URL: decoded.URL}, nil
}
