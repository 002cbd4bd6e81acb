package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	paymentdomain "github.com/smallbiznis/lokapasar/internal/payment/domain"
)

type stripeCheckoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CheckoutClient creates hosted checkout sessions against the Stripe REST
// API. Requests carry a fresh idempotency key so a retried call cannot open
// a second session for the same attempt.
type CheckoutClient struct {
	apiKey     string
	successURL string
	cancelURL  string
	client     *http.Client
}

func NewCheckoutClient(apiKey, successURL, cancelURL string) *CheckoutClient {
	return &CheckoutClient{
		apiKey:     strings.TrimSpace(apiKey),
		successURL: strings.TrimSpace(successURL),
		cancelURL:  strings.TrimSpace(cancelURL),
		client:     &http.Client{Timeout: 12 * time.Second},
	}
}

func (c *CheckoutClient) CreateCheckoutSession(ctx context.Context, params paymentdomain.CheckoutParams) (*paymentdomain.CheckoutSession, error) {
	if c.apiKey == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}

	values := url.Values{}
	values.Set("mode", "payment")
	values.Set("success_url", c.successURL)
	values.Set("cancel_url", c.cancelURL)
	values.Set("line_items[0][quantity]", "1")
	values.Set("line_items[0][price_data][currency]", strings.ToLower(params.Currency))
	values.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.Amount, 10))
	values.Set("line_items[0][price_data][product_data][name]", params.Description)
	values.Set("metadata[order_id]", snowflake.ID(params.OrderID).String())
	values.Set("metadata[order_number]", params.OrderNumber)
	values.Set("payment_intent_data[metadata][order_id]", snowflake.ID(params.OrderID).String())
	if params.CustomerEmail != "" {
		values.Set("customer_email", params.CustomerEmail)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.stripe.com/v1/checkout/sessions",
		strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return nil, errors.New("stripe_request_failed")
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			message = "stripe_request_failed"
		}
		return nil, errors.New(message)
	}

	var session stripeCheckoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	if session.ID == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	return &paymentdomain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}
