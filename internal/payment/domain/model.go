package domain

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	EventTypePaymentSucceeded = "payment.succeeded"
	EventTypePaymentFailed    = "payment.failed"
	EventTypeRefunded         = "payment.refunded"
)

// PaymentEvent is the provider-agnostic shape webhook payloads normalize to.
// OrderID comes from the metadata stamped onto the provider object at
// checkout time.
type PaymentEvent struct {
	Provider          string
	ProviderEventID   string
	ProviderPaymentID string
	Type              string
	OrderID           int64
	Amount            int64
	Currency          string
	OccurredAt        time.Time
	RawPayload        []byte
}

// PaymentAdapter verifies and normalizes one provider's webhook traffic.
type PaymentAdapter interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PaymentEvent, error)
}

type AdapterConfig struct {
	Config map[string]string
}

type AdapterFactory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (PaymentAdapter, error)
}

// CheckoutSession is a hosted payment page created for one order.
type CheckoutSession struct {
	ID  string
	URL string
}

type CheckoutParams struct {
	OrderID       int64
	OrderNumber   string
	Amount        int64
	Currency      string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutClient creates hosted checkout sessions with the provider.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
}

var (
	ErrProviderNotFound = errors.New("payment_provider_not_found")
	ErrInvalidConfig    = errors.New("invalid_provider_config")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrEventIgnored     = errors.New("event_ignored")
	ErrMissingOrderID   = errors.New("missing_order_id")
)
