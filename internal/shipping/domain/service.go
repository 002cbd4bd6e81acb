package domain

import (
	"context"
	"errors"
)

type QuoteRequest struct {
	Country     string `json:"country"`
	WeightGrams int    `json:"weight_grams"`
}

type Quote struct {
	Provider string `json:"provider"`
	Zone     string `json:"zone,omitempty"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

// Provider quotes a shipment. Implementations are registered by name and
// selected through configuration.
type Provider interface {
	Name() string
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

var (
	ErrInvalidCountry  = errors.New("invalid_country")
	ErrInvalidWeight   = errors.New("invalid_weight")
	ErrNoRate          = errors.New("no_shipping_rate")
	ErrProviderFailure = errors.New("shipping_provider_failure")
)
