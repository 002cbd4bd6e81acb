package packlink

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/lokapasar/internal/shipping/domain"
)

// Provider adapts the Packlink client to the shipping provider contract.
// Shipments originate from the configured warehouse country.
type Provider struct {
	client      *Client
	fromCountry string
}

func NewProvider(client *Client, fromCountry string) *Provider {
	if strings.TrimSpace(fromCountry) == "" {
		fromCountry = "NL"
	}
	return &Provider{client: client, fromCountry: strings.ToUpper(fromCountry)}
}

func (p *Provider) Name() string { return "packlink" }

func (p *Provider) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if len(country) != 2 {
		return nil, domain.ErrInvalidCountry
	}
	if req.WeightGrams <= 0 {
		return nil, domain.ErrInvalidWeight
	}

	_, currency, amount, err := p.client.CheapestService(ctx, p.fromCountry, country, req.WeightGrams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	return &domain.Quote{
		Provider: p.Name(),
		Currency: currency,
		Amount:   amount,
	}, nil
}
