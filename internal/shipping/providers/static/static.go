package static

import (
	"context"
	"strings"

	"github.com/smallbiznis/lokapasar/internal/config"
	"github.com/smallbiznis/lokapasar/internal/shipping/domain"
)

// Provider quotes shipments from the hot-reloadable rate table: the shipment
// country picks a zone, the weight picks a bracket inside that zone.
type Provider struct {
	rates *config.ShippingRatesHolder
}

func New(rates *config.ShippingRatesHolder) *Provider {
	return &Provider{rates: rates}
}

func (p *Provider) Name() string { return "static" }

func (p *Provider) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if len(country) != 2 {
		return nil, domain.ErrInvalidCountry
	}
	if req.WeightGrams <= 0 {
		return nil, domain.ErrInvalidWeight
	}

	rates := p.rates.Current()
	for _, zone := range rates.Zones {
		if !zoneCovers(zone.Countries, country) {
			continue
		}
		for _, bracket := range zone.Brackets {
			// MaxWeightGrams 0 marks the unbounded top bracket.
			if bracket.MaxWeightGrams == 0 || req.WeightGrams <= bracket.MaxWeightGrams {
				return &domain.Quote{
					Provider: p.Name(),
					Zone:     zone.Name,
					Currency: rates.Currency,
					Amount:   bracket.AmountCents,
				}, nil
			}
		}
	}
	return nil, domain.ErrNoRate
}

func zoneCovers(countries []string, country string) bool {
	for _, candidate := range countries {
		if strings.EqualFold(candidate, country) {
			return true
		}
	}
	return false
}
