package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/lokapasar/internal/config"
	"github.com/smallbiznis/lokapasar/internal/shipping/domain"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	holder, err := config.NewStaticRatesHolder(config.ShippingRates{
		Currency: "EUR",
		Zones: []config.ShippingZone{
			{
				Name:      "domestic",
				Countries: []string{"NL"},
				Brackets: []config.WeightBracket{
					{MaxWeightGrams: 2000, AmountCents: 495},
					{MaxWeightGrams: 0, AmountCents: 1295},
				},
			},
			{
				Name:      "eu",
				Countries: []string{"BE", "DE"},
				Brackets: []config.WeightBracket{
					{MaxWeightGrams: 2000, AmountCents: 895},
				},
			},
		},
	})
	require.NoError(t, err)
	return New(holder)
}

func TestQuote(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		country     string
		weightGrams int
		wantZone    string
		wantAmount  int64
	}{
		{name: "domestic first bracket", country: "NL", weightGrams: 500, wantZone: "domestic", wantAmount: 495},
		{name: "bracket boundary is inclusive", country: "NL", weightGrams: 2000, wantZone: "domestic", wantAmount: 495},
		{name: "unbounded top bracket", country: "NL", weightGrams: 25000, wantZone: "domestic", wantAmount: 1295},
		{name: "eu zone", country: "DE", weightGrams: 1000, wantZone: "eu", wantAmount: 895},
		{name: "country code is case insensitive", country: "de", weightGrams: 1000, wantZone: "eu", wantAmount: 895},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := provider.Quote(ctx, domain.QuoteRequest{
				Country:     tt.country,
				WeightGrams: tt.weightGrams,
			})
			require.NoError(t, err)
			assert.Equal(t, "static", quote.Provider)
			assert.Equal(t, tt.wantZone, quote.Zone)
			assert.Equal(t, "EUR", quote.Currency)
			assert.Equal(t, tt.wantAmount, quote.Amount)
		})
	}
}

func TestQuote_Errors(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Quote(ctx, domain.QuoteRequest{Country: "USA", WeightGrams: 500})
	assert.ErrorIs(t, err, domain.ErrInvalidCountry)

	_, err = provider.Quote(ctx, domain.QuoteRequest{Country: "", WeightGrams: 500})
	assert.ErrorIs(t, err, domain.ErrInvalidCountry)

	_, err = provider.Quote(ctx, domain.QuoteRequest{Country: "NL", WeightGrams: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidWeight)

	// No zone covers this country.
	_, err = provider.Quote(ctx, domain.QuoteRequest{Country: "JP", WeightGrams: 500})
	assert.ErrorIs(t, err, domain.ErrNoRate)

	// EU zone has no unbounded bracket, so overweight parcels have no rate.
	_, err = provider.Quote(ctx, domain.QuoteRequest{Country: "DE", WeightGrams: 5000})
	assert.ErrorIs(t, err, domain.ErrNoRate)
}

func TestValidateRejectsEmptyTable(t *testing.T) {
	_, err := config.NewStaticRatesHolder(config.ShippingRates{Currency: "EUR"})
	assert.Error(t, err)
}
