package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/lokapasar/internal/config"
	"github.com/smallbiznis/lokapasar/internal/observability/metrics"
	"github.com/smallbiznis/lokapasar/internal/shipping/domain"
	"github.com/smallbiznis/lokapasar/internal/shipping/providers"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Registry *providers.Registry
	Metrics  *metrics.Metrics
}

type Service struct {
	log      *zap.Logger
	provider domain.Provider
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("shipping.service"),
		provider: p.Registry.Resolve(p.Config.Shipping.Provider),
		metrics:  p.Metrics,
	}
}

func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	quote, err := s.provider.Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordShippingQuote(ctx, quote.Provider)
	}
	return quote, nil
}
