package webhook

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/lokapasar/internal/config"
	orderdomain "github.com/smallbiznis/lokapasar/internal/order/domain"
	"github.com/smallbiznis/lokapasar/internal/payment/adapters"
	"github.com/smallbiznis/lokapasar/internal/payment/domain"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Registry *adapters.Registry
	Orders   orderdomain.Service
}

// Service verifies an incoming provider webhook, normalizes it, and applies
// the resulting transition to the order it references.
type Service struct {
	log      *zap.Logger
	cfg      config.Config
	registry *adapters.Registry
	orders   orderdomain.Service
}

func New(p Params) *Service {
	return &Service{
		log:      p.Log.Named("payment.webhook"),
		cfg:      p.Config,
		registry: p.Registry,
		orders:   p.Orders,
	}
}

func (s *Service) Handle(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	adapter, err := s.registry.NewAdapter(provider, s.adapterConfig(provider))
	if err != nil {
		return err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook rejected", zap.String("provider", provider), zap.Error(err))
		return err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrEventIgnored) {
			return nil
		}
		return err
	}

	s.log.Info("payment event",
		zap.String("provider", event.Provider),
		zap.String("event_id", event.ProviderEventID),
		zap.String("type", event.Type),
	)
	return s.orders.ApplyPaymentEvent(ctx, event)
}

func (s *Service) adapterConfig(provider string) domain.AdapterConfig {
	switch provider {
	case "stripe":
		return domain.AdapterConfig{Config: map[string]string{
			"webhook_secret": s.cfg.Stripe.WebhookSecret,
		}}
	default:
		return domain.AdapterConfig{}
	}
}
