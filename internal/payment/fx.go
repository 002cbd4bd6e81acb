package payment

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/lokapasar/internal/config"
	"github.com/smallbiznis/lokapasar/internal/payment/adapters"
	"github.com/smallbiznis/lokapasar/internal/payment/adapters/stripe"
	"github.com/smallbiznis/lokapasar/internal/payment/domain"
	"github.com/smallbiznis/lokapasar/internal/payment/webhook"
)

func newRegistry() *adapters.Registry {
	return adapters.NewRegistry(stripe.NewFactory())
}

func newCheckoutClient(cfg config.Config) domain.CheckoutClient {
	return stripe.NewCheckoutClient(cfg.Stripe.APIKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
}

var Module = fx.Module("payment.service",
	fx.Provide(newRegistry),
	fx.Provide(newCheckoutClient),
	fx.Provide(webhook.New),
)
