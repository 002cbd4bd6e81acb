package shipping

import (
	"strings"

	"go.uber.org/fx"

	"github.com/smallbiznis/lokapasar/internal/config"
	"github.com/smallbiznis/lokapasar/internal/shipping/providers"
	"github.com/smallbiznis/lokapasar/internal/shipping/providers/packlink"
	"github.com/smallbiznis/lokapasar/internal/shipping/providers/static"
	"github.com/smallbiznis/lokapasar/internal/shipping/service"
)

func newRegistry(cfg config.Config, rates *config.ShippingRatesHolder) *providers.Registry {
	fallback := static.New(rates)
	if strings.TrimSpace(cfg.Shipping.PacklinkAPIKey) == "" {
		return providers.NewRegistry(fallback)
	}
	client := packlink.NewClient(cfg.Shipping.PacklinkAPIKey, cfg.Shipping.PacklinkURL)
	return providers.NewRegistry(fallback, packlink.NewProvider(client, ""))
}

var Module = fx.Module("shipping.service",
	fx.Provide(newRegistry),
	fx.Provide(service.New),
)
