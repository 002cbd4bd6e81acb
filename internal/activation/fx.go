package activation

import (
	"github.com/smallbiznis/lokapasar/internal/activation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activation.service",
	fx.Provide(service.New),
)
