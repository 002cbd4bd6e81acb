package variant

import (
	"github.com/smallbiznis/lokapasar/internal/variant/repository"
	"github.com/smallbiznis/lokapasar/internal/variant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("variant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
