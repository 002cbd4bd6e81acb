package banner

import (
	"github.com/smallbiznis/lokapasar/internal/banner/repository"
	"github.com/smallbiznis/lokapasar/internal/banner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("banner.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
