package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/lokapasar/internal/config"
	"github.com/smallbiznis/lokapasar/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		if err := seed.EnsureDefaultCategory(conn); err != nil {
			return err
		}
		if cfg.SeedDemo {
			return seed.EnsureDemoCatalog(conn)
		}
		return nil
	}),
)
