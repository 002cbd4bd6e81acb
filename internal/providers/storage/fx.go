package storage

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/lokapasar/internal/config"
)

// NewFromConfig selects the storage backend from configuration. An empty
// or unknown provider falls back to the no-op backend so local development
// does not require Cloudinary credentials.
func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	switch cfg.Storage.Provider {
	case "cloudinary":
		if cfg.Storage.CloudName == "" || cfg.Storage.APIKey == "" || cfg.Storage.APISecret == "" {
			log.Warn("cloudinary storage configured without credentials, using noop")
			return &NoOpProvider{}
		}
		return NewCloudinary(CloudinaryConfig{
			CloudName: cfg.Storage.CloudName,
			APIKey:    cfg.Storage.APIKey,
			APISecret: cfg.Storage.APISecret,
			Folder:    cfg.Storage.Folder,
		})
	default:
		return &NoOpProvider{}
	}
}

var Module = fx.Module("providers.storage",
	fx.Provide(NewFromConfig),
)
