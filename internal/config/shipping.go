package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ShippingRates is the static rate table used when no carrier integration is
// configured. Zones match on country code; brackets on parcel weight.
type ShippingRates struct {
	Currency string         `mapstructure:"currency"`
	Zones    []ShippingZone `mapstructure:"zones"`
}

type ShippingZone struct {
	Name      string           `mapstructure:"name"`
	Countries []string         `mapstructure:"countries"`
	Brackets  []WeightBracket  `mapstructure:"brackets"`
}

type WeightBracket struct {
	MaxWeightGrams int   `mapstructure:"maxWeightGrams"` // 0 means no upper bound
	AmountCents    int64 `mapstructure:"amountCents"`
}

func DefaultShippingRates() ShippingRates {
	return ShippingRates{
		Currency: "EUR",
		Zones: []ShippingZone{
			{
				Name:      "domestic",
				Countries: []string{"NL"},
				Brackets: []WeightBracket{
					{MaxWeightGrams: 2000, AmountCents: 495},
					{MaxWeightGrams: 10000, AmountCents: 795},
					{MaxWeightGrams: 0, AmountCents: 1295},
				},
			},
			{
				Name:      "eu",
				Countries: []string{"BE", "DE", "FR", "LU"},
				Brackets: []WeightBracket{
					{MaxWeightGrams: 2000, AmountCents: 895},
					{MaxWeightGrams: 10000, AmountCents: 1495},
					{MaxWeightGrams: 0, AmountCents: 2495},
				},
			},
		},
	}
}

// ShippingRatesHolder serves the current rate table and hot-reloads it when
// the config file changes on disk.
type ShippingRatesHolder struct {
	current atomic.Value // holds ShippingRates
}

func NewShippingRatesHolder(log *zap.Logger) (*ShippingRatesHolder, error) {
	v := viper.New()

	v.SetConfigName("shipping")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/lokapasar/config")
	v.AddConfigPath("/etc/lokapasar")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LOKAPASAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		defaults := DefaultShippingRates()
		v.SetDefault("shipping.currency", defaults.Currency)
		v.SetDefault("shipping.zones", defaults.Zones)
	}

	var rates ShippingRates
	if err := v.UnmarshalKey("shipping", &rates); err != nil {
		return nil, err
	}
	if err := validateShippingRates(rates); err != nil {
		return nil, err
	}

	holder := &ShippingRatesHolder{}
	holder.current.Store(rates)

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		var next ShippingRates
		if err := v.UnmarshalKey("shipping", &next); err != nil {
			log.Warn("shipping rates reload failed", zap.Error(err))
			return
		}
		if err := validateShippingRates(next); err != nil {
			log.Warn("shipping rates reload rejected", zap.Error(err))
			return
		}
		holder.current.Store(next)
		log.Info("shipping rates reloaded")
	})

	return holder, nil
}

// NewStaticRatesHolder wraps a fixed rate table without file watching.
func NewStaticRatesHolder(rates ShippingRates) (*ShippingRatesHolder, error) {
	if err := validateShippingRates(rates); err != nil {
		return nil, err
	}
	holder := &ShippingRatesHolder{}
	holder.current.Store(rates)
	return holder, nil
}

// Current returns the active rate table.
func (h *ShippingRatesHolder) Current() ShippingRates {
	return h.current.Load().(ShippingRates)
}

func validateShippingRates(rates ShippingRates) error {
	if strings.TrimSpace(rates.Currency) == "" {
		return errors.New("shipping rates: currency is required")
	}
	if len(rates.Zones) == 0 {
		return errors.New("shipping rates: at least one zone is required")
	}
	for _, zone := range rates.Zones {
		if len(zone.Countries) == 0 {
			return errors.New("shipping rates: zone without countries")
		}
		if len(zone.Brackets) == 0 {
			return errors.New("shipping rates: zone without brackets")
		}
		for _, bracket := range zone.Brackets {
			if bracket.AmountCents < 0 {
				return errors.New("shipping rates: negative amount")
			}
		}
	}
	return nil
}
