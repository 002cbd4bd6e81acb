package adapters

import (
	"strings"

	"github.com/smallbiznis/lokapasar/internal/payment/domain"
)

// Registry resolves payment adapter factories by provider name. Names are
// matched case-insensitively so webhook URLs can carry any casing.
type Registry struct {
	byProvider map[string]domain.AdapterFactory
}

func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	byProvider := make(map[string]domain.AdapterFactory, len(factories))
	for _, f := range factories {
		if f == nil {
			continue
		}
		name := normalizeProvider(f.Provider())
		if name == "" {
			continue
		}
		byProvider[name] = f
	}
	return &Registry{byProvider: byProvider}
}

func (r *Registry) NewAdapter(provider string, cfg domain.AdapterConfig) (domain.PaymentAdapter, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	f, ok := r.byProvider[normalizeProvider(provider)]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return f.NewAdapter(cfg)
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
