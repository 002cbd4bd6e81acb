package providers

import (
	"strings"

	"github.com/smallbiznis/lokapasar/internal/shipping/domain"
)

// Registry holds the configured shipping providers by name.
type Registry struct {
	providers map[string]domain.Provider
	fallback  domain.Provider
}

func NewRegistry(fallback domain.Provider, extra ...domain.Provider) *Registry {
	registry := &Registry{
		providers: map[string]domain.Provider{},
		fallback:  fallback,
	}
	if fallback != nil {
		registry.providers[strings.ToLower(fallback.Name())] = fallback
	}
	for _, provider := range extra {
		if provider == nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(provider.Name()))
		if name == "" {
			continue
		}
		registry.providers[name] = provider
	}
	return registry
}

// Resolve returns the named provider, falling back to the default when the
// name is empty or unknown.
func (r *Registry) Resolve(name string) domain.Provider {
	if r == nil {
		return nil
	}
	provider, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return r.fallback
	}
	return provider
}
