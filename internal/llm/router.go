package llm

import (
	"fmt"
	"sort"
	"sync"
)

// Router keeps the registered providers and the one selected by default
type Router struct {
	providers       map[string]Provider
	defaultProvider string
	mu              sync.RWMutex
}

// NewRouter creates a new provider router
func NewRouter(defaultProvider string) *Router {
	return &Router{
		providers:       make(map[string]Provider),
		defaultProvider: defaultProvider,
	}
}

// RegisterProvider registers a provider under its name
func (r *Router) RegisterProvider(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// GetProvider returns a provider by name. The credential may still come from
// the stored preferences, so unconfigured providers are returned as well.
func (r *Router) GetProvider(name string) (Provider, error) {
	if name == "" {
		name = r.defaultProvider
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", name)
	}
	return p, nil
}

// DefaultProvider returns the default provider name
func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

// ProviderInfo contains information about a provider
type ProviderInfo struct {
	Name       string   `json:"name"`
	Models     []string `json:"models"`
	Default    bool     `json:"default"`
	Configured bool     `json:"configured"`
}

// GetProvidersInfo returns information about all providers, sorted by name
func (r *Router) GetProvidersInfo() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for name, p := range r.providers {
		infos = append(infos, ProviderInfo{
			Name:       name,
			Models:     p.AvailableModels(),
			Default:    name == r.defaultProvider,
			Configured: p.IsConfigured(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
