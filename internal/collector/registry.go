package collector

import (
	"fmt"
	"sync"

	"github.com/jadaunkg/horizon/internal/core"
)

// Registry manages data provider plugins
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Collector
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Collector),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[c.Name()] = c
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Collector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.providers[name]
	if !ok {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown data provider: %s", name))
	}
	return c, nil
}

// Names returns the registered provider names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
