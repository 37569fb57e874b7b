package marketplace

import (
	"fmt"

	"MarketSync/internal/ports"
)

// Target carries the per-account parameters a driver factory needs. Campaign
// and warehouse identifiers are empty for drivers that do not use them.
type Target struct {
	Name        string
	CampaignID  string
	WarehouseID string
}

// Factory builds a marketplace adapter bound to one configured target.
type Factory func(target Target) (ports.Marketplace, error)

// Registry keeps a mapping from driver names to adapter factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds or replaces a driver factory.
func (r *Registry) Register(driver string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[driver] = factory
}

// Resolve returns the factory for a driver or an error if it is absent.
func (r *Registry) Resolve(driver string) (Factory, error) {
	if factory, ok := r.factories[driver]; ok {
		return factory, nil
	}
	return nil, fmt.Errorf("marketplace driver %s is not registered", driver)
}
