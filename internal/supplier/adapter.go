package supplier

import (
	"context"

	"github.com/walletgate/vas-catalog/internal/models"
)

// Adapter is the contract every upstream supplier integration must implement.
// FetchCatalog returns raw records already mapped into the common shape; the
// adapter owns its own authentication and per-call timeout.
type Adapter interface {
	// Code returns the supplier code this adapter serves.
	Code() models.SupplierCode

	// HealthCheck verifies the supplier is reachable and authenticated.
	// A failing health check makes the orchestrator skip this supplier for
	// the current run.
	HealthCheck(ctx context.Context) error

	// FetchCatalog returns the live product list for one VAS category.
	FetchCatalog(ctx context.Context, vasType models.VasType) ([]models.RawProductRecord, error)
}

// Registry holds the adapters available to the sync engine.
type Registry struct {
	adapters map[models.SupplierCode]Adapter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[models.SupplierCode]Adapter)}
}

// Register adds an adapter to the registry.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Code()] = a
}

// Get returns the adapter for a supplier code, or nil when not registered.
func (r *Registry) Get(code models.SupplierCode) Adapter {
	return r.adapters[code]
}
