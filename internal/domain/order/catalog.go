package order

import (
	"context"

	"github.com/donhauser001/order-engine/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceDetail is the catalog read model for one selectable service,
// combined with the quantity chosen on the order form.
type ServiceDetail struct {
	ID               uuid.UUID       `json:"id" validate:"required"`
	Name             string          `json:"name" validate:"required"`
	CategoryName     string          `json:"category_name"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Unit             string          `json:"unit"`
	Quantity         int64           `json:"quantity"`
	PriceDescription string          `json:"price_description"`
}

// CatalogService supplies service details and pricing policies from the
// external catalog. The engine only reads from it and must tolerate the
// catalog changing between calls; frozen snapshots are the
// source of truth for anything already priced.
type CatalogService interface {
	// GetServiceDetails returns details for the given service IDs.
	// Unknown IDs are simply absent from the result.
	GetServiceDetails(ctx context.Context, serviceIDs []uuid.UUID) ([]ServiceDetail, error)

	// GetPoliciesForServices returns every pricing policy whose scope
	// covers at least one of the given services.
	GetPoliciesForServices(ctx context.Context, serviceIDs []uuid.UUID) ([]pricing.PricingPolicy, error)
}
