package order

import (
	"time"

	"github.com/donhauser001/order-engine/internal/domain/order"
	"github.com/donhauser001/order-engine/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the input for creating an order, optionally with
// its first priced version
type CreateOrderRequest struct {
	ClientID           uuid.UUID               `json:"client_id"`
	ClientName         string                  `json:"client_name"`
	ContactName        string                  `json:"contact_name"`
	ContactInfo        string                  `json:"contact_info"`
	ProjectID          *uuid.UUID              `json:"project_id,omitempty"`
	ProjectName        string                  `json:"project_name"`
	Remark             string                  `json:"remark"`
	SelectedServiceIDs []uuid.UUID             `json:"selected_service_ids"`
	Services           []order.ServiceDetail   `json:"services,omitempty"`
	Policies           []pricing.PricingPolicy `json:"policies,omitempty"`
	CreatedBy          uuid.UUID               `json:"created_by"`
}

// UpdateOrderRequest is the input for updating order identity fields.
// Pointer fields are applied only when non-nil.
type UpdateOrderRequest struct {
	ClientName  *string `json:"client_name,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	ContactInfo *string `json:"contact_info,omitempty"`
	ProjectName *string `json:"project_name,omitempty"`
	Remark      *string   `json:"remark,omitempty"`
	UpdatedBy   uuid.UUID `json:"updated_by"`
}

// CreateVersionRequest is the input for pricing a new order revision.
// When Services/Policies are empty the service resolves them from the
// catalog using SelectedServiceIDs.
type CreateVersionRequest struct {
	SelectedServiceIDs []uuid.UUID             `json:"selected_service_ids"`
	Services           []order.ServiceDetail   `json:"services,omitempty"`
	Policies           []pricing.PricingPolicy `json:"policies,omitempty"`
	CreatedBy          uuid.UUID               `json:"created_by"`
}

// ItemSnapshotResponse mirrors one priced line item
type ItemSnapshotResponse struct {
	ServiceID        uuid.UUID                     `json:"service_id"`
	ServiceName      string                        `json:"service_name"`
	CategoryName     string                        `json:"category_name"`
	UnitPrice        decimal.Decimal               `json:"unit_price"`
	Unit             string                        `json:"unit"`
	Quantity         int64                         `json:"quantity"`
	OriginalPrice    decimal.Decimal               `json:"original_price"`
	DiscountedPrice  decimal.Decimal               `json:"discounted_price"`
	DiscountAmount   decimal.Decimal               `json:"discount_amount"`
	Subtotal         decimal.Decimal               `json:"subtotal"`
	PriceDescription string                        `json:"price_description"`
	PricingPolicies  []order.PricingPolicySnapshot `json:"pricing_policies"`
}

// VersionResponse mirrors one immutable order version
type VersionResponse struct {
	ID             uuid.UUID                `json:"id"`
	OrderID        uuid.UUID                `json:"order_id"`
	VersionNumber  int                      `json:"version_number"`
	IterationTime  time.Time                `json:"iteration_time"`
	ClientID       uuid.UUID                `json:"client_id"`
	ClientName     string                   `json:"client_name"`
	ContactName    string                   `json:"contact_name"`
	ProjectName    string                   `json:"project_name"`
	Items          []ItemSnapshotResponse   `json:"items"`
	TotalAmount    decimal.Decimal          `json:"total_amount"`
	TotalAmountRMB string                   `json:"total_amount_rmb"`
	Summary        order.CalculationSummary `json:"calculation_summary"`
	CreatedBy      uuid.UUID                `json:"created_by"`
	CreatedAt      time.Time                `json:"created_at"`
}

// OrderResponse mirrors the order identity record
type OrderResponse struct {
	ID          uuid.UUID         `json:"id"`
	ClientID    uuid.UUID         `json:"client_id"`
	ClientName  string            `json:"client_name"`
	ContactName string            `json:"contact_name"`
	ContactInfo string            `json:"contact_info"`
	ProjectID   *uuid.UUID        `json:"project_id,omitempty"`
	ProjectName string            `json:"project_name"`
	Status      order.OrderStatus `json:"status"`
	Remark      string            `json:"remark"`
	CreatedBy   uuid.UUID         `json:"created_by"`
	UpdatedBy   uuid.UUID         `json:"updated_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CurrentOrderView joins the order identity record with its latest
// version. The derived fields are nil while the order is unpriced.
type CurrentOrderView struct {
	OrderResponse
	CurrentVersion   *int             `json:"current_version,omitempty"`
	CurrentAmount    *decimal.Decimal `json:"current_amount,omitempty"`
	CurrentAmountRMB *string          `json:"current_amount_rmb,omitempty"`
	LatestVersion    *VersionResponse `json:"latest_version,omitempty"`
}

// ToOrderResponse maps a domain order to its response form
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		ClientID:    o.ClientID,
		ClientName:  o.ClientName,
		ContactName: o.ContactName,
		ContactInfo: o.ContactInfo,
		ProjectID:   o.ProjectID,
		ProjectName: o.ProjectName,
		Status:      o.Status,
		Remark:      o.Remark,
		CreatedBy:   o.CreatedBy,
		UpdatedBy:   o.UpdatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// ToVersionResponse maps a domain version to its response form
func ToVersionResponse(v *order.OrderVersion) VersionResponse {
	items := make([]ItemSnapshotResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, ItemSnapshotResponse{
			ServiceID:        item.ServiceID,
			ServiceName:      item.ServiceName,
			CategoryName:     item.CategoryName,
			UnitPrice:        item.UnitPrice,
			Unit:             item.Unit,
			Quantity:         item.Quantity,
			OriginalPrice:    item.OriginalPrice,
			DiscountedPrice:  item.DiscountedPrice,
			DiscountAmount:   item.DiscountAmount,
			Subtotal:         item.Subtotal,
			PriceDescription: item.PriceDescription,
			PricingPolicies:  item.PricingPolicies,
		})
	}
	return VersionResponse{
		ID:             v.ID,
		OrderID:        v.OrderID,
		VersionNumber:  v.VersionNumber,
		IterationTime:  v.IterationTime,
		ClientID:       v.ClientID,
		ClientName:     v.ClientName,
		ContactName:    v.ContactName,
		ProjectName:    v.ProjectName,
		Items:          items,
		TotalAmount:    v.TotalAmount,
		TotalAmountRMB: v.TotalAmountRMB,
		Summary:        v.Summary,
		CreatedBy:      v.CreatedBy,
		CreatedAt:      v.CreatedAt,
	}
}
