package order

import (
	"fmt"
	"time"

	"github.com/donhauser001/order-engine/internal/domain/pricing"
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/donhauser001/order-engine/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// amountEpsilon is the tolerance for total/subtotal consistency checks
var amountEpsilon = decimal.New(1, -6)

// PricingPolicySnapshot is the frozen copy of the policy applied to a
// line item. Freezing it means later edits or deletions in the live
// policy catalog cannot alter priced history.
type PricingPolicySnapshot struct {
	PolicyID           uuid.UUID          `json:"policy_id"`
	PolicyName         string             `json:"policy_name"`
	PolicyType         pricing.PolicyType `json:"policy_type"`
	DiscountRatio      decimal.Decimal    `json:"discount_ratio"`
	CalculationDetails string             `json:"calculation_details"`
}

// OrderItemSnapshot is one priced service line inside an order version
type OrderItemSnapshot struct {
	ID               uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	VersionID        uuid.UUID               `gorm:"type:uuid;not null;index" json:"version_id"`
	ServiceID        uuid.UUID               `gorm:"type:uuid;not null" json:"service_id"`
	ServiceName      string                  `gorm:"size:200;not null" json:"service_name"`
	CategoryName     string                  `gorm:"size:200" json:"category_name"`
	UnitPrice        decimal.Decimal         `gorm:"type:numeric(18,6)" json:"unit_price"`
	Unit             string                  `gorm:"size:50" json:"unit"`
	Quantity         int64                   `gorm:"not null" json:"quantity"`
	OriginalPrice    decimal.Decimal         `gorm:"type:numeric(18,6)" json:"original_price"`
	DiscountedPrice  decimal.Decimal         `gorm:"type:numeric(18,6)" json:"discounted_price"`
	DiscountAmount   decimal.Decimal         `gorm:"type:numeric(18,6)" json:"discount_amount"`
	Subtotal         decimal.Decimal         `gorm:"type:numeric(18,6)" json:"subtotal"`
	PriceDescription string                  `json:"price_description"`
	PricingPolicies  []PricingPolicySnapshot `gorm:"serializer:json" json:"pricing_policies"`
}

// TableName returns the table name for GORM
func (OrderItemSnapshot) TableName() string {
	return "order_version_items"
}

// CalculationSummary aggregates what went into a version's total
type CalculationSummary struct {
	TotalItems       int         `json:"total_items"`
	TotalQuantity    int64       `json:"total_quantity"`
	AppliedPolicyIDs []uuid.UUID `json:"applied_policy_ids"`
}

// OrderVersion is an immutable, fully priced snapshot of an order at one
// point in time. Once persisted it is never updated; the only destructive
// operation is deleting all versions together with the parent order.
type OrderVersion struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID        uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_order_version" json:"order_id"`
	VersionNumber  int                 `gorm:"not null;uniqueIndex:idx_order_version" json:"version_number"`
	IterationTime  time.Time           `gorm:"not null" json:"iteration_time"`
	ClientID       uuid.UUID           `gorm:"type:uuid;not null" json:"client_id"`
	ClientName     string              `gorm:"size:200" json:"client_name"`
	ContactName    string              `gorm:"size:100" json:"contact_name"`
	ContactInfo    string              `gorm:"size:200" json:"contact_info"`
	ProjectName    string              `gorm:"size:200" json:"project_name"`
	Items          []OrderItemSnapshot `gorm:"foreignKey:VersionID" json:"items"`
	TotalAmount    decimal.Decimal     `gorm:"type:numeric(18,6)" json:"total_amount"`
	TotalAmountRMB string              `gorm:"size:200" json:"total_amount_rmb"`
	Summary        CalculationSummary  `gorm:"serializer:json" json:"calculation_summary"`
	CreatedBy      uuid.UUID           `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
}

// TableName returns the table name for GORM
func (OrderVersion) TableName() string {
	return "order_versions"
}

// Validate checks the internal consistency of a built version:
// the total must equal the sum of item subtotals, each item's discount
// must be the difference of original and discounted price, and the
// numeral rendering must match the total.
func (v *OrderVersion) Validate() error {
	if v.OrderID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Version has no order ID")
	}

	sum := decimal.Zero
	for i := range v.Items {
		item := &v.Items[i]
		sum = sum.Add(item.Subtotal)

		expectedDiscount := item.OriginalPrice.Sub(item.DiscountedPrice)
		if !item.DiscountAmount.Sub(expectedDiscount).Abs().LessThanOrEqual(amountEpsilon) {
			return shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Item %s discount amount is inconsistent", item.ServiceName))
		}
		if item.DiscountAmount.IsNegative() {
			return shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Item %s has a negative discount", item.ServiceName))
		}
	}

	if !v.TotalAmount.Sub(sum).Abs().LessThanOrEqual(amountEpsilon) {
		return shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Total %s does not match item subtotals %s", v.TotalAmount, sum))
	}
	if v.TotalAmountRMB != valueobject.RMBWords(v.TotalAmount, false) {
		return shared.NewDomainError("VALIDATION_ERROR", "RMB numeral text does not match total")
	}
	return nil
}

// AppliedPolicyIDs returns the deduplicated policy IDs recorded in the summary
func (v *OrderVersion) AppliedPolicyIDs() []uuid.UUID {
	return v.Summary.AppliedPolicyIDs
}
