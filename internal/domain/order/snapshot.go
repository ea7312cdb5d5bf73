package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/donhauser001/order-engine/internal/domain/pricing"
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/donhauser001/order-engine/internal/domain/shared/valueobject"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SnapshotInput carries everything needed to price one order revision.
// Services and Policies are raw catalog data as of now; the builder
// freezes whatever it uses into the resulting version.
type SnapshotInput struct {
	OrderID            uuid.UUID `validate:"required"`
	ClientID           uuid.UUID `validate:"required"`
	ClientName         string    `validate:"required"`
	ContactName        string
	ContactInfo        string
	ProjectName        string
	SelectedServiceIDs []uuid.UUID
	Services           []ServiceDetail
	Policies           []pricing.PricingPolicy
	CreatedBy          uuid.UUID `validate:"required"`
}

// SnapshotBuilder turns raw order input into an unsaved OrderVersion.
// It assigns no version number and persists nothing; both are the
// version store's job.
type SnapshotBuilder struct {
	validate *validator.Validate
}

// NewSnapshotBuilder creates a SnapshotBuilder
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Build prices every selected service and assembles the version payload.
// Each line item gets exactly one applied policy: the first active
// candidate whose scope covers the service. Remaining candidates are
// ignored; multi-policy stacking is not supported.
func (b *SnapshotBuilder) Build(input SnapshotInput) (*OrderVersion, error) {
	if err := b.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Invalid snapshot input: %v", err))
	}

	selected := make(map[uuid.UUID]bool, len(input.SelectedServiceIDs))
	for _, id := range input.SelectedServiceIDs {
		selected[id] = true
	}

	items := make([]OrderItemSnapshot, 0, len(input.SelectedServiceIDs))
	matched := make(map[uuid.UUID]bool, len(input.SelectedServiceIDs))
	totalAmount := valueobject.ZeroCNY()
	totalQuantity := int64(0)
	appliedPolicyIDs := make([]uuid.UUID, 0)
	seenPolicies := make(map[uuid.UUID]bool)

	for _, svc := range input.Services {
		if !selected[svc.ID] {
			continue
		}
		matched[svc.ID] = true
		if svc.Name == "" {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Service %s has no name", svc.ID))
		}
		if svc.Quantity < 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Service %s has negative quantity %d", svc.Name, svc.Quantity))
		}

		applied := firstApplicablePolicy(input.Policies, svc.ID)
		resolution, err := pricing.Resolve(svc.UnitPrice, svc.Quantity, applied)
		if err != nil {
			return nil, err
		}

		item := OrderItemSnapshot{
			ID:               uuid.New(),
			ServiceID:        svc.ID,
			ServiceName:      svc.Name,
			CategoryName:     svc.CategoryName,
			UnitPrice:        svc.UnitPrice,
			Unit:             svc.Unit,
			Quantity:         svc.Quantity,
			OriginalPrice:    resolution.OriginalPrice,
			DiscountedPrice:  resolution.DiscountedPrice,
			DiscountAmount:   resolution.DiscountAmount,
			Subtotal:         resolution.DiscountedPrice,
			PriceDescription: normalizeRichText(svc.PriceDescription),
			PricingPolicies:  make([]PricingPolicySnapshot, 0, 1),
		}
		if applied != nil {
			item.PricingPolicies = append(item.PricingPolicies, PricingPolicySnapshot{
				PolicyID:           applied.ID,
				PolicyName:         applied.Name,
				PolicyType:         applied.Type,
				DiscountRatio:      resolution.DiscountRatio,
				CalculationDetails: resolution.CalculationDetails,
			})
			if !seenPolicies[applied.ID] {
				seenPolicies[applied.ID] = true
				appliedPolicyIDs = append(appliedPolicyIDs, applied.ID)
			}
		}

		items = append(items, item)
		totalAmount = totalAmount.MustAdd(valueobject.NewMoneyCNY(item.Subtotal))
		totalQuantity += svc.Quantity
	}

	// A selected ID with no service detail is a dangling reference, not
	// an item to quietly skip; pricing fewer items than were selected
	// would produce a cheaper quote that looks successful.
	for _, id := range input.SelectedServiceIDs {
		if !matched[id] {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Selected service %s has no service detail", id))
		}
	}

	now := time.Now()
	version := &OrderVersion{
		ID:             uuid.New(),
		OrderID:        input.OrderID,
		IterationTime:  now,
		ClientID:       input.ClientID,
		ClientName:     input.ClientName,
		ContactName:    input.ContactName,
		ContactInfo:    input.ContactInfo,
		ProjectName:    input.ProjectName,
		Items:          items,
		TotalAmount:    totalAmount.Amount(),
		TotalAmountRMB: totalAmount.RMBWords(),
		Summary: CalculationSummary{
			TotalItems:       len(items),
			TotalQuantity:    totalQuantity,
			AppliedPolicyIDs: appliedPolicyIDs,
		},
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
	}
	for i := range version.Items {
		version.Items[i].VersionID = version.ID
	}
	return version, nil
}

// firstApplicablePolicy picks the one policy for a line item: the first
// active candidate whose scope covers the service, nil when none does.
func firstApplicablePolicy(policies []pricing.PricingPolicy, serviceID uuid.UUID) *pricing.PricingPolicy {
	for i := range policies {
		if policies[i].IsActive() && policies[i].Scope.AppliesTo(serviceID) {
			return &policies[i]
		}
	}
	return nil
}

var richTextBreaks = strings.NewReplacer(
	"<br />", "\n",
	"<br/>", "\n",
	"<br>", "\n",
	"\r\n", "\n",
	"\r", "\n",
)

// normalizeRichText flattens the line-break variants rich-text editors
// produce into plain newlines.
func normalizeRichText(s string) string {
	return strings.TrimSpace(richTextBreaks.Replace(s))
}
