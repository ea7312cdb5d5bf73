package pricing

import (
	"fmt"
	"sort"

	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PolicyType represents the kind of discount a pricing policy applies
type PolicyType string

const (
	PolicyTypeUniformDiscount PolicyType = "uniform_discount"
	PolicyTypeTieredDiscount  PolicyType = "tiered_discount"
)

// IsValid checks if the type is a known PolicyType
func (t PolicyType) IsValid() bool {
	return t == PolicyTypeUniformDiscount || t == PolicyTypeTieredDiscount
}

// String returns the string representation of PolicyType
func (t PolicyType) String() string {
	return string(t)
}

// PolicyStatus represents the lifecycle status of a pricing policy
type PolicyStatus string

const (
	PolicyStatusActive   PolicyStatus = "active"
	PolicyStatusInactive PolicyStatus = "inactive"
)

// ScopeKind discriminates the PolicyScope union
type ScopeKind string

const (
	ScopeSingleService     ScopeKind = "single_service"
	ScopeMultiService      ScopeKind = "multi_service"
	ScopeExplicitSelection ScopeKind = "explicit_selection"
)

// PolicyScope determines which catalog services a policy applies to.
// It is a tagged union: exactly one kind is set, and AppliesTo matches
// exhaustively on it.
type PolicyScope struct {
	Kind       ScopeKind   `json:"kind"`
	ServiceIDs []uuid.UUID `json:"service_ids"`
}

// NewSingleServiceScope scopes a policy to exactly one service
func NewSingleServiceScope(serviceID uuid.UUID) PolicyScope {
	return PolicyScope{Kind: ScopeSingleService, ServiceIDs: []uuid.UUID{serviceID}}
}

// NewMultiServiceScope scopes a policy to a fixed set of services
func NewMultiServiceScope(serviceIDs []uuid.UUID) PolicyScope {
	return PolicyScope{Kind: ScopeMultiService, ServiceIDs: serviceIDs}
}

// NewExplicitSelectionScope scopes a policy to the services an operator
// selected when attaching the policy to an order form
func NewExplicitSelectionScope(serviceIDs []uuid.UUID) PolicyScope {
	return PolicyScope{Kind: ScopeExplicitSelection, ServiceIDs: serviceIDs}
}

// AppliesTo reports whether the scope covers the given service
func (s PolicyScope) AppliesTo(serviceID uuid.UUID) bool {
	switch s.Kind {
	case ScopeSingleService:
		return len(s.ServiceIDs) == 1 && s.ServiceIDs[0] == serviceID
	case ScopeMultiService, ScopeExplicitSelection:
		for _, id := range s.ServiceIDs {
			if id == serviceID {
				return true
			}
		}
		return false
	}
	return false
}

// TierSetting is one quantity range of a tiered discount policy.
// EndQuantity nil means the tier is open-ended.
type TierSetting struct {
	StartQuantity int64           `json:"start_quantity"`
	EndQuantity   *int64          `json:"end_quantity"`
	DiscountRatio decimal.Decimal `json:"discount_ratio"`
}

// Capacity returns how many units the tier can absorb, or -1 when open-ended
func (t TierSetting) Capacity() int64 {
	if t.EndQuantity == nil {
		return -1
	}
	return *t.EndQuantity - t.StartQuantity + 1
}

// PricingPolicy is a read-only catalog entity describing one discount rule.
// The engine never mutates policies; it freezes copies of them into
// version snapshots so later catalog edits cannot alter history.
type PricingPolicy struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Type          PolicyType      `json:"type"`
	Status        PolicyStatus    `json:"status"`
	DiscountRatio decimal.Decimal `json:"discount_ratio"` // percent, 100 = no discount
	Tiers         []TierSetting   `json:"tiers,omitempty"`
	Scope         PolicyScope     `json:"scope"`
}

// IsActive reports whether the policy may be applied
func (p *PricingPolicy) IsActive() bool {
	return p.Status == PolicyStatusActive
}

// SortedTiers returns the tier settings ordered by start quantity ascending
func (p *PricingPolicy) SortedTiers() []TierSetting {
	tiers := make([]TierSetting, len(p.Tiers))
	copy(tiers, p.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].StartQuantity < tiers[j].StartQuantity
	})
	return tiers
}

// ValidateConfiguration rejects policies whose settings make price
// allocation ambiguous. Tier overlaps and gaps are deliberately accepted;
// the resolver defines deterministic walk-order semantics for them.
func (p *PricingPolicy) ValidateConfiguration() error {
	if !p.Type.IsValid() {
		return shared.NewDomainError("POLICY_CONFIGURATION",
			fmt.Sprintf("Unknown policy type %q", p.Type))
	}

	switch p.Type {
	case PolicyTypeUniformDiscount:
		if err := validateRatio(p.DiscountRatio); err != nil {
			return err
		}
	case PolicyTypeTieredDiscount:
		if len(p.Tiers) == 0 {
			return shared.NewDomainError("POLICY_CONFIGURATION", "Tiered policy has no tiers")
		}
		for _, tier := range p.Tiers {
			if tier.StartQuantity < 0 {
				return shared.NewDomainError("POLICY_CONFIGURATION",
					fmt.Sprintf("Tier start quantity %d is negative", tier.StartQuantity))
			}
			if tier.EndQuantity != nil && *tier.EndQuantity < tier.StartQuantity {
				return shared.NewDomainError("POLICY_CONFIGURATION",
					fmt.Sprintf("Tier range %d-%d is inverted", tier.StartQuantity, *tier.EndQuantity))
			}
			if err := validateRatio(tier.DiscountRatio); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateRatio(ratio decimal.Decimal) error {
	if ratio.IsNegative() || ratio.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("POLICY_CONFIGURATION",
			fmt.Sprintf("Discount ratio %s is outside 0-100", ratio))
	}
	return nil
}
