package pricing

import (
	"fmt"
	"strings"

	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/donhauser001/order-engine/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Resolution is the outcome of pricing one line item under one policy.
// CalculationDetails is a human-readable trace for audit display; it is
// never machine-parsed.
type Resolution struct {
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountedPrice    decimal.Decimal `json:"discounted_price"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	DiscountRatio      decimal.Decimal `json:"discount_ratio"` // effective percent of original actually charged
	CalculationDetails string          `json:"calculation_details"`
}

// Resolve computes the discounted price for a line item given its unit
// price, quantity and the single policy applied to it. A nil or inactive
// policy yields the original price unchanged.
//
// Exactly one policy is applied per line item; choosing which of a line
// item's candidate policies is "the one" is the caller's job.
//
// Pure function, safe for concurrent use.
func Resolve(unitPrice decimal.Decimal, quantity int64, policy *PricingPolicy) (Resolution, error) {
	if unitPrice.IsNegative() {
		return Resolution{}, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Unit price %s cannot be negative", unitPrice))
	}
	if quantity < 0 {
		return Resolution{}, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Quantity %d cannot be negative", quantity))
	}

	original := valueobject.NewMoneyCNY(unitPrice).MultiplyByInt(quantity)

	if policy == nil || !policy.IsActive() {
		return Resolution{
			OriginalPrice:      original.Amount(),
			DiscountedPrice:    original.Amount(),
			DiscountAmount:     decimal.Zero,
			DiscountRatio:      hundred,
			CalculationDetails: fmt.Sprintf("无优惠：%s × %d = %s", unitPrice, quantity, original.Amount()),
		}, nil
	}

	if err := policy.ValidateConfiguration(); err != nil {
		return Resolution{}, err
	}

	switch policy.Type {
	case PolicyTypeUniformDiscount:
		return resolveUniform(unitPrice, quantity, original, policy), nil
	case PolicyTypeTieredDiscount:
		return resolveTiered(unitPrice, quantity, original, policy), nil
	}
	// Unreachable; ValidateConfiguration rejects unknown types.
	return Resolution{}, shared.ErrPolicyConfiguration
}

func resolveUniform(unitPrice decimal.Decimal, quantity int64, original valueobject.Money, policy *PricingPolicy) Resolution {
	discounted := original.CalculatePercentage(policy.DiscountRatio)
	details := fmt.Sprintf("统一折扣（%s）：%s × %d × %s%% = %s",
		policy.Name, unitPrice, quantity, policy.DiscountRatio, discounted.Amount())

	return Resolution{
		OriginalPrice:      original.Amount(),
		DiscountedPrice:    discounted.Amount(),
		DiscountAmount:     original.MustSubtract(discounted).Amount(),
		DiscountRatio:      effectiveRatio(original.Amount(), discounted.Amount()),
		CalculationDetails: details,
	}
}

// resolveTiered walks the tiers in ascending start order, letting each
// tier absorb up to its capacity of the remaining quantity. Overlapping
// or gapped tier definitions are not rejected here; the walk order alone
// defines the outcome.
func resolveTiered(unitPrice decimal.Decimal, quantity int64, original valueobject.Money, policy *PricingPolicy) Resolution {
	unit := valueobject.NewMoneyCNY(unitPrice)
	discounted := valueobject.ZeroCNY()
	remaining := quantity
	lines := []string{fmt.Sprintf("阶梯折扣（%s）", policy.Name)}

	for i, tier := range policy.SortedTiers() {
		if remaining == 0 {
			break
		}
		tierQuantity := remaining
		if capacity := tier.Capacity(); capacity >= 0 && capacity < tierQuantity {
			tierQuantity = capacity
		}
		if tierQuantity <= 0 {
			continue
		}

		tierTotal := unit.MultiplyByInt(tierQuantity).CalculatePercentage(tier.DiscountRatio)
		discounted = discounted.MustAdd(tierTotal)
		remaining -= tierQuantity

		lines = append(lines, fmt.Sprintf("第%d档（%s）：%s × %d × %s%% = %s",
			i+1, tierRange(tier), unitPrice, tierQuantity, tier.DiscountRatio, tierTotal.Amount()))
	}

	// Quantity the tiers never covered is charged at full price.
	if remaining > 0 {
		leftoverTotal := unit.MultiplyByInt(remaining)
		discounted = discounted.MustAdd(leftoverTotal)
		lines = append(lines, fmt.Sprintf("超出阶梯部分：%s × %d = %s", unitPrice, remaining, leftoverTotal.Amount()))
	}

	lines = append(lines, fmt.Sprintf("合计 %s", discounted.Amount()))

	return Resolution{
		OriginalPrice:      original.Amount(),
		DiscountedPrice:    discounted.Amount(),
		DiscountAmount:     original.MustSubtract(discounted).Amount(),
		DiscountRatio:      effectiveRatio(original.Amount(), discounted.Amount()),
		CalculationDetails: strings.Join(lines, "；"),
	}
}

func tierRange(tier TierSetting) string {
	if tier.EndQuantity == nil {
		return fmt.Sprintf("%d件以上", tier.StartQuantity)
	}
	return fmt.Sprintf("%d-%d件", tier.StartQuantity, *tier.EndQuantity)
}

// effectiveRatio is the percent of the original price actually charged
func effectiveRatio(original, discounted decimal.Decimal) decimal.Decimal {
	if !original.IsPositive() {
		return hundred
	}
	return discounted.Div(original).Mul(hundred).Round(2)
}
