package order

import (
	"testing"

	"github.com/donhauser001/order-engine/internal/domain/pricing"
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func baseInput() SnapshotInput {
	return SnapshotInput{
		OrderID:    uuid.New(),
		ClientID:   uuid.New(),
		ClientName: "某客户",
		CreatedBy:  uuid.New(),
	}
}

func TestSnapshotBuilder_Build(t *testing.T) {
	builder := NewSnapshotBuilder()

	serviceA := ServiceDetail{
		ID:        uuid.New(),
		Name:      "LOGO设计",
		UnitPrice: decimal.NewFromInt(100),
		Unit:      "项",
		Quantity:  2,
	}
	serviceB := ServiceDetail{
		ID:           uuid.New(),
		Name:         "画册设计",
		CategoryName: "平面设计",
		UnitPrice:    decimal.NewFromInt(10),
		Unit:         "页",
		Quantity:     15,
	}
	notSelected := ServiceDetail{
		ID:        uuid.New(),
		Name:      "网站开发",
		UnitPrice: decimal.NewFromInt(5000),
		Quantity:  1,
	}

	uniform := pricing.PricingPolicy{
		ID:            uuid.New(),
		Name:          "老客户九折",
		Type:          pricing.PolicyTypeUniformDiscount,
		Status:        pricing.PolicyStatusActive,
		DiscountRatio: decimal.NewFromInt(90),
		Scope:         pricing.NewSingleServiceScope(serviceA.ID),
	}
	tiered := pricing.PricingPolicy{
		ID:     uuid.New(),
		Name:   "页数阶梯价",
		Type:   pricing.PolicyTypeTieredDiscount,
		Status: pricing.PolicyStatusActive,
		Tiers: []pricing.TierSetting{
			{StartQuantity: 1, EndQuantity: int64Ptr(10), DiscountRatio: decimal.NewFromInt(100)},
			{StartQuantity: 11, DiscountRatio: decimal.NewFromInt(80)},
		},
		Scope: pricing.NewMultiServiceScope([]uuid.UUID{serviceB.ID}),
	}

	input := baseInput()
	input.SelectedServiceIDs = []uuid.UUID{serviceA.ID, serviceB.ID}
	input.Services = []ServiceDetail{serviceA, serviceB, notSelected}
	input.Policies = []pricing.PricingPolicy{uniform, tiered}

	version, err := builder.Build(input)
	require.NoError(t, err)

	require.Len(t, version.Items, 2)
	assert.Equal(t, 0, version.VersionNumber, "builder must not assign version numbers")

	itemA := version.Items[0]
	assert.Equal(t, serviceA.ID, itemA.ServiceID)
	assert.True(t, itemA.OriginalPrice.Equal(decimal.NewFromInt(200)))
	assert.True(t, itemA.DiscountedPrice.Equal(decimal.NewFromInt(180)))
	assert.True(t, itemA.DiscountAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, itemA.Subtotal.Equal(itemA.DiscountedPrice))
	require.Len(t, itemA.PricingPolicies, 1)
	assert.Equal(t, uniform.ID, itemA.PricingPolicies[0].PolicyID)

	itemB := version.Items[1]
	assert.True(t, itemB.DiscountedPrice.Equal(decimal.NewFromInt(140)), "tiered price %s", itemB.DiscountedPrice)

	// 180 + 140
	assert.True(t, version.TotalAmount.Equal(decimal.NewFromInt(320)))
	assert.Equal(t, "叁佰贰拾元整", version.TotalAmountRMB)
	assert.Equal(t, 2, version.Summary.TotalItems)
	assert.Equal(t, int64(17), version.Summary.TotalQuantity)
	assert.ElementsMatch(t, []uuid.UUID{uniform.ID, tiered.ID}, version.Summary.AppliedPolicyIDs)

	for _, item := range version.Items {
		assert.Equal(t, version.ID, item.VersionID)
	}
	assert.NoError(t, version.Validate())
}

func TestSnapshotBuilder_SingleActivePolicyRule(t *testing.T) {
	builder := NewSnapshotBuilder()
	serviceID := uuid.New()

	inactive := pricing.PricingPolicy{
		ID:            uuid.New(),
		Name:          "已停用五折",
		Type:          pricing.PolicyTypeUniformDiscount,
		Status:        pricing.PolicyStatusInactive,
		DiscountRatio: decimal.NewFromInt(50),
		Scope:         pricing.NewSingleServiceScope(serviceID),
	}
	active := pricing.PricingPolicy{
		ID:            uuid.New(),
		Name:          "九折",
		Type:          pricing.PolicyTypeUniformDiscount,
		Status:        pricing.PolicyStatusActive,
		DiscountRatio: decimal.NewFromInt(90),
		Scope:         pricing.NewExplicitSelectionScope([]uuid.UUID{serviceID}),
	}
	secondActive := pricing.PricingPolicy{
		ID:            uuid.New(),
		Name:          "八折",
		Type:          pricing.PolicyTypeUniformDiscount,
		Status:        pricing.PolicyStatusActive,
		DiscountRatio: decimal.NewFromInt(80),
		Scope:         pricing.NewSingleServiceScope(serviceID),
	}

	input := baseInput()
	input.SelectedServiceIDs = []uuid.UUID{serviceID}
	input.Services = []ServiceDetail{{
		ID:        serviceID,
		Name:      "VI设计",
		UnitPrice: decimal.NewFromInt(100),
		Quantity:  1,
	}}
	input.Policies = []pricing.PricingPolicy{inactive, active, secondActive}

	version, err := builder.Build(input)
	require.NoError(t, err)

	require.Len(t, version.Items, 1)
	// First active candidate wins; the inactive one and the second
	// active one are both skipped.
	require.Len(t, version.Items[0].PricingPolicies, 1)
	assert.Equal(t, active.ID, version.Items[0].PricingPolicies[0].PolicyID)
	assert.True(t, version.Items[0].DiscountedPrice.Equal(decimal.NewFromInt(90)))
}

func TestSnapshotBuilder_NoApplicablePolicy(t *testing.T) {
	builder := NewSnapshotBuilder()
	serviceID := uuid.New()

	input := baseInput()
	input.SelectedServiceIDs = []uuid.UUID{serviceID}
	input.Services = []ServiceDetail{{
		ID:        serviceID,
		Name:      "包装设计",
		UnitPrice: decimal.NewFromFloat(999.5),
		Quantity:  1,
	}}

	version, err := builder.Build(input)
	require.NoError(t, err)

	require.Len(t, version.Items, 1)
	assert.Empty(t, version.Items[0].PricingPolicies)
	assert.True(t, version.Items[0].DiscountAmount.IsZero())
	assert.Empty(t, version.Summary.AppliedPolicyIDs)
	assert.Equal(t, "玖佰玖拾玖元伍角", version.TotalAmountRMB)
}

func TestSnapshotBuilder_EmptySelection(t *testing.T) {
	builder := NewSnapshotBuilder()

	version, err := builder.Build(baseInput())
	require.NoError(t, err)

	assert.Empty(t, version.Items)
	assert.True(t, version.TotalAmount.IsZero())
	assert.Equal(t, "零元整", version.TotalAmountRMB)
	assert.Equal(t, 0, version.Summary.TotalItems)
}

func TestSnapshotBuilder_NormalizesRichText(t *testing.T) {
	builder := NewSnapshotBuilder()
	serviceID := uuid.New()

	input := baseInput()
	input.SelectedServiceIDs = []uuid.UUID{serviceID}
	input.Services = []ServiceDetail{{
		ID:               serviceID,
		Name:             "插画",
		UnitPrice:        decimal.NewFromInt(300),
		Quantity:         1,
		PriceDescription: "首稿三天<br/>修改两轮<br>加急另计\r\n尾款验收后结清",
	}}

	version, err := builder.Build(input)
	require.NoError(t, err)
	assert.Equal(t, "首稿三天\n修改两轮\n加急另计\n尾款验收后结清", version.Items[0].PriceDescription)
}

func TestSnapshotBuilder_ValidationErrors(t *testing.T) {
	builder := NewSnapshotBuilder()

	t.Run("missing order ID", func(t *testing.T) {
		input := baseInput()
		input.OrderID = uuid.Nil
		_, err := builder.Build(input)
		assertDomainCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("missing client name", func(t *testing.T) {
		input := baseInput()
		input.ClientName = ""
		_, err := builder.Build(input)
		assertDomainCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("service without name", func(t *testing.T) {
		serviceID := uuid.New()
		input := baseInput()
		input.SelectedServiceIDs = []uuid.UUID{serviceID}
		input.Services = []ServiceDetail{{ID: serviceID, UnitPrice: decimal.NewFromInt(1), Quantity: 1}}
		_, err := builder.Build(input)
		assertDomainCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("negative quantity", func(t *testing.T) {
		serviceID := uuid.New()
		input := baseInput()
		input.SelectedServiceIDs = []uuid.UUID{serviceID}
		input.Services = []ServiceDetail{{ID: serviceID, Name: "x", UnitPrice: decimal.NewFromInt(1), Quantity: -1}}
		_, err := builder.Build(input)
		assertDomainCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("selected service without detail", func(t *testing.T) {
		known := uuid.New()
		dangling := uuid.New()
		input := baseInput()
		input.SelectedServiceIDs = []uuid.UUID{known, dangling}
		input.Services = []ServiceDetail{{ID: known, Name: "LOGO设计", UnitPrice: decimal.NewFromInt(100), Quantity: 1}}

		_, err := builder.Build(input)
		assertDomainCode(t, err, "VALIDATION_ERROR")
		// The error must name the dangling ID; a typo'd selection that
		// silently priced one item fewer would look like a valid quote.
		assert.Contains(t, err.Error(), dangling.String())
	})

	t.Run("negative unit price", func(t *testing.T) {
		serviceID := uuid.New()
		input := baseInput()
		input.SelectedServiceIDs = []uuid.UUID{serviceID}
		input.Services = []ServiceDetail{{ID: serviceID, Name: "x", UnitPrice: decimal.NewFromInt(-1), Quantity: 1}}
		_, err := builder.Build(input)
		assertDomainCode(t, err, "VALIDATION_ERROR")
	})
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
