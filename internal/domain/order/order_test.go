package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), "某设计客户", "品牌手册项目", uuid.New())
	require.NoError(t, err)
	return o
}

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusDraft, true},
		{OrderStatusNormal, true},
		{OrderStatusCancelled, true},
		{OrderStatus("archived"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		{OrderStatusDraft, OrderStatusNormal, true},
		{OrderStatusDraft, OrderStatusCancelled, true},
		{OrderStatusNormal, OrderStatusCancelled, true},
		{OrderStatusNormal, OrderStatusDraft, false},
		{OrderStatusCancelled, OrderStatusNormal, false},
		{OrderStatusCancelled, OrderStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewOrder(t *testing.T) {
	t.Run("creates draft order", func(t *testing.T) {
		createdBy := uuid.New()
		o, err := NewOrder(uuid.New(), "客户", "项目", createdBy)
		require.NoError(t, err)

		assert.Equal(t, OrderStatusDraft, o.Status)
		assert.Equal(t, createdBy, o.CreatedBy)
		assert.Equal(t, createdBy, o.UpdatedBy)
		assert.NotEqual(t, uuid.Nil, o.ID)
	})

	t.Run("rejects empty client ID", func(t *testing.T) {
		_, err := NewOrder(uuid.Nil, "客户", "", uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects empty client name", func(t *testing.T) {
		_, err := NewOrder(uuid.New(), "", "", uuid.New())
		assert.Error(t, err)
	})
}

func TestOrder_Activate(t *testing.T) {
	o := newTestOrder(t)
	updatedBy := uuid.New()

	require.NoError(t, o.Activate(updatedBy))
	assert.Equal(t, OrderStatusNormal, o.Status)
	assert.Equal(t, updatedBy, o.UpdatedBy)

	// already normal
	assert.Error(t, o.Activate(updatedBy))
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("cancels draft order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel(uuid.New()))
		assert.True(t, o.IsCancelled())
		assert.False(t, o.CanRevise())
	})

	t.Run("cancels normal order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Activate(uuid.New()))
		require.NoError(t, o.Cancel(uuid.New()))
		assert.True(t, o.IsCancelled())
	})

	t.Run("cancel is terminal", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel(uuid.New()))
		assert.Error(t, o.Cancel(uuid.New()))
	})
}

func TestOrder_SetProject(t *testing.T) {
	o := newTestOrder(t)
	projectID := uuid.New()
	o.SetProject(projectID, "新项目")

	require.NotNil(t, o.ProjectID)
	assert.Equal(t, projectID, *o.ProjectID)
	assert.Equal(t, "新项目", o.ProjectName)
}
