package order

import (
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusNormal    OrderStatus = "normal"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusNormal, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusNormal || target == OrderStatusCancelled
	case OrderStatusNormal:
		return target == OrderStatusCancelled
	case OrderStatusCancelled:
		return false // terminal
	}
	return false
}

// Order is the identity and status shell of a client engagement.
// It holds no line items or totals of its own; any "current amount"
// shown to callers is always projected from the latest OrderVersion.
type Order struct {
	shared.AuditedEntity
	ClientID    uuid.UUID   `gorm:"type:uuid;not null;index"`
	ClientName  string      `gorm:"size:200;not null"`
	ContactName string      `gorm:"size:100"`
	ContactInfo string      `gorm:"size:200"`
	ProjectID   *uuid.UUID  `gorm:"type:uuid;index"`
	ProjectName string      `gorm:"size:200"`
	Status      OrderStatus `gorm:"size:20;not null;index"`
	Remark      string
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in draft status
func NewOrder(clientID uuid.UUID, clientName, projectName string, createdBy uuid.UUID) (*Order, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Client ID cannot be empty")
	}
	if clientName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Client name cannot be empty")
	}

	return &Order{
		AuditedEntity: shared.NewAuditedEntity(createdBy),
		ClientID:      clientID,
		ClientName:    clientName,
		ProjectName:   projectName,
		Status:        OrderStatusDraft,
	}, nil
}

// SetContact sets the client contact reference
func (o *Order) SetContact(name, info string) {
	o.ContactName = name
	o.ContactInfo = info
}

// SetProject attaches the order to a project
func (o *Order) SetProject(projectID uuid.UUID, projectName string) {
	o.ProjectID = &projectID
	o.ProjectName = projectName
}

// SetRemark sets the order remark
func (o *Order) SetRemark(remark string) {
	o.Remark = remark
}

// Activate moves a draft order into normal status
func (o *Order) Activate(updatedBy uuid.UUID) error {
	if !o.Status.CanTransitionTo(OrderStatusNormal) {
		return shared.NewDomainError("INVALID_STATE",
			"Only draft orders can be activated")
	}
	o.Status = OrderStatusNormal
	o.Touch(updatedBy)
	return nil
}

// Cancel moves the order into cancelled status
func (o *Order) Cancel(updatedBy uuid.UUID) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			"Order cannot be cancelled in its current status")
	}
	o.Status = OrderStatusCancelled
	o.Touch(updatedBy)
	return nil
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// CanRevise returns true if new versions may be created for the order
func (o *Order) CanRevise() bool {
	return o.Status != OrderStatusCancelled
}
