package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity provides identity and timestamps for all persisted entities
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// NewBaseEntity creates a base entity with a generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AuditedEntity extends BaseEntity with creator/updater tracking
type AuditedEntity struct {
	BaseEntity
	CreatedBy uuid.UUID `gorm:"type:uuid"`
	UpdatedBy uuid.UUID `gorm:"type:uuid"`
}

// NewAuditedEntity creates an audited entity recording the creating user
func NewAuditedEntity(createdBy uuid.UUID) AuditedEntity {
	return AuditedEntity{
		BaseEntity: NewBaseEntity(),
		CreatedBy:  createdBy,
		UpdatedBy:  createdBy,
	}
}

// Touch records an update by the given user
func (e *AuditedEntity) Touch(updatedBy uuid.UUID) {
	e.UpdatedBy = updatedBy
	e.UpdatedAt = time.Now()
}
