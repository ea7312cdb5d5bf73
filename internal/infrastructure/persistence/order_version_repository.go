package persistence

import (
	"context"
	"errors"

	"github.com/donhauser001/order-engine/internal/domain/order"
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the Postgres error code for unique constraint violations
const pgUniqueViolation = "23505"

// GormOrderVersionRepository implements order.OrderVersionRepository
// using GORM. Versions are insert-only; the struct deliberately has no
// update method.
type GormOrderVersionRepository struct {
	db *gorm.DB
}

// NewGormOrderVersionRepository creates a new GormOrderVersionRepository
func NewGormOrderVersionRepository(db *gorm.DB) *GormOrderVersionRepository {
	return &GormOrderVersionRepository{db: db}
}

// Insert persists a new version together with its item snapshots.
// A collision on (order_id, version_number) maps to shared.ErrAlreadyExists.
func (r *GormOrderVersionRepository) Insert(ctx context.Context, version *order.OrderVersion) error {
	if err := r.db.WithContext(ctx).Create(version).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// MaxVersionNumber returns the highest version number of an order,
// 0 when the order has no versions.
func (r *GormOrderVersionRepository) MaxVersionNumber(ctx context.Context, orderID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&order.OrderVersion{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

// FindByOrder returns all versions of an order, newest first
func (r *GormOrderVersionRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderVersion, error) {
	var versions []order.OrderVersion
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("version_number DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// FindByNumber returns one specific version of an order
func (r *GormOrderVersionRepository) FindByNumber(ctx context.Context, orderID uuid.UUID, versionNumber int) (*order.OrderVersion, error) {
	var version order.OrderVersion
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ? AND version_number = ?", orderID, versionNumber).
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// FindLatest returns the newest version of an order
func (r *GormOrderVersionRepository) FindLatest(ctx context.Context, orderID uuid.UUID) (*order.OrderVersion, error) {
	var version order.OrderVersion
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("version_number DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// DeleteByOrder removes every version of an order along with its items
func (r *GormOrderVersionRepository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("version_id IN (?)",
			tx.Model(&order.OrderVersion{}).Select("id").Where("order_id = ?", orderID),
		).Delete(&order.OrderItemSnapshot{}).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", orderID).Delete(&order.OrderVersion{}).Error
	})
}

// isUniqueViolation recognizes duplicate-key errors both through GORM's
// TranslateError and directly from the Postgres driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Ensure GormOrderVersionRepository implements OrderVersionRepository
var _ order.OrderVersionRepository = (*GormOrderVersionRepository)(nil)
