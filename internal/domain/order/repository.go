package order

import (
	"context"

	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository persists order identity records
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, order *Order) error

	// SaveWithVersion persists the order and its version in one
	// transaction, so an order mutation never reports success while its
	// priced snapshot failed to persist.
	SaveWithVersion(ctx context.Context, order *Order, version *OrderVersion) error

	// Delete removes the order together with all of its versions in one
	// transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderVersionRepository persists immutable version snapshots.
// Versions are write-once: there is no update operation, and the only
// delete is the bulk DeleteByOrder used when the parent order goes away.
type OrderVersionRepository interface {
	// Insert persists a new version. It returns shared.ErrAlreadyExists
	// when (order_id, version_number) is already taken, which callers
	// use to detect numbering races.
	Insert(ctx context.Context, version *OrderVersion) error

	// MaxVersionNumber returns the highest version number of an order,
	// 0 when the order has no versions.
	MaxVersionNumber(ctx context.Context, orderID uuid.UUID) (int, error)

	// FindByOrder returns all versions of an order, newest first.
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderVersion, error)

	// FindByNumber returns one specific version, shared.ErrNotFound when absent.
	FindByNumber(ctx context.Context, orderID uuid.UUID, versionNumber int) (*OrderVersion, error)

	// FindLatest returns the newest version, shared.ErrNotFound when the
	// order has none.
	FindLatest(ctx context.Context, orderID uuid.UUID) (*OrderVersion, error)

	// DeleteByOrder removes every version of an order.
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
}
