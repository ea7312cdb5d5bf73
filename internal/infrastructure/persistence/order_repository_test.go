package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/donhauser001/order-engine/internal/domain/order"
	"github.com/donhauser001/order-engine/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormOrderRepository(gormDB), mock, mockDB
}

func TestGormOrderRepository_FindByID(t *testing.T) {
	t.Run("finds existing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		clientID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "client_id", "client_name", "status"}).
			AddRow(orderID, clientID, "晨光文化传媒", "draft")

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnRows(rows)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, orderID, o.ID)
		assert.Equal(t, "晨光文化传媒", o.ClientName)
		assert.Equal(t, order.OrderStatusDraft, o.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.Nil(t, o)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindAll(t *testing.T) {
	t.Run("applies status filter and pagination", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "client_name", "status"}).
			AddRow(uuid.New(), "晨光文化传媒", "normal").
			AddRow(uuid.New(), "远方出版社", "normal")

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE status = \$1 ORDER BY created_at DESC LIMIT .*`).
			WillReturnRows(rows)

		filter := shared.DefaultFilter()
		filter.Filters["status"] = "normal"

		orders, err := repo.FindAll(context.Background(), filter)

		assert.NoError(t, err)
		assert.Len(t, orders, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies search across names", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE client_name ILIKE \$1 OR project_name ILIKE \$2 OR contact_name ILIKE \$3`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		filter := shared.DefaultFilter()
		filter.Search = "晨光"

		_, err := repo.FindAll(context.Background(), filter)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_Count(t *testing.T) {
	repo, mock, mockDB := newMockOrderRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), shared.DefaultFilter())

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_Save(t *testing.T) {
	repo, mock, mockDB := newMockOrderRepository(t)
	defer mockDB.Close()

	o, err := order.NewOrder(uuid.New(), "晨光文化传媒", "品牌年度服务", uuid.New())
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE "orders" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Save(context.Background(), o)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_Delete(t *testing.T) {
	t.Run("deletes order with its versions and items", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "order_version_items"`).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM "order_versions"`).
			WithArgs(orderID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "orders"`).
			WithArgs(orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(context.Background(), orderID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when the order does not exist", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "order_version_items"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "order_versions"`).
			WithArgs(orderID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "orders"`).
			WithArgs(orderID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), orderID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
