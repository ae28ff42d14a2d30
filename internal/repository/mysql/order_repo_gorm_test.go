package mysql

import (
	"context"
	"testing"

	"delivery-service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	reserveSQL  = `UPDATE .products. SET .stock.=stock - \? WHERE id = \? AND stock >= \?`
	countSQL    = `SELECT count\(\*\) FROM .products. WHERE id = \?`
	itemsSQL    = `SELECT \* FROM .order_items. WHERE .order_items.\..order_id. (IN|=)`
	newestFirst = `ORDER BY created_at DESC, id DESC`
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func burgerOrder(items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		UserID: 1,
		Total:  decimal.RequireFromString("19.00"),
		Status: domain.StatusPending,
		Items:  items,
	}
}

func item(productID uint64, qty int) domain.OrderItem {
	return domain.OrderItem{ProductID: productID, Quantity: qty, Price: decimal.RequireFromString("9.50")}
}

func TestOrderRepo_Create_ReservesStockInProductOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	// Product 3 appears twice and is reserved once for the summed quantity,
	// after product 1.
	mock.ExpectExec(reserveSQL).WithArgs(2, 1, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(reserveSQL).WithArgs(2, 3, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO .orders.").WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO .order_items.").WillReturnResult(sqlmock.NewResult(20, 3))
	mock.ExpectCommit()

	order := burgerOrder(item(3, 1), item(1, 2), item(3, 1))
	err := repo.Create(context.Background(), order, true)

	require.NoError(t, err)
	assert.Equal(t, uint64(10), order.ID)
	for _, it := range order.Items {
		assert.Equal(t, uint64(10), it.OrderID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Create_WithoutReservation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO .orders.").WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO .order_items.").WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), burgerOrder(item(1, 500)), false)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Create_ReservationFailures(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		expectedErr error
	}{
		{name: "insufficient stock", count: 1, expectedErr: domain.ErrOutOfStock},
		{name: "missing product", count: 0, expectedErr: domain.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewOrderRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(reserveSQL).WithArgs(1, 1, 1).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(reserveSQL).WithArgs(5, 3, 5).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(countSQL).WithArgs(3).
				WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(tt.count))
			// The decrement of product 1 is undone and no order row is written.
			mock.ExpectRollback()

			order := burgerOrder(item(1, 1), item(3, 5))
			err := repo.Create(context.Background(), order, true)

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Zero(t, order.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepo_FindByUser_NewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(`SELECT \* FROM .orders. WHERE user_id = \? ` + newestFirst).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total", "status"}).
			AddRow(2, 1, "19.00", "PENDING").
			AddRow(1, 1, "9.50", "DELIVERED"))
	mock.ExpectQuery(itemsSQL).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price"}))

	orders, err := repo.FindByUser(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, uint64(2), orders[0].ID)
	assert.Equal(t, uint64(1), orders[1].ID)
	assert.Equal(t, domain.StatusDelivered, orders[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_FindAll_LoadsOwnerSummary(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT \* FROM .orders. ` + newestFirst).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total", "status"}).
			AddRow(3, 7, "27.00", "ON_WAY"))
	mock.ExpectQuery(itemsSQL).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price"}))
	mock.ExpectQuery("SELECT .id.,.name.,.email. FROM .users.").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(7, "Cliente Demo", "cliente@demo.com"))

	orders, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].User)
	assert.Equal(t, "Cliente Demo", orders[0].User.Name)
	assert.Equal(t, "cliente@demo.com", orders[0].User.Email)
	assert.Empty(t, orders[0].User.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_FindByID_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(`SELECT \* FROM .orders. WHERE .orders.\..id. = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	o, err := repo.FindByID(context.Background(), 404)

	assert.NoError(t, err)
	assert.Nil(t, o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_UpdateStatus(t *testing.T) {
	tests := []struct {
		name        string
		affected    int64
		expectedErr error
	}{
		{name: "still in the expected status", affected: 1},
		{name: "changed by someone else", affected: 0, expectedErr: domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewOrderRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE .orders. SET .status.=\?,.updated_at.=\? WHERE status = \? AND .orders.\..id. = \?`).
				WithArgs("PREPARING", sqlmock.AnyArg(), "PENDING", 5).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()

			err := repo.UpdateStatus(context.Background(), 5, domain.StatusPending, domain.StatusPreparing)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
