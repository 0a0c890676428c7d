package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

const schema = `
CREATE TABLE orders (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	checkout_session_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'pending',
	subtotal INTEGER NOT NULL,
	discount INTEGER NOT NULL DEFAULT 0,
	total INTEGER NOT NULL,
	coupon_code TEXT,
	currency TEXT NOT NULL DEFAULT 'usd',
	shipping_address TEXT,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE order_items (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	product_id TEXT NOT NULL,
	name TEXT NOT NULL,
	variant_label TEXT,
	image_url TEXT,
	unit_price INTEGER NOT NULL,
	quantity INTEGER NOT NULL,
	created_at DATETIME
);
`

func testRepo(t *testing.T) Repository {
	t.Helper()

	// A named shared in-memory database keeps the schema visible
	// across pooled connections while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.Exec(schema).Error)

	return NewRepository(db.FromGorm(gdb))
}

func testOrder(userID uuid.UUID, sessionID string) *models.Order {
	return &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		CheckoutSessionID: sessionID,
		Status:            enums.OrderStatusPending,
		Subtotal:          2500,
		Discount:          250,
		Total:             2250,
		Currency:          "usd",
		Items: []models.OrderItem{{
			ID:        uuid.New(),
			ProductID: uuid.New(),
			Name:      "Apples",
			UnitPrice: 250,
			Quantity:  10,
		}},
	}
}

func TestCreateAndFindBySessionID(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	order := testOrder(userID, "cs_test_123")
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindBySessionID(ctx, "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Apples", found.Items[0].Name)
}

func TestCreateDuplicateSessionID(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOrder(uuid.New(), "cs_test_dup")))

	err := repo.Create(ctx, testOrder(uuid.New(), "cs_test_dup"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateSession)
}

func TestFindBySessionIDNotFound(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.FindBySessionID(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestListFiltersByUser(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, repo.Create(ctx, testOrder(alice, "cs_a1")))
	require.NoError(t, repo.Create(ctx, testOrder(alice, "cs_a2")))
	require.NoError(t, repo.Create(ctx, testOrder(bob, "cs_b1")))

	out, total, err := repo.List(ctx, ListFilter{UserID: &alice}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, out, 2)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first := testOrder(uuid.New(), "cs_1")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, testOrder(uuid.New(), "cs_2")))
	require.NoError(t, repo.UpdateStatus(ctx, first.ID, enums.OrderStatusShipped))

	shipped := enums.OrderStatusShipped
	out, total, err := repo.List(ctx, ListFilter{Status: &shipped}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, first.ID, out[0].ID)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	repo := testRepo(t)

	err := repo.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatusShipped)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}
