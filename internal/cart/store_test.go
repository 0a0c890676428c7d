package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbasket/greenbasket-backend/internal/discount"
	"github.com/greenbasket/greenbasket-backend/internal/pricing"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

type memStorage struct {
	lines   map[string][]pricing.Line
	coupons map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{
		lines:   map[string][]pricing.Line{},
		coupons: map[string]string{},
	}
}

func (m *memStorage) Load(_ context.Context, sid string) ([]pricing.Line, string, error) {
	return m.lines[sid], m.coupons[sid], nil
}

func (m *memStorage) SaveLines(_ context.Context, sid string, lines []pricing.Line) error {
	if len(lines) == 0 {
		delete(m.lines, sid)
		return nil
	}
	m.lines[sid] = lines
	return nil
}

func (m *memStorage) SaveCoupon(_ context.Context, sid, code string) error {
	if code == "" {
		delete(m.coupons, sid)
		return nil
	}
	m.coupons[sid] = code
	return nil
}

func (m *memStorage) Clear(_ context.Context, sid string) error {
	delete(m.lines, sid)
	delete(m.coupons, sid)
	return nil
}

// tenPercentResolver applies 10% off the subtotal for SAVE10 and
// resolves everything else to zero.
type tenPercentResolver struct{}

func (tenPercentResolver) Resolve(_ context.Context, code string, lines []pricing.Line) (discount.Result, error) {
	if code != "SAVE10" {
		return discount.Zero(code), nil
	}
	amount := pricing.Subtotal(lines) / 10
	return discount.Result{Code: code, Amount: amount, Applied: amount > 0}, nil
}

func newTestStore(t *testing.T) (*Store, *memStorage) {
	t.Helper()
	storage := newMemStorage()
	store, err := NewStore(storage, tenPercentResolver{}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return store, storage
}

var (
	apples  = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	oatmilk = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func appleLine(qty int) pricing.Line {
	return pricing.Line{ProductID: apples, Name: "Apples", UnitPrice: 250, Quantity: qty}
}

func TestViewTotalsWithSaleAndCoupon(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", pricing.Line{ProductID: apples, Name: "Rice", UnitPrice: 1000, Quantity: 2})
	require.NoError(t, err)
	orig := int64(800)
	_, err = store.AddLine(ctx, "s1", pricing.Line{ProductID: oatmilk, Name: "Oat Milk", UnitPrice: 500, OriginalPrice: &orig, Quantity: 1})
	require.NoError(t, err)

	view, err := store.ApplyCoupon(ctx, "s1", "SAVE10")
	require.NoError(t, err)

	assert.Equal(t, int64(2500), view.Subtotal)
	assert.Equal(t, int64(2800), view.OriginalSubtotal)
	assert.Equal(t, int64(300), view.Savings)
	assert.Equal(t, int64(250), view.Discount.Amount)
	assert.Equal(t, int64(2250), view.Total)
}

func TestAddLineMergesByProductAndVariant(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", appleLine(2))
	require.NoError(t, err)

	view, err := store.AddLine(ctx, "s1", appleLine(3))
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, 5, view.Lines[0].Quantity)
	assert.Equal(t, int64(1250), view.Subtotal)
}

func TestAddLineVariantsStaySeparate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", pricing.Line{ProductID: oatmilk, Name: "Oat Milk", VariantLabel: "1L", UnitPrice: 399, Quantity: 1})
	require.NoError(t, err)
	view, err := store.AddLine(ctx, "s1", pricing.Line{ProductID: oatmilk, Name: "Oat Milk", VariantLabel: "500ml", UnitPrice: 249, Quantity: 1})
	require.NoError(t, err)

	assert.Len(t, view.Lines, 2)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", appleLine(2))
	require.NoError(t, err)

	view, err := store.SetQuantity(ctx, "s1", apples, "", 0)
	require.NoError(t, err)
	assert.True(t, view.Empty())
}

func TestSetQuantityUnknownItem(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.SetQuantity(context.Background(), "s1", apples, "", 3)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestEmptyingCartClearsCoupon(t *testing.T) {
	store, storage := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", appleLine(2))
	require.NoError(t, err)
	_, err = store.ApplyCoupon(ctx, "s1", "SAVE10")
	require.NoError(t, err)
	require.Equal(t, "SAVE10", storage.coupons["s1"])

	view, err := store.RemoveLine(ctx, "s1", apples, "")
	require.NoError(t, err)

	assert.True(t, view.Empty())
	assert.Empty(t, storage.coupons["s1"])
	assert.Zero(t, view.Discount.Amount)
}

func TestDiscountRecomputedOnMutation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", appleLine(4)) // 1000
	require.NoError(t, err)

	view, err := store.ApplyCoupon(ctx, "s1", "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, int64(100), view.Discount.Amount)
	assert.Equal(t, int64(900), view.Total)

	// Doubling the quantity doubles the discount on the next view.
	view, err = store.SetQuantity(ctx, "s1", apples, "", 8)
	require.NoError(t, err)
	assert.Equal(t, int64(200), view.Discount.Amount)
	assert.Equal(t, int64(1800), view.Total)
}

func TestApplyCouponLowercaseNormalized(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", appleLine(4))
	require.NoError(t, err)

	view, err := store.ApplyCoupon(ctx, "s1", "  save10 ")
	require.NoError(t, err)
	assert.True(t, view.Discount.Applied)
}

func TestApplyCouponEmptyCart(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ApplyCoupon(context.Background(), "s1", "SAVE10")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestUnknownCouponKeptButNotApplied(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", appleLine(1))
	require.NoError(t, err)

	view, err := store.ApplyCoupon(ctx, "s1", "NOPE")
	require.NoError(t, err)
	assert.Equal(t, "NOPE", view.Discount.Code)
	assert.False(t, view.Discount.Applied)
	assert.Equal(t, view.Subtotal, view.Total)
}

func TestRemoveCoupon(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", appleLine(4))
	require.NoError(t, err)
	_, err = store.ApplyCoupon(ctx, "s1", "SAVE10")
	require.NoError(t, err)

	view, err := store.RemoveCoupon(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, view.Discount.Amount)
	assert.Equal(t, view.Subtotal, view.Total)
}

func TestSessionsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddLine(ctx, "s1", appleLine(1))
	require.NoError(t, err)

	view, err := store.Get(ctx, "s2")
	require.NoError(t, err)
	assert.True(t, view.Empty())
}
