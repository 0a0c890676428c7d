package products

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

type stubRepo struct {
	Repository
	products map[uuid.UUID]*models.Product
}

func newStubRepo() *stubRepo {
	return &stubRepo{products: map[uuid.UUID]*models.Product{}}
}

func (s *stubRepo) Create(_ context.Context, p *models.Product) error {
	s.products[p.ID] = p
	return nil
}

func (s *stubRepo) Update(_ context.Context, p *models.Product) error {
	if _, ok := s.products[p.ID]; !ok {
		return errors.New(errors.CodeNotFound, "product not found")
	}
	s.products[p.ID] = p
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "product not found")
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) List(_ context.Context, _ Filter, p pagination.Params) ([]models.Product, int64, error) {
	var out []models.Product
	for _, prod := range s.products {
		out = append(out, *prod)
	}
	return out, int64(len(out)), nil
}

func (s *stubRepo) WithTx(_ *gorm.DB) Repository { return s }

func newTestService(t *testing.T) (Service, *stubRepo) {
	t.Helper()
	repo := newStubRepo()
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return svc, repo
}

func ptr(v int64) *int64 { return &v }

func TestCreateProduct(t *testing.T) {
	svc, repo := newTestService(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Organic Apples",
		Price:      250,
		CategoryID: uuid.NewString(),
		Variants:   []VariantInput{{Label: "1kg", Price: ptr(450)}},
	})
	require.NoError(t, err)

	assert.True(t, product.Active)
	assert.Len(t, product.Variants, 1)
	assert.Contains(t, repo.products, product.ID)
}

func TestCreateProductBadCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Apples",
		Price:      250,
		CategoryID: "not-a-uuid",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestResolveLineDefaultsToFirstVariant(t *testing.T) {
	svc, repo := newTestService(t)
	id := uuid.New()
	repo.products[id] = &models.Product{
		ID: id, Name: "Apples", Price: 250, OriginalPrice: ptr(300), Active: true,
		Variants: []models.ProductVariant{{Label: "1kg"}, {Label: "5kg", Price: ptr(1100)}},
	}

	line, err := svc.ResolveLine(context.Background(), id, "", 3)
	require.NoError(t, err)

	assert.Equal(t, "1kg", line.VariantLabel)
	assert.Equal(t, int64(250), line.UnitPrice)
	require.NotNil(t, line.OriginalPrice)
	assert.Equal(t, int64(300), *line.OriginalPrice)
	assert.Equal(t, 3, line.Quantity)
}

func TestResolveLineNoOptions(t *testing.T) {
	svc, repo := newTestService(t)
	id := uuid.New()
	repo.products[id] = &models.Product{ID: id, Name: "Apples", Price: 250, Active: true}

	_, err := svc.ResolveLine(context.Background(), id, "", 1)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestResolveLineVariantOverride(t *testing.T) {
	svc, repo := newTestService(t)
	id := uuid.New()
	repo.products[id] = &models.Product{
		ID: id, Name: "Oat Milk", Price: 399, Active: true,
		Variants: []models.ProductVariant{{Label: "500ml", Price: ptr(249)}},
	}

	line, err := svc.ResolveLine(context.Background(), id, "500ml", 1)
	require.NoError(t, err)

	assert.Equal(t, int64(249), line.UnitPrice)
	assert.Equal(t, "500ml", line.VariantLabel)
	assert.Nil(t, line.OriginalPrice)
}

func TestResolveLineUnknownVariant(t *testing.T) {
	svc, repo := newTestService(t)
	id := uuid.New()
	repo.products[id] = &models.Product{ID: id, Name: "Oat Milk", Price: 399, Active: true}

	_, err := svc.ResolveLine(context.Background(), id, "2L", 1)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestResolveLineInactiveProduct(t *testing.T) {
	svc, repo := newTestService(t)
	id := uuid.New()
	repo.products[id] = &models.Product{ID: id, Name: "Gone", Price: 100, Active: false}

	_, err := svc.ResolveLine(context.Background(), id, "", 1)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fresh-produce", slugify("Fresh Produce"))
	assert.Equal(t, "dairy-eggs", slugify("Dairy & Eggs"))
}
