package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogEnv() (*catalogService, *testEnv) {
	env := newTestEnv()
	svc := &catalogService{
		repo: env.svc.repo,
		now:  func() time.Time { return env.now },
	}
	return svc, env
}

func TestCreateProduct_AdminOnly(t *testing.T) {
	svc, _ := newCatalogEnv()

	_, err := svc.CreateProduct(authedCtx(uuid.New()), ProductInput{Slug: "tee", Name: "Tee", PriceCents: 5000})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateProduct(context.Background(), ProductInput{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateProduct_TotalStockMatchesVariants(t *testing.T) {
	svc, env := newCatalogEnv()

	var createdVariants []models.ProductVariant
	env.variants.CreateFn = func(_ context.Context, v *models.ProductVariant) error {
		createdVariants = append(createdVariants, *v)
		return nil
	}
	env.products.CreateFn = func(_ context.Context, p *models.Product) error {
		p.ID = uuid.New()
		return nil
	}

	p, err := svc.CreateProduct(adminCtx(uuid.New()), ProductInput{
		Slug:       "basic-tee",
		Name:       "Basic Tee",
		PriceCents: 5000,
		Variants: []VariantInput{
			{Size: "P", Quantity: 3},
			{Size: "M", Quantity: 5},
			{Size: "G", Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), p.TotalStock, "counter born equal to the variant sum")
	assert.Equal(t, models.ProductStatusDraft, p.Status)
	require.Len(t, createdVariants, 3)
	for _, v := range createdVariants {
		assert.Equal(t, p.ID, v.ProductID)
	}
}

func TestSetVariantStock_MovesCounterByDelta(t *testing.T) {
	svc, env := newCatalogEnv()
	productID := uuid.New()
	variant := &models.ProductVariant{ID: uuid.New(), ProductID: productID, Size: "M", Quantity: 5}

	env.products.GetByIDFn = func(context.Context, uuid.UUID) (*models.Product, error) {
		return &models.Product{ID: productID, Status: models.ProductStatusActive, TotalStock: 5}, nil
	}
	env.variants.GetByProductAndSizeFn = func(context.Context, uuid.UUID, string) (*models.ProductVariant, error) {
		return variant, nil
	}
	var setTo int64
	env.variants.SetQuantityFn = func(_ context.Context, _ uuid.UUID, q int64) error {
		setTo = q
		return nil
	}

	out, err := svc.SetVariantStock(adminCtx(uuid.New()), productID, "M", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Quantity)
	assert.Equal(t, int64(2), setTo)
	assert.Equal(t, []int64{-3}, env.products.adjustCalls, "counter moves by the delta, in the same tx")
}

func TestSetVariantStock_CreatesMissingVariant(t *testing.T) {
	svc, env := newCatalogEnv()
	productID := uuid.New()

	env.products.GetByIDFn = func(context.Context, uuid.UUID) (*models.Product, error) {
		return &models.Product{ID: productID, Status: models.ProductStatusActive}, nil
	}
	env.variants.GetByProductAndSizeFn = func(context.Context, uuid.UUID, string) (*models.ProductVariant, error) {
		return nil, nil
	}

	out, err := svc.SetVariantStock(adminCtx(uuid.New()), productID, "GG", 4)
	require.NoError(t, err)
	assert.Equal(t, "GG", out.Size)
	assert.Equal(t, int64(4), out.Quantity)
	assert.Equal(t, []int64{4}, env.products.adjustCalls)
}

func TestSetVariantStock_Guards(t *testing.T) {
	svc, env := newCatalogEnv()

	_, err := svc.SetVariantStock(authedCtx(uuid.New()), uuid.New(), "M", 1)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SetVariantStock(adminCtx(uuid.New()), uuid.New(), "M", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	env.products.GetByIDFn = func(context.Context, uuid.UUID) (*models.Product, error) { return nil, nil }
	_, err = svc.SetVariantStock(adminCtx(uuid.New()), uuid.New(), "M", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProducts_OnlyActiveFilter(t *testing.T) {
	svc, env := newCatalogEnv()

	var got repository.ProductListFilter
	env.products.ListFn = func(_ context.Context, f repository.ProductListFilter) ([]models.Product, int64, error) {
		got = f
		return nil, 0, nil
	}

	_, _, err := svc.ListProducts(context.Background(), ProductListInput{OnlyActive: true, Query: "  tee "})
	require.NoError(t, err)
	require.NotNil(t, got.Status)
	assert.Equal(t, models.ProductStatusActive, *got.Status)
	assert.Equal(t, "tee", got.Query)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc, env := newCatalogEnv()
	env.products.GetBySlugFn = func(context.Context, string) (*models.Product, error) { return nil, nil }

	_, err := svc.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
