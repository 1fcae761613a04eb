package service

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type VariantInput struct {
	Size     string
	Quantity int64
}

type ProductInput struct {
	Slug               string
	Name               string
	Description        string
	PriceCents         int64
	DiscountPriceCents *int64
	Status             models.ProductStatus
	Variants           []VariantInput
}

type ProductListInput struct {
	Query      string
	OnlyActive bool
	Limit      int
	Offset     int
}

type CatalogService interface {
	ListProducts(ctx context.Context, in ProductListInput) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)

	// admin
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	SetVariantStock(ctx context.Context, productID uuid.UUID, size string, quantity int64) (*models.ProductVariant, error)
}
