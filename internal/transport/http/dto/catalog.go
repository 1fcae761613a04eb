package dto

import (
	"storefront/internal/models"
)

type VariantRequest struct {
	Size     string `json:"size" binding:"required"`
	Quantity int64  `json:"quantity" binding:"gte=0"`
}

type CreateProductRequest struct {
	Slug               string           `json:"slug" binding:"required"`
	Name               string           `json:"name" binding:"required"`
	Description        string           `json:"description"`
	PriceCents         int64            `json:"price_cents" binding:"required,gt=0"`
	DiscountPriceCents *int64           `json:"discount_price_cents" binding:"omitempty,gt=0"`
	Status             string           `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
	Variants           []VariantRequest `json:"variants" binding:"dive"`
}

type SetStockRequest struct {
	Size     string `json:"size" binding:"required"`
	Quantity int64  `json:"quantity" binding:"gte=0"`
}

type VariantResponse struct {
	Size     string `json:"size"`
	Quantity int64  `json:"quantity"`
}

type ProductResponse struct {
	ID                 string            `json:"id"`
	Slug               string            `json:"slug"`
	Name               string            `json:"name"`
	Description        string            `json:"description,omitempty"`
	PriceCents         int64             `json:"price_cents"`
	DiscountPriceCents *int64            `json:"discount_price_cents,omitempty"`
	CurrentPriceCents  int64             `json:"current_price_cents"`
	Status             string            `json:"status"`
	TotalStock         int64             `json:"total_stock"`
	Variants           []VariantResponse `json:"variants,omitempty"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	variants := make([]VariantResponse, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, VariantResponse{Size: v.Size, Quantity: v.Quantity})
	}
	return ProductResponse{
		ID:                 p.ID.String(),
		Slug:               p.Slug,
		Name:               p.Name,
		Description:        p.Description,
		PriceCents:         p.PriceCents,
		DiscountPriceCents: p.DiscountPriceCents,
		CurrentPriceCents:  p.CurrentPriceCents(),
		Status:             string(p.Status),
		TotalStock:         p.TotalStock,
		Variants:           variants,
	}
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}
