package handlers

import (
	"net/http"

	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog service.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	in := service.ProductListInput{
		Query:      c.Query("q"),
		OnlyActive: c.Query("all") != "true",
		Limit:      atoiDefault(c.Query("limit"), 20),
		Offset:     atoiDefault(c.Query("offset"), 0),
	}

	products, total, err := h.catalog.ListProducts(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	resp := dto.ProductListResponse{Products: make([]dto.ProductResponse, 0, len(products)), Total: total}
	for i := range products {
		resp.Products = append(resp.Products, dto.NewProductResponse(&products[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(product))
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	in := service.ProductInput{
		Slug:               req.Slug,
		Name:               req.Name,
		Description:        req.Description,
		PriceCents:         req.PriceCents,
		DiscountPriceCents: req.DiscountPriceCents,
		Status:             models.ProductStatus(req.Status),
	}
	for _, v := range req.Variants {
		in.Variants = append(in.Variants, service.VariantInput{Size: v.Size, Quantity: v.Quantity})
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductResponse(product))
}

func (h *CatalogHandler) SetVariantStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id", nil))
		return
	}

	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	variant, err := h.catalog.SetVariantStock(c.Request.Context(), productID, req.Size, req.Quantity)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.VariantResponse{Size: variant.Size, Quantity: variant.Quantity})
}
