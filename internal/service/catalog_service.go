package service

import (
	"context"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

type catalogService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewCatalogService(repo *repository.Repository) CatalogService {
	return &catalogService{repo: repo, now: time.Now}
}

func (s *catalogService) ListProducts(ctx context.Context, in ProductListInput) ([]models.Product, int64, error) {
	f := repository.ProductListFilter{
		Query:  strings.TrimSpace(in.Query),
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	if in.OnlyActive {
		active := models.ProductStatusActive
		f.Status = &active
	}
	return s.repo.Products.List(ctx, f)
}

func (s *catalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.repo.Products.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != RoleAdmin {
		return nil, ErrForbidden
	}

	now := s.now()
	status := in.Status
	if status == "" {
		status = models.ProductStatusDraft
	}

	var total int64
	variants := make([]models.ProductVariant, 0, len(in.Variants))
	for _, v := range in.Variants {
		if v.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		total += v.Quantity
		variants = append(variants, models.ProductVariant{
			Size:      strings.TrimSpace(v.Size),
			Quantity:  v.Quantity,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	p := &models.Product{
		Slug:               strings.TrimSpace(in.Slug),
		Name:               strings.TrimSpace(in.Name),
		Description:        strings.TrimSpace(in.Description),
		PriceCents:         in.PriceCents,
		DiscountPriceCents: in.DiscountPriceCents,
		Status:             status,
		TotalStock:         total, // counter born consistent with its variants
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.repo.Orders.WithTx(ctx, func(_ repository.OrderRepo, _ repository.OrderLineRepo, products repository.ProductRepo, vrepo repository.VariantRepo) error {
		if err := products.Create(ctx, p); err != nil {
			return err
		}
		for i := range variants {
			variants[i].ProductID = p.ID
			if err := vrepo.Create(ctx, &variants[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return p, nil
}

// SetVariantStock is the only stock edit path besides checkout itself: the
// variant quantity and the product counter move in one transaction, so the
// two can never drift.
func (s *catalogService) SetVariantStock(ctx context.Context, productID uuid.UUID, size string, quantity int64) (*models.ProductVariant, error) {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != RoleAdmin {
		return nil, ErrForbidden
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	size = strings.TrimSpace(size)
	var out *models.ProductVariant

	err = s.repo.Orders.WithTx(ctx, func(_ repository.OrderRepo, _ repository.OrderLineRepo, products repository.ProductRepo, variants repository.VariantRepo) error {
		p, err := products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrProductNotFound
		}

		v, err := variants.GetByProductAndSize(ctx, productID, size)
		if err != nil {
			return err
		}

		if v == nil {
			v = &models.ProductVariant{
				ProductID: productID,
				Size:      size,
				Quantity:  quantity,
				CreatedAt: s.now(),
				UpdatedAt: s.now(),
			}
			if err := variants.Create(ctx, v); err != nil {
				return err
			}
			if _, err := products.AdjustTotalStock(ctx, productID, quantity); err != nil {
				return err
			}
			out = v
			return nil
		}

		delta := quantity - v.Quantity
		if err := variants.SetQuantity(ctx, v.ID, quantity); err != nil {
			return err
		}
		if delta != 0 {
			if _, err := products.AdjustTotalStock(ctx, productID, delta); err != nil {
				return err
			}
		}
		v.Quantity = quantity
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
