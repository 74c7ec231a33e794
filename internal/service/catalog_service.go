package service

import (
	"context"
	"fmt"

	"github.com/eltimbiriche/cart-service/internal/entity"
	"github.com/eltimbiriche/cart-service/internal/repository"
)

// CatalogService exposes the product catalog to the delivery layer.
type CatalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) *CatalogService {
	return &CatalogService{productRepo: productRepo}
}

// GetProducts returns all catalog products with their variations.
func (s *CatalogService) GetProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// GetProduct returns one product by id, or nil when unknown.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ResolveVariation finds the product's variation with the given id.
func (s *CatalogService) ResolveVariation(ctx context.Context, productID int64, variationID int64) (*entity.Product, *entity.ProductVariation, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, fmt.Errorf("product %d not found", productID)
	}
	for i := range p.Variations {
		if p.Variations[i].ID == variationID {
			return p, &p.Variations[i], nil
		}
	}
	return nil, nil, fmt.Errorf("variation %d not found on product %d", variationID, productID)
}

// Seed inserts the given products when the catalog is empty.
func (s *CatalogService) Seed(ctx context.Context, products []entity.Product) error {
	return s.productRepo.Seed(ctx, products)
}
