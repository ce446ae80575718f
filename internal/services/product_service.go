package services

import (
	"context"
	"strings"

	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products, newest first.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return product, nil
}

// CreateProduct validates input and stores a new product. Status defaults to active.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       *input.Price,
		Stock:       *input.Stock,
		Category:    strings.TrimSpace(input.Category),
		SKU:         strings.TrimSpace(input.SKU),
		Status:      input.Status,
		Colors:      nonNil(input.Colors),
		Sizes:       nonNil(input.Sizes),
		Images:      nonNil(input.Images),
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, s.translate(err, "")
	}
	log.WithFields(log.Fields{"product_id": product.ID, "sku": product.SKU}).Info("Product created")
	return product, nil
}

// UpdateProduct applies the non-nil fields of patch to the product with the given ID.
// Stock changes only when the patch sets it.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	patch.Name = trimmed(patch.Name)
	patch.Category = trimmed(patch.Category)
	patch.SKU = trimmed(patch.SKU)

	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.translate(err, id)
	}
	log.WithField("product_id", id).Info("Product updated")
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id)
	}
	log.WithField("product_id", id).Info("Product deleted")
	return nil
}

func (s *ProductService) translate(err error, id string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return &ProductNotFoundError{ProductID: id}
	case errors.Is(err, repositories.ErrDuplicate):
		return errors.WithStack(ErrDuplicateSKU)
	}
	return storeUnavailable(err)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	t := strings.TrimSpace(*value)
	return &t
}
