package repositories

import (
	"context"

	"backoffice/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes only the fields set in patch and returns the stored product.
	// Stock is left alone unless the patch sets it.
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error

	// DecrementStock removes quantity units from the product's stock only if at
	// least quantity units are available. The check and the write are a single
	// atomic step; it returns ErrInsufficientStock otherwise and ErrNotFound for
	// an unknown id.
	DecrementStock(ctx context.Context, id string, quantity int) error
	// IncrementStock returns quantity units to the product's stock.
	IncrementStock(ctx context.Context, id string, quantity int) error
}
