package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products, newest first.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, cloneProduct(p))
	}
	sort.SliceStable(productList, func(i, j int) bool {
		return productList[i].CreatedAt.After(productList[j].CreatedAt)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "product with ID %s", id)
	}
	p := cloneProduct(product)
	return &p, nil
}

// GetBySKU returns a product by its SKU.
func (r *MemoryProductRepository) GetBySKU(_ context.Context, sku string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.products {
		if product.SKU == sku {
			p := cloneProduct(product)
			return &p, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "product with SKU %s", sku)
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.skuTaken(product.SKU, "") {
		return errors.Wrapf(ErrDuplicate, "product SKU %s", product.SKU)
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Update merges patch into the stored product under the write lock.
func (r *MemoryProductRepository) Update(_ context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "product with ID %s for update", id)
	}
	if patch.SKU != nil && r.skuTaken(*patch.SKU, id) {
		return nil, errors.Wrapf(ErrDuplicate, "product SKU %s", *patch.SKU)
	}
	patch.ApplyTo(&product)
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = cloneProduct(product)
	p := cloneProduct(product)
	return &p, nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return errors.Wrapf(ErrNotFound, "product with ID %s for deletion", id)
	}
	delete(r.products, id)
	return nil
}

// DeleteAll removes every product.
func (r *MemoryProductRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[string]models.Product)
	return nil
}

// DecrementStock checks and decrements stock under the write lock.
func (r *MemoryProductRepository) DecrementStock(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "product with ID %s", id)
	}
	if product.Stock < quantity {
		return errors.Wrapf(ErrInsufficientStock, "product %s has %d, requested %d", id, product.Stock, quantity)
	}
	product.Stock -= quantity
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return nil
}

// IncrementStock adds quantity units back to the product's stock.
func (r *MemoryProductRepository) IncrementStock(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return errors.Wrapf(ErrNotFound, "product with ID %s", id)
	}
	product.Stock += quantity
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return nil
}

// skuTaken must be called with r.mu held.
func (r *MemoryProductRepository) skuTaken(sku, exceptID string) bool {
	for id, p := range r.products {
		if id != exceptID && p.SKU == sku {
			return true
		}
	}
	return false
}

func cloneProduct(p models.Product) models.Product {
	p.Colors = append([]string(nil), p.Colors...)
	p.Sizes = append([]string(nil), p.Sizes...)
	p.Images = append([]string(nil), p.Images...)
	return p
}
