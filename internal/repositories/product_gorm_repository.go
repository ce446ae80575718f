package repositories

import (
	"context"
	"time"

	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database, newest first.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get all products")
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "product with ID %s", id)
		}
		return nil, errors.Wrapf(err, "failed to get product by ID %s", id)
	}
	return &product, nil
}

// GetBySKU retrieves a single product by its SKU from the database.
func (r *GORMProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "product with SKU %s", sku)
		}
		return nil, errors.Wrapf(err, "failed to get product by SKU %s", sku)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Wrapf(ErrDuplicate, "product SKU %s", product.SKU)
		}
		return errors.Wrap(err, "failed to create product")
	}
	return nil
}

// Update writes the patched columns and reads the row back in one transaction.
func (r *GORMProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	fields := patch.Fields()
	columns := make([]string, 0, len(fields)+1)
	for column := range fields {
		columns = append(columns, column)
	}
	columns = append(columns, "updated_at")

	changes := models.Product{UpdatedAt: time.Now().UTC()}
	patch.ApplyTo(&changes)

	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Select keeps zero values such as a stock of 0 and skips every column the patch left unset.
		res := tx.Model(&models.Product{}).Where("id = ?", id).Select(columns).Updates(&changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "product with ID %s for update", id)
		}
		return tx.First(&product, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.Wrapf(ErrDuplicate, "product SKU %v", fields["sku"])
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to update product")
	}
	return &product, nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "product with ID %s for deletion", id)
	}
	return nil
}

// DeleteAll removes every product.
func (r *GORMProductRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error
	return errors.Wrap(err, "failed to delete products")
}

// DecrementStock issues a single conditional UPDATE so concurrent callers cannot oversell.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to decrement stock of product %s", id)
	}
	if res.RowsAffected == 0 {
		return r.missOrShort(ctx, id, quantity)
	}
	return nil
}

// IncrementStock returns units to a product's stock.
func (r *GORMProductRepository) IncrementStock(ctx context.Context, id string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to increment stock of product %s", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "product with ID %s", id)
	}
	return nil
}

// missOrShort explains why a conditional decrement matched no row.
func (r *GORMProductRepository) missOrShort(ctx context.Context, id string, quantity int) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrapf(err, "failed to look up product %s", id)
	}
	if count == 0 {
		return errors.Wrapf(ErrNotFound, "product with ID %s", id)
	}
	return errors.Wrapf(ErrInsufficientStock, "product %s cannot cover %d units", id, quantity)
}
