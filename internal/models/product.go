package models

import "time"

// ProductStatus is the catalog visibility state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// Product represents a product in the catalog.
type Product struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name        string        `json:"name" gorm:"not null" bson:"name"`
	Description string        `json:"description" bson:"description"`
	Price       float64       `json:"price" gorm:"not null" bson:"price"`
	Stock       int           `json:"stock" gorm:"not null;check:stock >= 0" bson:"stock"`
	Category    string        `json:"category" gorm:"index;type:varchar(100)" bson:"category"`
	SKU         string        `json:"sku" gorm:"uniqueIndex;type:varchar(100)" bson:"sku"`
	Status      ProductStatus `json:"status" gorm:"type:varchar(16)" bson:"status"`
	Colors      []string      `json:"colors" gorm:"serializer:json" bson:"colors"`
	Sizes       []string      `json:"sizes" gorm:"serializer:json" bson:"sizes"`
	Images      []string      `json:"images" gorm:"serializer:json" bson:"images"` // Ordered image URLs
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ProductInput is the body accepted when creating a product.
type ProductInput struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description" validate:"required"`
	Price       *float64      `json:"price" validate:"required,gte=0"`
	Stock       *int          `json:"stock" validate:"required,gte=0"`
	Category    string        `json:"category" validate:"required"`
	SKU         string        `json:"sku" validate:"required"`
	Status      ProductStatus `json:"status" validate:"omitempty,oneof=active draft archived"`
	Colors      []string      `json:"colors" validate:"omitempty,dive,required"`
	Sizes       []string      `json:"sizes" validate:"omitempty,dive,required"`
	Images      []string      `json:"images" validate:"omitempty,dive,url"`
}

// ProductPatch is the body accepted when updating a product. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string        `json:"name" validate:"omitempty,min=1"`
	Description *string        `json:"description" validate:"omitempty,min=1"`
	Price       *float64       `json:"price" validate:"omitempty,gte=0"`
	Stock       *int           `json:"stock" validate:"omitempty,gte=0"`
	Category    *string        `json:"category" validate:"omitempty,min=1"`
	SKU         *string        `json:"sku" validate:"omitempty,min=1"`
	Status      *ProductStatus `json:"status" validate:"omitempty,oneof=active draft archived"`
	Colors      []string       `json:"colors" validate:"omitempty,dive,required"`
	Sizes       []string       `json:"sizes" validate:"omitempty,dive,required"`
	Images      []string       `json:"images" validate:"omitempty,dive,url"`
}

// Fields returns the set fields of the patch keyed by column name. Stock is
// present only when the patch sets it explicitly.
func (p ProductPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Stock != nil {
		fields["stock"] = *p.Stock
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.SKU != nil {
		fields["sku"] = *p.SKU
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.Colors != nil {
		fields["colors"] = p.Colors
	}
	if p.Sizes != nil {
		fields["sizes"] = p.Sizes
	}
	if p.Images != nil {
		fields["images"] = p.Images
	}
	return fields
}

// ApplyTo copies the set fields of the patch onto product.
func (p ProductPatch) ApplyTo(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.SKU != nil {
		product.SKU = *p.SKU
	}
	if p.Status != nil {
		product.Status = *p.Status
	}
	if p.Colors != nil {
		product.Colors = p.Colors
	}
	if p.Sizes != nil {
		product.Sizes = p.Sizes
	}
	if p.Images != nil {
		product.Images = p.Images
	}
}
