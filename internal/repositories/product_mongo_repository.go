package repositories

import (
	"context"
	"time"

	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository stores products as documents in the "products" collection.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection("products")}
}

// GetAll returns all products, newest first.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get all products")
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "failed to decode products")
	}
	return products, nil
}

// GetByID returns a product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "ID "+id)
}

// GetBySKU returns a product by its SKU.
func (r *MongoProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"sku": sku}, "SKU "+sku)
}

func (r *MongoProductRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.Wrapf(ErrNotFound, "product with %s", what)
		}
		return nil, errors.Wrapf(err, "failed to get product with %s", what)
	}
	return &product, nil
}

// Create inserts a new product document.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(ErrDuplicate, "product SKU %s", product.SKU)
		}
		return errors.Wrap(err, "failed to create product")
	}
	return nil
}

// Update applies a $set of the patched fields only and returns the updated document.
func (r *MongoProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for field, value := range patch.Fields() {
		set[field] = value
	}

	var product models.Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.Wrapf(ErrNotFound, "product with ID %s for update", id)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.Wrapf(ErrDuplicate, "product SKU %v", set["sku"])
		}
		return nil, errors.Wrap(err, "failed to update product")
	}
	return &product, nil
}

// Delete removes a product document.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(ErrNotFound, "product with ID %s for deletion", id)
	}
	return nil
}

// DeleteAll removes every product document.
func (r *MongoProductRepository) DeleteAll(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.D{})
	return errors.Wrap(err, "failed to delete products")
}

// DecrementStock uses a filtered $inc so the availability check and the write are one operation.
func (r *MongoProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": quantity}},
		bson.M{
			"$inc": bson.M{"stock": -quantity},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to decrement stock of product %s", id)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "failed to look up product %s", id)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "product with ID %s", id)
	}
	return errors.Wrapf(ErrInsufficientStock, "product %s cannot cover %d units", id, quantity)
}

// IncrementStock returns units to a product's stock.
func (r *MongoProductRepository) IncrementStock(ctx context.Context, id string, quantity int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": quantity},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to increment stock of product %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNotFound, "product with ID %s", id)
	}
	return nil
}
