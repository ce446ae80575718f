package services

import (
	"context"
	"time"

	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// SeedResult reports how many records a seed run inserted.
type SeedResult struct {
	Products int `json:"productsCount"`
	Orders   int `json:"ordersCount"`
}

// Seeder loads the sample catalog and order history.
type Seeder struct {
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	now         func() time.Time
}

// NewSeeder creates a new Seeder.
func NewSeeder(productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository) *Seeder {
	return &Seeder{productRepo: productRepo, orderRepo: orderRepo, now: time.Now}
}

// sampleLine references a sample product by its index in sampleProducts.
type sampleLine struct {
	product  int
	quantity int
}

type sampleOrder struct {
	customerName string
	email        string
	lines        []sampleLine
	status       models.OrderStatus
	daysAgo      int
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			Name:        "Wireless Headphones",
			Description: "Premium noise-cancelling wireless headphones with 30-hour battery life",
			Price:       199.99,
			Stock:       45,
			Category:    "Electronics",
			SKU:         "WH-2024-001",
			Status:      models.ProductStatusActive,
			Images:      []string{"https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500"},
			Colors:      []string{"Black", "Silver", "Blue"},
			Sizes:       []string{},
		},
		{
			Name:        "Running Shoes",
			Description: "Lightweight running shoes with advanced cushioning technology",
			Price:       129.99,
			Stock:       78,
			Category:    "Sports",
			SKU:         "RS-2024-002",
			Status:      models.ProductStatusActive,
			Images:      []string{"https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=500"},
			Colors:      []string{"Red", "Blue", "White"},
			Sizes:       []string{"8", "9", "10", "11"},
		},
		{
			Name:        "Coffee Maker",
			Description: "Programmable coffee maker with thermal carafe",
			Price:       89.99,
			Stock:       32,
			Category:    "Home",
			SKU:         "CM-2024-003",
			Status:      models.ProductStatusActive,
			Images:      []string{"https://images.unsplash.com/photo-1517668808822-9ebb02f2a0e6?w=500"},
			Colors:      []string{"Black", "Stainless Steel"},
			Sizes:       []string{},
		},
		{
			Name:        "Yoga Mat",
			Description: "Non-slip eco-friendly yoga mat with carrying strap",
			Price:       34.99,
			Stock:       120,
			Category:    "Sports",
			SKU:         "YM-2024-004",
			Status:      models.ProductStatusActive,
			Images:      []string{"https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=500"},
			Colors:      []string{"Purple", "Blue", "Pink"},
			Sizes:       []string{},
		},
		{
			Name:        "Smart Watch",
			Description: "Fitness tracker with heart rate monitor and GPS",
			Price:       249.99,
			Stock:       56,
			Category:    "Electronics",
			SKU:         "SW-2024-005",
			Status:      models.ProductStatusActive,
			Images:      []string{"https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500"},
			Colors:      []string{"Black", "Rose Gold", "Silver"},
			Sizes:       []string{"S", "M", "L"},
		},
	}
}

var sampleOrders = []sampleOrder{
	{customerName: "John Doe", email: "john@example.com", lines: []sampleLine{{0, 2}}, status: models.OrderStatusDelivered, daysAgo: 2},
	{customerName: "Jane Smith", email: "jane@example.com", lines: []sampleLine{{1, 1}, {3, 1}}, status: models.OrderStatusProcessing, daysAgo: 5},
	{customerName: "Mike Johnson", email: "mike@example.com", lines: []sampleLine{{4, 1}}, status: models.OrderStatusPending, daysAgo: 1},
	{customerName: "Sarah Wilson", email: "sarah@example.com", lines: []sampleLine{{2, 1}}, status: models.OrderStatusDelivered, daysAgo: 7},
}

// Seed replaces all products and orders with the sample data set.
// Sample orders are historical and do not reduce stock.
func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	if err := s.orderRepo.DeleteAll(ctx); err != nil {
		return nil, storeUnavailable(err)
	}
	if err := s.productRepo.DeleteAll(ctx); err != nil {
		return nil, storeUnavailable(err)
	}

	products := sampleProducts()
	for i := range products {
		if err := s.productRepo.Create(ctx, &products[i]); err != nil {
			return nil, storeUnavailable(err)
		}
	}

	now := s.now().UTC()
	for _, sample := range sampleOrders {
		total := decimal.Zero
		items := make([]models.OrderLine, 0, len(sample.lines))
		for _, line := range sample.lines {
			p := products[line.product]
			items = append(items, models.OrderLine{ProductID: p.ID, Quantity: line.quantity, Price: p.Price, Name: p.Name})
			total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(line.quantity))))
		}
		order := &models.Order{
			CustomerName: sample.customerName,
			Email:        sample.email,
			TotalAmount:  total.InexactFloat64(),
			Status:       sample.status,
			OrderItems:   items,
			CreatedAt:    now.AddDate(0, 0, -sample.daysAgo),
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return nil, storeUnavailable(err)
		}
	}

	result := &SeedResult{Products: len(products), Orders: len(sampleOrders)}
	log.WithFields(log.Fields{"products": result.Products, "orders": result.Orders}).Info("Database seeded")
	return result, nil
}

// SeedIfEmpty seeds only when the catalog has no products.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (*SeedResult, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if len(products) > 0 {
		log.WithField("products", len(products)).Info("Catalog not empty, skipping seed")
		return &SeedResult{}, nil
	}
	return s.Seed(ctx)
}
