package services_test

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/services"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Summary(t *testing.T) {
	ctx := context.Background()
	productRepo := repositories.NewMemoryProductRepository()
	orderRepo := repositories.NewMemoryOrderRepository()

	for _, p := range []models.Product{
		{Name: "Headphones", Price: 100, Stock: 2, Category: "Electronics", SKU: "A"},
		{Name: "Watch", Price: 50.5, Stock: 4, Category: "Electronics", SKU: "B"},
		{Name: "Mat", Price: 10, Stock: 1, Category: "", SKU: "C"},
		{Name: "Shoes", Price: 20, Stock: 3, Category: "Apparel", SKU: "D"},
	} {
		p := p
		require.NoError(t, productRepo.Create(ctx, &p))
	}

	base := time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 9; i++ {
		o := models.Order{
			CustomerName: "C",
			Email:        "c@example.com",
			TotalAmount:  float64(10 * (i + 1)),
			Status:       models.OrderStatusPending,
			CreatedAt:    base.AddDate(0, 0, -i),
		}
		require.NoError(t, orderRepo.Create(ctx, &o))
	}
	extra := models.Order{CustomerName: "C", Email: "c@example.com", TotalAmount: 5, CreatedAt: base.Add(-14 * time.Hour)}
	require.NoError(t, orderRepo.Create(ctx, &extra))

	summary, err := services.NewDashboardService(productRepo, orderRepo).Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalProducts)
	assert.Equal(t, 10, summary.TotalStock)
	assert.Equal(t, 472.0, summary.InventoryValue)
	assert.Equal(t, 455.0, summary.TotalRevenue)
	assert.Equal(t, 10, summary.OrderCount)

	assert.Equal(t, []models.ChartPoint{
		{Name: "Apparel", Total: 3},
		{Name: "Electronics", Total: 6},
		{Name: "Uncategorized", Total: 1},
	}, summary.StockByCategory)

	require.Len(t, summary.RevenueByDay, 7)
	assert.Equal(t, "Mar 14", summary.RevenueByDay[0].Name)
	assert.Equal(t, "Mar 20", summary.RevenueByDay[6].Name)
	assert.Equal(t, 15.0, summary.RevenueByDay[6].Total)
	assert.Equal(t, 70.0, summary.RevenueByDay[0].Total)

	require.Len(t, summary.RecentOrders, 5)
	assert.Equal(t, 10.0, summary.RecentOrders[0].TotalAmount)
	for i := 1; i < len(summary.RecentOrders); i++ {
		assert.False(t, summary.RecentOrders[i].CreatedAt.After(summary.RecentOrders[i-1].CreatedAt))
	}
}

func TestDashboardService_Summary_Empty(t *testing.T) {
	summary, err := services.NewDashboardService(
		repositories.NewMemoryProductRepository(),
		repositories.NewMemoryOrderRepository(),
	).Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalProducts)
	assert.Empty(t, summary.StockByCategory)
	assert.Empty(t, summary.RevenueByDay)
	assert.Empty(t, summary.RecentOrders)
}

func TestDashboardService_Summary_StoreFailure(t *testing.T) {
	productRepo := new(MockProductRepository)
	productRepo.On("GetAll", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	_, err := services.NewDashboardService(productRepo, new(MockOrderRepository)).Summary(context.Background())
	var unavailable *services.StoreUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	productRepo.AssertExpectations(t)
}
