package services

import (
	"context"
	"sort"
	"time"

	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	uncategorized      = "Uncategorized"
	revenueDays        = 7
	recentOrdersLimit  = 5
	revenueLabelLayout = "Jan 02"
)

// DashboardService aggregates catalog and sales figures.
type DashboardService struct {
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository) *DashboardService {
	return &DashboardService{productRepo: productRepo, orderRepo: orderRepo}
}

// Summary computes the dashboard figures from the current store contents.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}

	summary := &models.DashboardSummary{
		TotalProducts: len(products),
		OrderCount:    len(orders),
	}

	inventory := decimal.Zero
	stockByCategory := make(map[string]int)
	for _, p := range products {
		summary.TotalStock += p.Stock
		inventory = inventory.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Stock))))
		category := p.Category
		if category == "" {
			category = uncategorized
		}
		stockByCategory[category] += p.Stock
	}
	summary.InventoryValue = inventory.Round(2).InexactFloat64()
	summary.StockByCategory = sortedPoints(stockByCategory)

	revenue := decimal.Zero
	byDay := make(map[time.Time]decimal.Decimal)
	for _, o := range orders {
		amount := decimal.NewFromFloat(o.TotalAmount)
		revenue = revenue.Add(amount)
		day := o.CreatedAt.UTC().Truncate(24 * time.Hour)
		byDay[day] = byDay[day].Add(amount)
	}
	summary.TotalRevenue = revenue.Round(2).InexactFloat64()
	summary.RevenueByDay = revenueSeries(byDay)

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if len(orders) > recentOrdersLimit {
		orders = orders[:recentOrdersLimit]
	}
	summary.RecentOrders = orders

	return summary, nil
}

func sortedPoints(values map[string]int) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(values))
	for name, total := range values {
		points = append(points, models.ChartPoint{Name: name, Total: float64(total)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
	return points
}

// revenueSeries keeps the most recent days with sales, oldest first.
func revenueSeries(byDay map[time.Time]decimal.Decimal) []models.ChartPoint {
	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	if len(days) > revenueDays {
		days = days[len(days)-revenueDays:]
	}

	points := make([]models.ChartPoint, 0, len(days))
	for _, day := range days {
		points = append(points, models.ChartPoint{
			Name:  day.Format(revenueLabelLayout),
			Total: byDay[day].Round(2).InexactFloat64(),
		})
	}
	return points
}
