package models

// ChartPoint is one labelled value in a dashboard series.
type ChartPoint struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// DashboardSummary aggregates catalog and sales figures for the admin overview.
type DashboardSummary struct {
	TotalProducts   int          `json:"totalProducts"`
	TotalStock      int          `json:"totalStock"`
	InventoryValue  float64      `json:"inventoryValue"`
	TotalRevenue    float64      `json:"totalRevenue"`
	OrderCount      int          `json:"orderCount"`
	StockByCategory []ChartPoint `json:"stockByCategory"`
	RevenueByDay    []ChartPoint `json:"revenueByDay"`
	RecentOrders    []Order      `json:"recentOrders"`
}
