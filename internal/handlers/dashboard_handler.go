package handlers

import (
	"backoffice/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the admin overview and the sample data loader.
type DashboardHandler struct {
	dashboard *services.DashboardService
	seeder    *services.Seeder
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard *services.DashboardService, seeder *services.Seeder) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, seeder: seeder}
}

// RegisterRoutes registers the dashboard routes.
func (h *DashboardHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("/dashboard", requireAuth, h.HandleSummary)
	router.Post("/seed", requireAuth, h.HandleSeed)
}

func (h *DashboardHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.dashboard.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// HandleSeed replaces products and orders with the sample data set.
func (h *DashboardHandler) HandleSeed(c *fiber.Ctx) error {
	result, err := h.seeder.Seed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":       "Database seeded successfully!",
		"productsCount": result.Products,
		"ordersCount":   result.Orders,
	})
}
