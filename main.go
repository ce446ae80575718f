package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/handlers"
	"backoffice/internal/metrics"
	"backoffice/internal/middleware"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/services"
	"backoffice/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const startupTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:   "backoffice",
		Usage:  "e-commerce admin back office",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP server",
				Action: serve,
			},
			{
				Name:   "seed",
				Usage:  "replace products and orders with the sample data set",
				Action: seed,
			},
			{
				Name:   "migrate",
				Usage:  "create tables or indexes for the configured store",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("backoffice failed")
	}
}

// NewApp builds the Fiber application with every route mounted.
// publisher may be nil.
func NewApp(cfg *config.Config, stores *repositories.Stores, publisher services.EventPublisher) (*fiber.App, *services.AuthService) {
	productService := services.NewProductService(stores.Products)
	orderService := services.NewOrderService(stores.Orders, stores.Products, publisher)
	dashboardService := services.NewDashboardService(stores.Products, stores.Orders)
	seeder := services.NewSeeder(stores.Products, stores.Orders)
	authService := services.NewAuthService(stores.Users, cfg.JWTSecret,
		services.WithTokenTTL(cfg.JWTTTL),
		services.WithAdminSecret(cfg.AdminSecret),
		services.WithDemoLogin(cfg.DemoLoginEnabled),
	)

	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, seeder)

	app := fiber.New(fiber.Config{AppName: "backoffice"})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  cfg.Store.Driver,
			"events": publisher != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	apiV1 := app.Group("/api/v1")

	requireAuth := middleware.AuthRequired(authService)
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, requireAuth)
	orderHandler.RegisterRoutes(apiV1, requireAuth)
	dashboardHandler.RegisterRoutes(apiV1, requireAuth)

	return app, authService
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// openStores loads configuration and connects to the configured store.
func openStores(ctx context.Context) (*config.Config, *repositories.Stores, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	configureLogging(cfg)

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	stores, err := repositories.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	if err := stores.Migrate(ctx); err != nil {
		_ = stores.Close(context.Background())
		return nil, nil, err
	}
	log.WithField("driver", cfg.Store.Driver).Info("Store ready")
	return cfg, stores, nil
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, stores, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	if cfg.SeedOnStart {
		if _, err := services.NewSeeder(stores.Products, stores.Orders).SeedIfEmpty(ctx); err != nil {
			return errors.Wrap(err, "failed to seed store")
		}
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient

		err = mqClient.ConsumeOrderEvents(func(event models.OrderPlacedEvent) error {
			log.WithFields(log.Fields{
				"order_id": event.OrderID,
				"email":    event.Email,
				"total":    event.TotalAmount,
			}).Info("Received order placed event")
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		log.Info("RABBITMQ_URL not set, order events are not published")
	}

	app, _ := NewApp(cfg, stores, publisher)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.AppPort).Info("Starting server")
		errCh <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	log.Info("Server gracefully stopped")
	return nil
}

func seed(c *cli.Context) error {
	_, stores, err := openStores(c.Context)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	result, err := services.NewSeeder(stores.Products, stores.Orders).Seed(c.Context)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"products": result.Products, "orders": result.Orders}).Info("Seed complete")
	return nil
}

func migrate(c *cli.Context) error {
	_, stores, err := openStores(c.Context)
	if err != nil {
		return err
	}
	return stores.Close(context.Background())
}
