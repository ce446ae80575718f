package services

import (
	"context"
	"strings"

	"backoffice/internal/metrics"
	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventPublisher delivers order events to downstream consumers.
type EventPublisher interface {
	PublishOrderPlaced(event models.OrderPlacedEvent) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return orders, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrOrderNotFound, "order %s", id)
		}
		return nil, storeUnavailable(err)
	}
	return order, nil
}

// PlaceOrder validates req, reserves stock for every line and persists a pending order
// priced from the catalog.
//
// Every line is checked against current stock before any stock is touched. Stock is then
// decremented line by line in request order with an atomic conditional decrement; if one
// of those decrements loses a race, or the order cannot be stored, the decrements already
// applied are returned before the error is reported.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req); err != nil {
		metrics.OrderFailures.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, err
	}

	items, total, demand, err := s.priceLines(ctx, req.Lines)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	applied := make([]models.LineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		if err := s.productRepo.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.releaseStock(ctx, applied)
			err = s.classifyDecrementError(ctx, line.ProductID, demand[line.ProductID], err)
			s.recordFailure(err)
			return nil, err
		}
		applied = append(applied, line)
	}

	order := &models.Order{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		TotalAmount:  total.InexactFloat64(),
		Status:       models.OrderStatusPending,
		OrderItems:   items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.releaseStock(ctx, applied)
		err = storeUnavailable(errors.Wrap(err, "failed to create order"))
		s.recordFailure(err)
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderRevenue.Add(order.TotalAmount)
	log.WithFields(log.Fields{
		"order_id": order.ID,
		"lines":    len(order.OrderItems),
		"total":    order.TotalAmount,
	}).Info("Order placed")

	s.publishPlaced(order)
	return order, nil
}

// priceLines looks up every product without mutating anything, snapshots price and
// name, and checks the cumulative demand per product against its stock. The returned
// demand map holds the total quantity requested per product.
func (s *OrderService) priceLines(ctx context.Context, lines []models.LineRequest) ([]models.OrderLine, decimal.Decimal, map[string]int, error) {
	total := decimal.Zero
	items := make([]models.OrderLine, 0, len(lines))
	products := make(map[string]*models.Product, len(lines))
	demand := make(map[string]int, len(lines))

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			p, err := s.productRepo.GetByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return nil, total, nil, &ProductNotFoundError{ProductID: line.ProductID}
				}
				return nil, total, nil, storeUnavailable(err)
			}
			product = p
			products[line.ProductID] = p
		}

		demand[line.ProductID] += line.Quantity
		if product.Stock < demand[line.ProductID] {
			return nil, total, nil, &InsufficientStockError{
				ProductID: line.ProductID,
				Requested: demand[line.ProductID],
				Available: product.Stock,
			}
		}

		total = total.Add(decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, models.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     product.Price,
			Name:      product.Name,
		})
	}
	return items, total, demand, nil
}

// classifyDecrementError reports requested as the product's total demand in the
// order, matching what the pre-check reports. Call it after releaseStock so that
// available reflects stock with this order's decrements returned.
func (s *OrderService) classifyDecrementError(ctx context.Context, productID string, requested int, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return &ProductNotFoundError{ProductID: productID}
	case errors.Is(err, repositories.ErrInsufficientStock):
		available := 0
		if p, lookupErr := s.productRepo.GetByID(ctx, productID); lookupErr == nil {
			available = p.Stock
		}
		return &InsufficientStockError{ProductID: productID, Requested: requested, Available: available}
	}
	return storeUnavailable(err)
}

// releaseStock reverses applied decrements, last first. It runs even if ctx was cancelled.
func (s *OrderService) releaseStock(ctx context.Context, applied []models.LineRequest) {
	ctx = context.WithoutCancel(ctx)
	for i := len(applied) - 1; i >= 0; i-- {
		line := applied[i]
		if err := s.productRepo.IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"product_id": line.ProductID,
				"quantity":   line.Quantity,
			}).Error("Failed to release reserved stock")
			continue
		}
		log.WithFields(log.Fields{
			"product_id": line.ProductID,
			"quantity":   line.Quantity,
		}).Warn("Released reserved stock")
	}
}

func (s *OrderService) recordFailure(err error) {
	var (
		notFound *ProductNotFoundError
		short    *InsufficientStockError
	)
	reason := metrics.ReasonStoreUnavailable
	switch {
	case errors.As(err, &notFound):
		reason = metrics.ReasonProductNotFound
	case errors.As(err, &short):
		reason = metrics.ReasonInsufficientStock
	}
	metrics.OrderFailures.WithLabelValues(reason).Inc()
	log.WithError(err).WithField("reason", reason).Warn("Order rejected")
}

func (s *OrderService) publishPlaced(order *models.Order) {
	if s.publisher == nil {
		log.Debug("No event publisher configured. Skipping order placed event.")
		return
	}
	event := models.OrderPlacedEvent{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Email:        order.Email,
		TotalAmount:  order.TotalAmount,
		Items:        order.OrderItems,
		PlacedAt:     order.CreatedAt,
	}
	if err := s.publisher.PublishOrderPlaced(event); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("Failed to publish order placed event")
		return
	}
	log.WithField("order_id", order.ID).Debug("Published order placed event")
}

// UpdateOrderStatus moves an order to status. Any of the known statuses is accepted.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, errors.Wrapf(ErrInvalidStatus, "%q", status)
	}
	order, err := s.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrOrderNotFound, "order %s", id)
		}
		return nil, storeUnavailable(err)
	}
	log.WithFields(log.Fields{"order_id": id, "status": status}).Info("Order status updated")
	return order, nil
}
