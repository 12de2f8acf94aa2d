package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// isoLayout matches the timestamps browsers produce with toISOString
const isoLayout = "2006-01-02T15:04:05.000Z"

// OrderService handles order operations
type OrderService struct {
	orderRepo ports.OrderRepository
	logger    *logger.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo ports.OrderRepository, logger *logger.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// ListOrders returns every order in file order
func (s *OrderService) ListOrders(ctx context.Context) ([]*entities.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entities.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// CreateOrder places a new order. A supplied total is kept as is, otherwise
// it is computed from the items.
func (s *OrderService) CreateOrder(ctx context.Context, req ports.CreateOrderRequest) (*entities.Order, error) {
	state := req.OrderState
	if state == "" {
		state = entities.OrderStatePending
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: order state %q", entities.ErrInvalidInput, state)
	}

	date := req.Date
	if date == "" {
		date = s.timestamp()
	}

	order := &entities.Order{
		ID:         req.ID,
		TowerNum:   req.TowerNum,
		Apto:       req.Apto,
		Customer:   req.Customer,
		PhoneNum:   req.PhoneNum,
		PayMethod:  req.PayMethod,
		Lunch:      toOrderItems(req.Lunch),
		Details:    req.Details,
		Time:       req.Time,
		Date:       date,
		OrderState: state,
	}
	total, err := settleTotal(req.Total, order.Lunch)
	if err != nil {
		return nil, err
	}
	order.Total = total

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Infow("Order created successfully",
		"order_id", order.ID,
		"items", order.ItemCount(),
		"total", order.Total,
	)

	return order, nil
}

// UpdateOrder merges the supplied fields into the stored order. The total
// is taken from the request when present and recomputed from the merged
// items otherwise.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, req ports.UpdateOrderRequest) (*entities.Order, error) {
	existing, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if req.TowerNum != nil {
		existing.TowerNum = *req.TowerNum
	}
	if req.Apto != nil {
		existing.Apto = *req.Apto
	}
	if req.Customer != nil {
		existing.Customer = *req.Customer
	}
	if req.PhoneNum != nil {
		existing.PhoneNum = *req.PhoneNum
	}
	if req.PayMethod != nil {
		existing.PayMethod = *req.PayMethod
	}
	if req.Lunch != nil {
		existing.Lunch = toOrderItems(*req.Lunch)
	}
	if req.Details != nil {
		existing.Details = *req.Details
	}
	if req.Time != nil {
		existing.Time = *req.Time
	}
	if req.Date != nil {
		existing.Date = *req.Date
	}
	if existing.Date == "" {
		existing.Date = s.timestamp()
	}
	if req.OrderState != nil {
		if !req.OrderState.IsValid() {
			return nil, fmt.Errorf("%w: order state %q", entities.ErrInvalidInput, *req.OrderState)
		}
		existing.OrderState = *req.OrderState
	}
	if existing.OrderState == "" {
		existing.OrderState = entities.OrderStatePending
	}
	existing.Total, err = settleTotal(req.Total, existing.Lunch)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Infow("Order updated successfully",
		"order_id", existing.ID,
		"state", existing.OrderState,
		"total", existing.Total,
	)

	return existing, nil
}

// DeleteOrder removes an order
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Infow("Order deleted successfully", "order_id", id)

	return nil
}

func (s *OrderService) timestamp() string {
	return s.now().UTC().Format(isoLayout)
}

// toOrderItems copies request lines into order items; a missing quantity
// counts as one
func toOrderItems(lines []ports.OrderItemRequest) []entities.OrderItem {
	items := make([]entities.OrderItem, 0, len(lines))
	for _, l := range lines {
		qty := l.Quantity
		if qty == 0 {
			qty = 1
		}
		tags := l.Tags
		if tags == nil {
			tags = []string{}
		}
		items = append(items, entities.OrderItem{
			ID:       l.ID,
			Title:    l.Title,
			Imagen:   l.Imagen,
			Price:    l.Price,
			Tags:     tags,
			Quantity: qty,
		})
	}
	return items
}

func settleTotal(supplied *float64, items []entities.OrderItem) (float64, error) {
	if supplied != nil {
		return *supplied, nil
	}
	total := entities.ComputeTotal(items)
	if !entities.IsFinite(total) {
		return 0, fmt.Errorf("%w: order total out of range", entities.ErrInvalidInput)
	}
	return total, nil
}
