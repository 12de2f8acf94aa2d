package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// OrderHandler handles order requests
type OrderHandler struct {
	orderService ports.OrderService
	logger       *logger.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService ports.OrderService, logger *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// ListOrders godoc
// @Summary List orders
// @Tags orders
// @Produce json
// @Success 200 {array} entities.Order
// @Failure 500 {object} ports.ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrders(c.Request().Context())
	if err != nil {
		return httpError(h.logger, "List orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} entities.Order
// @Failure 404 {object} ports.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(h.logger, "Get order", err)
	}
	return c.JSON(http.StatusOK, order)
}

// CreateOrder godoc
// @Summary Place an order
// @Description A missing total is computed as the sum of price times quantity
// @Tags orders
// @Accept json
// @Produce json
// @Param request body ports.CreateOrderRequest true "Order data"
// @Success 201 {object} ports.OrderCreatedResponse
// @Failure 400 {object} ports.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req ports.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return httpError(h.logger, "Create order", err)
	}

	return c.JSON(http.StatusCreated, ports.OrderCreatedResponse{OK: true, Order: order})
}

// UpdateOrder godoc
// @Summary Update an order
// @Description The total is recomputed from the merged items unless supplied
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body ports.UpdateOrderRequest true "Fields to change"
// @Success 200 {object} ports.UpdatedResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	var req ports.UpdateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateOrder(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(h.logger, "Update order", err)
	}

	return c.JSON(http.StatusOK, ports.UpdatedResponse{OK: true, Updated: order})
}

// DeleteOrder godoc
// @Summary Delete an order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} ports.OKResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	if err := h.orderService.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(h.logger, "Delete order", err)
	}
	return c.JSON(http.StatusOK, ports.OKResponse{OK: true})
}
