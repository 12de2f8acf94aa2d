package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// LunchHandler handles menu requests
type LunchHandler struct {
	lunchService ports.LunchService
	logger       *logger.Logger
}

// NewLunchHandler creates a new lunch handler
func NewLunchHandler(lunchService ports.LunchService, logger *logger.Logger) *LunchHandler {
	return &LunchHandler{
		lunchService: lunchService,
		logger:       logger,
	}
}

// ListLunches godoc
// @Summary List lunches
// @Description Return the whole menu in file order
// @Tags lunches
// @Produce json
// @Success 200 {array} entities.Lunch
// @Failure 500 {object} ports.ErrorResponse
// @Router /lunches [get]
func (h *LunchHandler) ListLunches(c echo.Context) error {
	lunches, err := h.lunchService.ListLunches(c.Request().Context())
	if err != nil {
		return httpError(h.logger, "List lunches", err)
	}
	return c.JSON(http.StatusOK, lunches)
}

// GetLunch godoc
// @Summary Get lunch by ID
// @Tags lunches
// @Produce json
// @Param id path string true "Lunch ID"
// @Success 200 {object} entities.Lunch
// @Failure 404 {object} ports.ErrorResponse
// @Router /lunches/{id} [get]
func (h *LunchHandler) GetLunch(c echo.Context) error {
	lunch, err := h.lunchService.GetLunch(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(h.logger, "Get lunch", err)
	}
	return c.JSON(http.StatusOK, lunch)
}

// CreateLunch godoc
// @Summary Create a lunch
// @Description imagen may be a base64 data URI; it is stored under /uploads/lunches
// @Tags lunches
// @Accept json
// @Produce json
// @Param request body ports.CreateLunchRequest true "Lunch data"
// @Success 201 {object} ports.LunchCreatedResponse
// @Failure 400 {object} ports.ErrorResponse
// @Router /lunches [post]
func (h *LunchHandler) CreateLunch(c echo.Context) error {
	var req ports.CreateLunchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	lunch, err := h.lunchService.CreateLunch(c.Request().Context(), req)
	if err != nil {
		return httpError(h.logger, "Create lunch", err)
	}

	return c.JSON(http.StatusCreated, ports.LunchCreatedResponse{OK: true, Lunch: lunch})
}

// UpdateLunch godoc
// @Summary Update a lunch
// @Tags lunches
// @Accept json
// @Produce json
// @Param id path string true "Lunch ID"
// @Param request body ports.UpdateLunchRequest true "Fields to change"
// @Success 200 {object} ports.UpdatedResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /lunches/{id} [put]
func (h *LunchHandler) UpdateLunch(c echo.Context) error {
	var req ports.UpdateLunchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	lunch, err := h.lunchService.UpdateLunch(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return httpError(h.logger, "Update lunch", err)
	}

	return c.JSON(http.StatusOK, ports.UpdatedResponse{OK: true, Updated: lunch})
}

// DeleteLunch godoc
// @Summary Delete a lunch
// @Tags lunches
// @Produce json
// @Param id path string true "Lunch ID"
// @Success 200 {object} ports.OKResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /lunches/{id} [delete]
func (h *LunchHandler) DeleteLunch(c echo.Context) error {
	if err := h.lunchService.DeleteLunch(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(h.logger, "Delete lunch", err)
	}
	return c.JSON(http.StatusOK, ports.OKResponse{OK: true})
}
