package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lunchdesk/core/internal/adapters/repository"
	"github.com/lunchdesk/core/internal/application/services"
	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/images"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
)

// PingHandler answers the liveness ping used by the frontend
type PingHandler struct {
	now func() time.Time
}

// NewPingHandler creates a new ping handler
func NewPingHandler() *PingHandler {
	return &PingHandler{now: time.Now}
}

// Ping godoc
// @Summary Liveness ping
// @Tags system
// @Produce json
// @Success 200 {object} PingResponse
// @Router /test [get]
func (h *PingHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, PingResponse{
		Message:   "Backend funcionando correctamente",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

// httpError maps service errors onto HTTP status codes. Anything that is not
// a known sentinel is reported as a 500 with the cause kept internal.
func httpError(log *logger.Logger, action string, err error) error {
	switch {
	case errors.Is(err, entities.ErrLunchNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Lunch not found")
	case errors.Is(err, entities.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	case errors.Is(err, entities.ErrExpenseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Expense not found")
	case errors.Is(err, csvstore.ErrSnapshotNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Snapshot not found")
	case errors.Is(err, services.ErrUnknownCollection):
		return echo.NewHTTPError(http.StatusNotFound, "Unknown collection")
	case errors.Is(err, images.ErrInvalidImage):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid image format")
	case errors.Is(err, csvstore.ErrInvalidSnapshotName):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid snapshot name")
	case errors.Is(err, entities.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrMalformedRow):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	log.Errorw(action+" failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

// bindAndValidate decodes the JSON body into req and runs its validate tags
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Request/Response types
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type VerifySnapshotResponse struct {
	OK   bool   `json:"ok"`
	Name string `json:"name"`
	Rows int    `json:"rows"`
}
