package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/labstack/echo/v4"
	"github.com/lunchdesk/core/internal/adapters/repository"
	"github.com/lunchdesk/core/internal/application/services"
	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/images"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
)

func TestHTTPErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{entities.ErrLunchNotFound, http.StatusNotFound},
		{entities.ErrOrderNotFound, http.StatusNotFound},
		{entities.ErrExpenseNotFound, http.StatusNotFound},
		{csvstore.ErrSnapshotNotFound, http.StatusNotFound},
		{services.ErrUnknownCollection, http.StatusNotFound},
		{images.ErrInvalidImage, http.StatusBadRequest},
		{csvstore.ErrInvalidSnapshotName, http.StatusBadRequest},
		{entities.ErrInvalidInput, http.StatusBadRequest},
		{repository.ErrMalformedRow, http.StatusUnprocessableEntity},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("failed to do something: %w", tt.err)
			err := httpError(logger.NewNop(), "Test", wrapped)

			var he *echo.HTTPError
			assert.True(t, errors.As(err, &he))
			assert.Equal(t, tt.code, he.Code)
		})
	}
}

func TestHTTPErrorKeepsCauseInternal(t *testing.T) {
	cause := errors.New("open data/lunches/lunches.csv: permission denied")
	err := httpError(logger.NewNop(), "List lunches", cause)

	he := err.(*echo.HTTPError)
	assert.Equal(t, "Internal server error", he.Message)
	assert.True(t, errors.Is(he.Internal, cause))
}
