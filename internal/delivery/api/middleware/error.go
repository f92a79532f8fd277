package middleware

import (
	"log/slog"

	"github.com/passgage/passgage-go/internal/delivery/api/response"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware is the centralized error handler for the HTTP pipeline.
// Every error a handler returns ends up here.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates the centralized error handler.
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logger}
}

// HandleHTTPError is installed as Echo's HTTPErrorHandler. Domain AppErrors
// keep their status and machine code; echo.HTTPErrors keep their status;
// everything else is logged and rendered as an opaque 500.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		_ = response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), nil)

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := "An error occurred"
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, nil)

		return
	}

	m.logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	// Internal details stay out of the response body.
	_ = response.InternalServerError(c, "INTERNAL_ERROR", "Internal server error, please try again later")
}
