package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/passgage/passgage-go/internal/delivery/api/middleware"
	"github.com/passgage/passgage-go/internal/delivery/api/response"
	"github.com/passgage/passgage-go/internal/domain/entity"
	"github.com/passgage/passgage-go/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// WorkLogHandlerParams holds dependencies for WorkLogHandler, injected by Fx.
type WorkLogHandlerParams struct {
	fx.In

	WorkLogUC usecase.WorkLogUsecase
	Logger    *slog.Logger
}

// WorkLogHandler holds dependencies for remote-work logging handlers
type WorkLogHandler struct {
	workLogUC usecase.WorkLogUsecase
	logger    *slog.Logger
}

// NewWorkLogHandler is the constructor for WorkLogHandler
func NewWorkLogHandler(params WorkLogHandlerParams) *WorkLogHandler {
	return &WorkLogHandler{
		workLogUC: params.WorkLogUC,
		logger:    params.Logger,
	}
}

// WorkLogRequest represents the request body for starting or stopping
// a remote-work session
type WorkLogRequest struct {
	Description string `json:"description" validate:"max=500"`
}

// LogEntry handles starting a remote-work session
func (h *WorkLogHandler) LogEntry(c echo.Context) error {
	return h.log(c, h.workLogUC.LogEntry)
}

// LogExit handles stopping a remote-work session
func (h *WorkLogHandler) LogExit(c echo.Context) error {
	return h.log(c, h.workLogUC.LogExit)
}

// GetHistory handles retrieving the caller's recent remote-work events
func (h *WorkLogHandler) GetHistory(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var limit int
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return response.BadRequest(c, "VALIDATION_ERROR", "limit must be a non-negative integer")
		}
		limit = parsed
	}

	records, err := h.workLogUC.GetHistory(c.Request().Context(), userID, limit)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	dtos := make([]WorkLogDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, toWorkLogDTO(record))
	}

	return response.Success(c, http.StatusOK, dtos)
}

type workLogFunc func(ctx context.Context, input *usecase.WorkLogInput) (*entity.WorkLogRecord, error)

func (h *WorkLogHandler) log(c echo.Context, fn workLogFunc) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req WorkLogRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid work log input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	record, err := fn(c.Request().Context(), &usecase.WorkLogInput{
		UserID:      userID,
		Description: req.Description,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, toWorkLogDTO(record))
}
