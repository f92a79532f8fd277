package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/passgage/passgage-go/internal/delivery/api/middleware"
	"github.com/passgage/passgage-go/internal/delivery/api/response"
	"github.com/passgage/passgage-go/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AccessHandlerParams holds dependencies for AccessHandler, injected by Fx.
type AccessHandlerParams struct {
	fx.In

	AccessUC usecase.AccessUsecase
	Logger   *slog.Logger
}

// AccessHandler holds dependencies for QR and NFC validation handlers
type AccessHandler struct {
	accessUC usecase.AccessUsecase
	logger   *slog.Logger
}

// NewAccessHandler is the constructor for AccessHandler
func NewAccessHandler(params AccessHandlerParams) *AccessHandler {
	return &AccessHandler{
		accessUC: params.AccessUC,
		logger:   params.Logger,
	}
}

// ValidateCodeRequest represents the request body for validating a scanned
// QR payload or NFC tag
type ValidateCodeRequest struct {
	Code      string   `json:"code" validate:"required"`
	Device    string   `json:"device"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// ScanResponse represents the access event created by a successful validation
type ScanResponse struct {
	Entrance EntranceDTO `json:"entrance"`
	Branch   BranchDTO   `json:"branch"`
}

// ValidateQR handles QR code validation and records the access event
func (h *AccessHandler) ValidateQR(c echo.Context) error {
	return h.validate(c, h.accessUC.ValidateQR)
}

// ValidateNFC handles NFC tag validation and records the access event
func (h *AccessHandler) ValidateNFC(c echo.Context) error {
	return h.validate(c, h.accessUC.ValidateNFC)
}

// GetHistory handles retrieving the authenticated user's recent access events
func (h *AccessHandler) GetHistory(c echo.Context) error {
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

	records, err := h.accessUC.GetHistory(c.Request().Context(), userID, limit)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	dtos := make([]EntranceDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, toEntranceDTO(record))
	}

	return response.Success(c, http.StatusOK, dtos)
}

type validateFunc func(ctx context.Context, input *usecase.ValidateCodeInput) (*usecase.ScanOutput, error)

func (h *AccessHandler) validate(c echo.Context, fn validateFunc) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req ValidateCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid scan input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	output, err := fn(c.Request().Context(), &usecase.ValidateCodeInput{
		UserID:    userID,
		Code:      req.Code,
		Device:    req.Device,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, ScanResponse{
		Entrance: toEntranceDTO(output.Entrance),
		Branch:   toBranchDTO(output.Branch, false),
	})
}
