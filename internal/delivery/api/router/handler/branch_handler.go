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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// BranchHandlerParams holds dependencies for BranchHandler, injected by Fx.
type BranchHandlerParams struct {
	fx.In

	BranchUC usecase.BranchUsecase
	Logger   *slog.Logger
}

// BranchHandler holds dependencies for branch-related handlers
type BranchHandler struct {
	branchUC usecase.BranchUsecase
	logger   *slog.Logger
}

// NewBranchHandler is the constructor for BranchHandler
func NewBranchHandler(params BranchHandlerParams) *BranchHandler {
	return &BranchHandler{
		branchUC: params.BranchUC,
		logger:   params.Logger,
	}
}

// CheckInRequest represents the request body for a location-based entry or exit
type CheckInRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// GetNearbyBranches handles the proximity search for the caller's company
func (h *BranchHandler) GetNearbyBranches(c echo.Context) error {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid company ID in token")
	}

	lat, err := strconv.ParseFloat(c.QueryParam("latitude"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return response.BadRequest(c, "VALIDATION_ERROR", "latitude must be a number between -90 and 90")
	}

	lng, err := strconv.ParseFloat(c.QueryParam("longitude"), 64)
	if err != nil || lng < -180 || lng > 180 {
		return response.BadRequest(c, "VALIDATION_ERROR", "longitude must be a number between -180 and 180")
	}

	var radius float64
	if raw := c.QueryParam("radius_m"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius < 0 {
			return response.BadRequest(c, "VALIDATION_ERROR", "radius_m must be a non-negative number")
		}
	}

	branches, err := h.branchUC.GetNearbyBranches(c.Request().Context(), &usecase.NearbyBranchesInput{
		CompanyID: companyID,
		Latitude:  lat,
		Longitude: lng,
		RadiusM:   radius,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	dtos := make([]BranchDTO, 0, len(branches))
	for _, branch := range branches {
		dtos = append(dtos, toBranchDTO(branch, true))
	}

	return response.Success(c, http.StatusOK, dtos)
}

// CheckInEntry handles a geofenced entry at a branch
func (h *BranchHandler) CheckInEntry(c echo.Context) error {
	return h.checkIn(c, h.branchUC.CheckInEntry)
}

// CheckInExit handles a geofenced exit from a branch
func (h *BranchHandler) CheckInExit(c echo.Context) error {
	return h.checkIn(c, h.branchUC.CheckInExit)
}

// GetEntranceQR handles rendering a branch's entrance code as a PNG image
func (h *BranchHandler) GetEntranceQR(c echo.Context) error {
	branchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", "Invalid branch ID")
	}

	png, err := h.branchUC.GetEntranceQR(c.Request().Context(), branchID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

type checkInFunc func(ctx context.Context, input *usecase.CheckInInput) (*entity.Entrance, error)

func (h *BranchHandler) checkIn(c echo.Context, fn checkInFunc) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	branchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", "Invalid branch ID")
	}

	var req CheckInRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid check-in input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	entrance, err := fn(c.Request().Context(), &usecase.CheckInInput{
		UserID:    userID,
		BranchID:  branchID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, toEntranceDTO(entrance))
}
