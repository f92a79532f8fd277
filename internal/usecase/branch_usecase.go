// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"github.com/passgage/passgage-go/internal/domain/entity"

	"github.com/google/uuid"
)

// NearbyBranchesInput defines the parameters of a proximity search.
// RadiusM of zero falls back to the configured default search radius.
type NearbyBranchesInput struct {
	CompanyID uuid.UUID
	Latitude  float64
	Longitude float64
	RadiusM   float64
}

// CheckInInput defines the data required for a location-based entry or exit.
type CheckInInput struct {
	UserID    uuid.UUID
	BranchID  uuid.UUID
	Latitude  float64
	Longitude float64
}

// BranchUsecase defines the interface for branch proximity search, check-in
// and entrance-code provisioning.
type BranchUsecase interface {
	// GetNearbyBranches returns active branches within the radius, closest first.
	// An empty result is a successful outcome, not an error.
	GetNearbyBranches(ctx context.Context, input *NearbyBranchesInput) ([]*entity.Branch, error)

	// CheckInEntry records an entry at a branch after geofence validation.
	CheckInEntry(ctx context.Context, input *CheckInInput) (*entity.Entrance, error)

	// CheckInExit records an exit at a branch after geofence validation.
	CheckInExit(ctx context.Context, input *CheckInInput) (*entity.Entrance, error)

	// GetEntranceQR renders the branch's entrance code as a PNG QR image.
	GetEntranceQR(ctx context.Context, branchID uuid.UUID) ([]byte, error)
}
