// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"github.com/passgage/passgage-go/internal/domain/entity"

	"github.com/google/uuid"
)

// ValidateCodeInput defines the data required to validate a scanned QR code
// or NFC tag. Device and coordinates are optional context from the client.
type ValidateCodeInput struct {
	UserID    uuid.UUID
	Code      string // Raw QR payload or NFC tag ID, depending on the operation.
	Device    string // Optional device descriptor, e.g. "iPhone 15 Pro".
	Latitude  *float64
	Longitude *float64
}

// ScanOutput returns the access event created by a successful validation,
// together with the branch it happened at.
type ScanOutput struct {
	Entrance *entity.Entrance
	Branch   *entity.Branch
}

// AccessUsecase defines the interface for QR and NFC access validation.
type AccessUsecase interface {
	ValidateQR(ctx context.Context, input *ValidateCodeInput) (*ScanOutput, error)
	ValidateNFC(ctx context.Context, input *ValidateCodeInput) (*ScanOutput, error)
	// GetHistory retrieves the user's most recent access events, newest first.
	// A non-positive limit falls back to the service default.
	GetHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Entrance, error)
}
