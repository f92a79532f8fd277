package repository

import (
	"context"
	"errors"

	"github.com/passgage/passgage-go/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrBranchNotFound is a domain-specific error returned when a branch is not found.
var ErrBranchNotFound = errors.New("branch not found")

// BranchRepository defines the standard operations for branch persistence.
type BranchRepository interface {
	// FindByID retrieves a single branch by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Branch, error)

	// FindByQRCode retrieves the active branch whose entrance QR encodes the given code.
	FindByQRCode(ctx context.Context, code string) (*entity.Branch, error)

	// FindByNFCTag retrieves the active branch whose entrance NFC tag carries the given ID.
	FindByNFCTag(ctx context.Context, tagID string) (*entity.Branch, error)

	// FindActiveByCompany retrieves all active branches of a company.
	// Proximity filtering is done by the use case, not the database.
	FindActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Branch, error)

	// Create persists a new branch entity to the storage.
	Create(ctx context.Context, branch *entity.Branch) error

	// Update modifies an existing branch entity in the storage.
	Update(ctx context.Context, branch *entity.Branch) error
}
