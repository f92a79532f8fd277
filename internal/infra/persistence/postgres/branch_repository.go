package postgres

import (
	"context"

	"github.com/passgage/passgage-go/internal/domain/entity"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"
	"github.com/passgage/passgage-go/internal/domain/repository"
	"github.com/passgage/passgage-go/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// branchRepository implements the repository.BranchRepository interface.
type branchRepository struct {
	db *gorm.DB
}

// NewBranchRepository is the constructor for branchRepository.
func NewBranchRepository(db *gorm.DB) repository.BranchRepository {
	return &branchRepository{
		db: db,
	}
}

// FindByID retrieves a single branch by its unique ID.
func (repo *branchRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Branch, error) {
	var branchM model.BranchModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&branchM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBranchNotFound
		}

		return nil, errors.Wrap(err, "failed to find branch by ID")
	}

	return toBranchDomain(&branchM), nil
}

// FindByQRCode retrieves the active branch whose entrance QR encodes the given code.
func (repo *branchRepository) FindByQRCode(ctx context.Context, code string) (*entity.Branch, error) {
	var branchM model.BranchModel

	if err := repo.db.WithContext(ctx).
		Where("qr_code = ? AND is_active = ?", code, true).
		First(&branchM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBranchNotFound
		}

		return nil, errors.Wrap(err, "failed to find branch by QR code")
	}

	return toBranchDomain(&branchM), nil
}

// FindByNFCTag retrieves the active branch whose entrance NFC tag carries the given ID.
func (repo *branchRepository) FindByNFCTag(ctx context.Context, tagID string) (*entity.Branch, error) {
	var branchM model.BranchModel

	if err := repo.db.WithContext(ctx).
		Where("nfc_tag_id = ? AND is_active = ?", tagID, true).
		First(&branchM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBranchNotFound
		}

		return nil, errors.Wrap(err, "failed to find branch by NFC tag")
	}

	return toBranchDomain(&branchM), nil
}

// FindActiveByCompany retrieves all active branches of a company.
func (repo *branchRepository) FindActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]*entity.Branch, error) {
	var branchModels []*model.BranchModel

	if err := repo.db.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("title ASC").
		Find(&branchModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find active branches by company")
	}

	branches := make([]*entity.Branch, 0, len(branchModels))
	for _, branchM := range branchModels {
		branches = append(branches, toBranchDomain(branchM))
	}

	return branches, nil
}

// Create persists a new branch entity to the database.
func (repo *branchRepository) Create(ctx context.Context, branch *entity.Branch) error {
	branchM := fromBranchDomain(branch)

	if err := repo.db.WithContext(ctx).Create(branchM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("entrance code already in use")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid company reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create branch")
	}

	branch.ID = branchM.ID
	branch.CreatedAt = branchM.CreatedAt
	branch.UpdatedAt = branchM.UpdatedAt

	return nil
}

// Update modifies an existing branch entity in the database.
func (repo *branchRepository) Update(ctx context.Context, branch *entity.Branch) error {
	result := repo.db.WithContext(ctx).
		Model(&model.BranchModel{}).
		Where("id = ?", branch.ID).
		Updates(fromBranchDomain(branch))
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrConflict.WrapMessage("entrance code already in use")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update branch")
	}
	if result.RowsAffected == 0 {
		return repository.ErrBranchNotFound
	}

	return nil
}

func toBranchDomain(data *model.BranchModel) *entity.Branch {
	return &entity.Branch{
		ID:        data.ID,
		CompanyID: data.CompanyID,
		Title:     data.Title,
		Address:   data.Address,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
		GeofenceM: data.GeofenceM,
		QRCode:    data.QRCode,
		NFCTagID:  data.NFCTagID,
		IsActive:  data.IsActive,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromBranchDomain(data *entity.Branch) *model.BranchModel {
	return &model.BranchModel{
		ID:        data.ID,
		CompanyID: data.CompanyID,
		Title:     data.Title,
		Address:   data.Address,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
		GeofenceM: data.GeofenceM,
		QRCode:    data.QRCode,
		NFCTagID:  data.NFCTagID,
		IsActive:  data.IsActive,
	}
}
