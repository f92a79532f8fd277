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

// entranceRepository implements the repository.EntranceRepository interface.
type entranceRepository struct {
	db *gorm.DB
}

// NewEntranceRepository is the constructor for entranceRepository.
func NewEntranceRepository(db *gorm.DB) repository.EntranceRepository {
	return &entranceRepository{
		db: db,
	}
}

// Create persists a new entrance record.
func (repo *entranceRepository) Create(ctx context.Context, entrance *entity.Entrance) error {
	entranceM := fromEntranceDomain(entrance)

	if err := repo.db.WithContext(ctx).Create(entranceM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid user or branch reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create entrance")
	}

	entrance.ID = entranceM.ID

	return nil
}

// FindLastByUserAndBranch retrieves the most recent entrance of a user at a branch.
func (repo *entranceRepository) FindLastByUserAndBranch(ctx context.Context, userID, branchID uuid.UUID) (*entity.Entrance, error) {
	var entranceM model.EntranceModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND branch_id = ?", userID, branchID).
		Order("timestamp DESC").
		First(&entranceM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEntranceNotFound
		}

		return nil, errors.Wrap(err, "failed to find last entrance")
	}

	return toEntranceDomain(&entranceM), nil
}

// FindByUser retrieves the most recent entrance records for a user, newest first.
func (repo *entranceRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Entrance, error) {
	var entranceModels []*model.EntranceModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entranceModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find entrances by user")
	}

	entrances := make([]*entity.Entrance, 0, len(entranceModels))
	for _, entranceM := range entranceModels {
		entrances = append(entrances, toEntranceDomain(entranceM))
	}

	return entrances, nil
}

func toEntranceDomain(data *model.EntranceModel) *entity.Entrance {
	return &entity.Entrance{
		ID:        data.ID,
		UserID:    data.UserID,
		BranchID:  data.BranchID,
		Type:      entity.EventType(data.Type),
		Source:    entity.EntranceSource(data.Source),
		Timestamp: data.Timestamp,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
	}
}

func fromEntranceDomain(data *entity.Entrance) *model.EntranceModel {
	return &model.EntranceModel{
		ID:        data.ID,
		UserID:    data.UserID,
		BranchID:  data.BranchID,
		Type:      data.Type.String(),
		Source:    string(data.Source),
		Timestamp: data.Timestamp,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
	}
}
