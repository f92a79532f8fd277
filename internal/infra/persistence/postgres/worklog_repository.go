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

// workLogRepository implements the repository.WorkLogRepository interface.
type workLogRepository struct {
	db *gorm.DB
}

// NewWorkLogRepository is the constructor for workLogRepository.
func NewWorkLogRepository(db *gorm.DB) repository.WorkLogRepository {
	return &workLogRepository{
		db: db,
	}
}

// Create persists a new work-log record.
func (repo *workLogRepository) Create(ctx context.Context, record *entity.WorkLogRecord) error {
	recordM := fromWorkLogDomain(record)

	if err := repo.db.WithContext(ctx).Create(recordM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create work log record")
	}

	record.ID = recordM.ID

	return nil
}

// FindLastByUser retrieves the most recent work-log record for a user.
func (repo *workLogRepository) FindLastByUser(ctx context.Context, userID uuid.UUID) (*entity.WorkLogRecord, error) {
	var recordM model.WorkLogModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		First(&recordM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrWorkLogNotFound
		}

		return nil, errors.Wrap(err, "failed to find last work log record")
	}

	return toWorkLogDomain(&recordM), nil
}

// FindByUser retrieves the most recent work-log records for a user, newest first.
func (repo *workLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.WorkLogRecord, error) {
	var recordModels []*model.WorkLogModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&recordModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find work log records by user")
	}

	records := make([]*entity.WorkLogRecord, 0, len(recordModels))
	for _, recordM := range recordModels {
		records = append(records, toWorkLogDomain(recordM))
	}

	return records, nil
}

func toWorkLogDomain(data *model.WorkLogModel) *entity.WorkLogRecord {
	return &entity.WorkLogRecord{
		ID:          data.ID,
		UserID:      data.UserID,
		Type:        entity.EventType(data.Type),
		Timestamp:   data.Timestamp,
		Description: data.Description,
	}
}

func fromWorkLogDomain(data *entity.WorkLogRecord) *model.WorkLogModel {
	return &model.WorkLogModel{
		ID:          data.ID,
		UserID:      data.UserID,
		Type:        data.Type.String(),
		Timestamp:   data.Timestamp,
		Description: data.Description,
	}
}
