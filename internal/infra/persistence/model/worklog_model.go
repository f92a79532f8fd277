package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkLogModel mirrors the 'work_logs' table holding remote-work events.
type WorkLogModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"type:varchar(10);not null"`
	Timestamp   time.Time `gorm:"not null;index"`
	Description string    `gorm:"type:text"`
}

// TableName explicitly sets the table name for GORM.
func (WorkLogModel) TableName() string {
	return "work_logs"
}
