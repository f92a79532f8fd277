package model

import (
	"time"

	"github.com/google/uuid"
)

// BranchModel mirrors the 'branches' table.
type BranchModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Address   string    `gorm:"type:text"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	GeofenceM float64   `gorm:"not null;default:0"`
	QRCode    string    `gorm:"type:varchar(255);unique;not null"`
	NFCTagID  string    `gorm:"type:varchar(255);uniqueIndex"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (BranchModel) TableName() string {
	return "branches"
}

// EntranceModel mirrors the 'entrances' table holding recorded access events.
type EntranceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_entrances_user_branch"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;index:idx_entrances_user_branch"`
	Type      string    `gorm:"type:varchar(10);not null"`
	Source    string    `gorm:"type:varchar(10);not null"`
	Timestamp time.Time `gorm:"not null;index"`
	Latitude  *float64
	Longitude *float64
}

// TableName explicitly sets the table name for GORM.
func (EntranceModel) TableName() string {
	return "entrances"
}
