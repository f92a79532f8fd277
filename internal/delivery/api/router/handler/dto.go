// Package handler contains the Echo handlers for the public HTTP API.
package handler

import (
	"time"

	"github.com/passgage/passgage-go/internal/domain/entity"

	"github.com/google/uuid"
)

// UserDTO is the wire representation of a user profile.
// The password hash never leaves the server.
type UserDTO struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Company  CompanyDTO `json:"company"`
	JobTitle string     `json:"job_title,omitempty"`
	GSM      string     `json:"gsm,omitempty"`
}

// CompanyDTO is the wire representation of a company.
type CompanyDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BranchDTO is the wire representation of a branch. DistanceM is only
// populated by proximity search responses.
type BranchDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Address   string    `json:"address,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	DistanceM *float64  `json:"distance_m,omitempty"`
}

// EntranceDTO is the wire representation of a recorded access event.
type EntranceDTO struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkLogDTO is the wire representation of a remote-work event.
type WorkLogDTO struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

func toUserDTO(user *entity.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Company: CompanyDTO{
			ID:   user.Company.ID,
			Name: user.Company.Name,
		},
		JobTitle: user.JobTitle,
		GSM:      user.GSM,
	}
}

func toBranchDTO(branch *entity.Branch, withDistance bool) BranchDTO {
	dto := BranchDTO{
		ID:        branch.ID,
		Title:     branch.Title,
		Address:   branch.Address,
		Latitude:  branch.Latitude,
		Longitude: branch.Longitude,
	}
	if withDistance {
		distance := branch.DistanceM
		dto.DistanceM = &distance
	}

	return dto
}

func toEntranceDTO(entrance *entity.Entrance) EntranceDTO {
	return EntranceDTO{
		ID:        entrance.ID,
		BranchID:  entrance.BranchID,
		Type:      entrance.Type.String(),
		Source:    string(entrance.Source),
		Timestamp: entrance.Timestamp,
	}
}

func toWorkLogDTO(record *entity.WorkLogRecord) WorkLogDTO {
	return WorkLogDTO{
		ID:          record.ID,
		Type:        record.Type.String(),
		Timestamp:   record.Timestamp,
		Description: record.Description,
	}
}
