// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Company is the organization a user belongs to. Every user is attached to
// exactly one company; branches and access rules are scoped by it.
type Company struct {
	ID   uuid.UUID // The unique ID of the company.
	Name string    // The display name of the company.
}

// User is the core entity in the system, representing a single account holder.
// The ID is immutable once the account is created.
type User struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Email        string    // The user's primary contact email, used as the login identifier.
	FullName     string    // The user's full display name.
	Company      Company   // The company this user belongs to.
	JobTitle     string    // Optional job title shown on the profile.
	GSM          string    // Optional mobile phone number.
	PasswordHash string    // Stores the bcrypt-hashed password. Never serialized to clients.
	CreatedAt    time.Time // Timestamp of when this user account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this user's data.
}
