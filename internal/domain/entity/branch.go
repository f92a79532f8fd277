package entity

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical company location that users can access and check in to.
// Each branch carries its own geofence radius, which is enforced server-side on
// check-in regardless of the radius a client searched with.
type Branch struct {
	ID        uuid.UUID // The unique ID of the branch.
	CompanyID uuid.UUID // The company this branch belongs to.
	Title     string    // Human-readable branch name, e.g. "HQ - Istanbul".
	Address   string    // Full postal address of the branch.
	Latitude  float64   // Geographic latitude of the branch entrance.
	Longitude float64   // Geographic longitude of the branch entrance.
	GeofenceM float64   // Geofence radius in meters for check-in enforcement.
	QRCode    string    // The code encoded in the entrance QR; scanned by the mobile client.
	NFCTagID  string    // The identifier programmed into the entrance NFC tag.
	IsActive  bool      // Inactive branches are excluded from proximity search and validation.
	CreatedAt time.Time
	UpdatedAt time.Time

	// DistanceM is only populated by proximity queries and is never persisted.
	// When present it is always >= 0.
	DistanceM float64
}
