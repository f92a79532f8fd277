package service

import (
	"github.com/google/uuid"
)

// QRCodeService defines the interface for entrance QR code generation and parsing.
type QRCodeService interface {
	// GenerateEntranceQR renders a branch's entrance code as a PNG QR image.
	GenerateEntranceQR(branchID uuid.UUID, code string) ([]byte, error)

	// ParseEntranceQR parses scanned QR payload and returns the branch ID and raw code.
	ParseEntranceQR(qrData string) (uuid.UUID, string, error)
}
