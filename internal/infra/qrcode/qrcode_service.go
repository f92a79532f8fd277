package qrcode

import (
	"encoding/json"
	"fmt"

	"github.com/passgage/passgage-go/internal/domain/service"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// QRCodeData represents the payload encoded in an entrance QR code
type QRCodeData struct {
	BranchID string `json:"branch_id"`
	Code     string `json:"code"`
	Type     string `json:"type"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateEntranceQR generates a QR code image for a branch entrance
func (s *qrcodeService) GenerateEntranceQR(branchID uuid.UUID, code string) ([]byte, error) {
	// Create QR code data
	data := QRCodeData{
		BranchID: branchID.String(),
		Code:     code,
		Type:     "entrance",
	}

	// Convert to JSON
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	// Generate QR code
	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// Generate PNG image
	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseEntranceQR parses QR code data and returns the branch ID and entrance code
func (s *qrcodeService) ParseEntranceQR(qrData string) (uuid.UUID, string, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	// Validate type
	if data.Type != "entrance" {
		return uuid.Nil, "", fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	// Parse UUID
	branchID, err := uuid.Parse(data.BranchID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to parse branch ID: %w", err)
	}

	return branchID, data.Code, nil
}
