package impl

import (
	"context"
	"testing"

	"github.com/passgage/passgage-go/internal/domain/entity"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"
	"github.com/passgage/passgage-go/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccessServiceForTest(branches ...*entity.Branch) (usecase.AccessUsecase, *fakeRepoFactory) {
	factory := newFakeRepoFactory()
	for _, branch := range branches {
		factory.branchRepo.branches[branch.ID] = branch
	}

	svc := NewAccessService(AccessServiceParams{
		TxManager:     &fakeTxManager{factory: factory},
		BranchRepo:    factory.branchRepo,
		EntranceRepo:  factory.entranceRepo,
		QRCodeService: fakeQRCodeService{},
		Logger:        testLogger(),
	})

	return svc, factory
}

func testBranch() *entity.Branch {
	return &entity.Branch{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Title:     "HQ - Istanbul",
		Latitude:  41.0082,
		Longitude: 28.9784,
		GeofenceM: 150,
		QRCode:    "BR-HQ-0001",
		NFCTagID:  "04:A3:2F:1C",
		IsActive:  true,
	}
}

func TestAccessService_ValidateQR_FirstScanIsEntry(t *testing.T) {
	branch := testBranch()
	svc, factory := newAccessServiceForTest(branch)
	userID := uuid.New()

	out, err := svc.ValidateQR(context.Background(), &usecase.ValidateCodeInput{
		UserID: userID,
		Code:   "BR-HQ-0001",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.EventEntry, out.Entrance.Type)
	assert.Equal(t, entity.SourceQR, out.Entrance.Source)
	assert.Equal(t, branch.ID, out.Entrance.BranchID)
	assert.Equal(t, branch.ID, out.Branch.ID)
	assert.Len(t, factory.entranceRepo.records, 1)
}

func TestAccessService_ValidateQR_AlternatesDirection(t *testing.T) {
	branch := testBranch()
	svc, _ := newAccessServiceForTest(branch)
	userID := uuid.New()
	input := &usecase.ValidateCodeInput{UserID: userID, Code: "BR-HQ-0001"}

	first, err := svc.ValidateQR(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.ValidateQR(context.Background(), input)
	require.NoError(t, err)
	third, err := svc.ValidateQR(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, entity.EventEntry, first.Entrance.Type)
	assert.Equal(t, entity.EventExit, second.Entrance.Type)
	assert.Equal(t, entity.EventEntry, third.Entrance.Type)
}

func TestAccessService_ValidateQR_StructuredPayload(t *testing.T) {
	branch := testBranch()
	svc, _ := newAccessServiceForTest(branch)

	// Payload produced by the entrance QR generator carries the raw code inside.
	payload, err := fakeQRCodeService{}.GenerateEntranceQR(branch.ID, branch.QRCode)
	require.NoError(t, err)

	out, err := svc.ValidateQR(context.Background(), &usecase.ValidateCodeInput{
		UserID: uuid.New(),
		Code:   string(payload),
	})

	require.NoError(t, err)
	assert.Equal(t, branch.ID, out.Branch.ID)
}

func TestAccessService_ValidateQR_UnknownCode(t *testing.T) {
	svc, factory := newAccessServiceForTest(testBranch())

	out, err := svc.ValidateQR(context.Background(), &usecase.ValidateCodeInput{
		UserID: uuid.New(),
		Code:   "BR-NOPE-9999",
	})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidQRCode))
	assert.Empty(t, factory.entranceRepo.records)
}

func TestAccessService_ValidateQR_InactiveBranch(t *testing.T) {
	branch := testBranch()
	branch.IsActive = false
	svc, _ := newAccessServiceForTest(branch)

	_, err := svc.ValidateQR(context.Background(), &usecase.ValidateCodeInput{
		UserID: uuid.New(),
		Code:   branch.QRCode,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidQRCode))
}

func TestAccessService_ValidateNFC_Success(t *testing.T) {
	branch := testBranch()
	svc, _ := newAccessServiceForTest(branch)
	lat, lon := 41.0081, 28.9783

	out, err := svc.ValidateNFC(context.Background(), &usecase.ValidateCodeInput{
		UserID:    uuid.New(),
		Code:      "04:A3:2F:1C",
		Device:    "iPhone 15 Pro",
		Latitude:  &lat,
		Longitude: &lon,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.SourceNFC, out.Entrance.Source)
	require.NotNil(t, out.Entrance.Latitude)
	assert.InDelta(t, lat, *out.Entrance.Latitude, 1e-9)
}

func TestAccessService_ValidateNFC_UnknownTag(t *testing.T) {
	svc, factory := newAccessServiceForTest(testBranch())

	out, err := svc.ValidateNFC(context.Background(), &usecase.ValidateCodeInput{
		UserID: uuid.New(),
		Code:   "FF:FF:FF:FF",
	})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidNFCTag))
	assert.Empty(t, factory.entranceRepo.records)
}

func TestAccessService_GetHistory_NewestFirst(t *testing.T) {
	branch := testBranch()
	svc, _ := newAccessServiceForTest(branch)
	userID := uuid.New()

	for range 2 {
		_, err := svc.ValidateQR(context.Background(), &usecase.ValidateCodeInput{
			UserID: userID,
			Code:   "BR-HQ-0001",
		})
		require.NoError(t, err)
	}

	history, err := svc.GetHistory(context.Background(), userID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.EventExit, history[0].Type)
	assert.Equal(t, entity.EventEntry, history[1].Type)
}

func TestAccessService_GetHistory_RespectsLimit(t *testing.T) {
	branch := testBranch()
	svc, _ := newAccessServiceForTest(branch)
	userID := uuid.New()
	otherUserID := uuid.New()

	for _, id := range []uuid.UUID{userID, otherUserID, userID} {
		_, err := svc.ValidateQR(context.Background(), &usecase.ValidateCodeInput{
			UserID: id,
			Code:   "BR-HQ-0001",
		})
		require.NoError(t, err)
	}

	history, err := svc.GetHistory(context.Background(), userID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, userID, history[0].UserID)
}
