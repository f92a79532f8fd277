package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/passgage/passgage-go/internal/delivery/api/validator"
	"github.com/passgage/passgage-go/internal/domain/entity"
	"github.com/passgage/passgage-go/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// fakeAuthUsecase returns canned values for each operation.
type fakeAuthUsecase struct {
	loginOutput   *usecase.LoginOutput
	loginErr      error
	refreshOutput *usecase.RefreshTokenOutput
	refreshErr    error
	logoutErr     error
	logoutAllErr  error
	logoutAllUser uuid.UUID
	profileUser   *entity.User
	profileErr    error
	cleanupErr    error
}

func (f *fakeAuthUsecase) Login(_ context.Context, _ *usecase.LoginInput) (*usecase.LoginOutput, error) {
	return f.loginOutput, f.loginErr
}

func (f *fakeAuthUsecase) RefreshToken(_ context.Context, _ *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	return f.refreshOutput, f.refreshErr
}

func (f *fakeAuthUsecase) Logout(_ context.Context, _ *usecase.LogoutInput) error {
	return f.logoutErr
}

func (f *fakeAuthUsecase) LogoutAll(_ context.Context, userID uuid.UUID) error {
	f.logoutAllUser = userID

	return f.logoutAllErr
}

func (f *fakeAuthUsecase) GetProfile(_ context.Context, _ uuid.UUID) (*entity.User, error) {
	return f.profileUser, f.profileErr
}

func (f *fakeAuthUsecase) CleanupExpiredSessions(_ context.Context) error {
	return f.cleanupErr
}

type fakeAccessUsecase struct {
	lastInput *usecase.ValidateCodeInput
	output    *usecase.ScanOutput
	err       error
	history   []*entity.Entrance
	histErr   error
	lastLimit int
}

func (f *fakeAccessUsecase) ValidateQR(_ context.Context, input *usecase.ValidateCodeInput) (*usecase.ScanOutput, error) {
	f.lastInput = input

	return f.output, f.err
}

func (f *fakeAccessUsecase) ValidateNFC(_ context.Context, input *usecase.ValidateCodeInput) (*usecase.ScanOutput, error) {
	f.lastInput = input

	return f.output, f.err
}

func (f *fakeAccessUsecase) GetHistory(_ context.Context, _ uuid.UUID, limit int) ([]*entity.Entrance, error) {
	f.lastLimit = limit

	return f.history, f.histErr
}

type fakeBranchUsecase struct {
	branches  []*entity.Branch
	nearbyErr error
	entrance  *entity.Entrance
	checkErr  error
	qrPNG     []byte
	qrErr     error
	lastInput *usecase.CheckInInput
}

func (f *fakeBranchUsecase) GetNearbyBranches(_ context.Context, _ *usecase.NearbyBranchesInput) ([]*entity.Branch, error) {
	return f.branches, f.nearbyErr
}

func (f *fakeBranchUsecase) CheckInEntry(_ context.Context, input *usecase.CheckInInput) (*entity.Entrance, error) {
	f.lastInput = input

	return f.entrance, f.checkErr
}

func (f *fakeBranchUsecase) CheckInExit(_ context.Context, input *usecase.CheckInInput) (*entity.Entrance, error) {
	f.lastInput = input

	return f.entrance, f.checkErr
}

func (f *fakeBranchUsecase) GetEntranceQR(_ context.Context, _ uuid.UUID) ([]byte, error) {
	return f.qrPNG, f.qrErr
}

type fakeWorkLogUsecase struct {
	record    *entity.WorkLogRecord
	logErr    error
	history   []*entity.WorkLogRecord
	histErr   error
	lastLimit int
}

func (f *fakeWorkLogUsecase) LogEntry(_ context.Context, _ *usecase.WorkLogInput) (*entity.WorkLogRecord, error) {
	return f.record, f.logErr
}

func (f *fakeWorkLogUsecase) LogExit(_ context.Context, _ *usecase.WorkLogInput) (*entity.WorkLogRecord, error) {
	return f.record, f.logErr
}

func (f *fakeWorkLogUsecase) GetHistory(_ context.Context, _ uuid.UUID, limit int) ([]*entity.WorkLogRecord, error) {
	f.lastLimit = limit

	return f.history, f.histErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestContext builds an Echo context carrying a JSON body and the
// authenticated identity the middleware would normally set.
func newTestContext(t *testing.T, method, target, body string, userID, companyID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != uuid.Nil {
		c.Set("userID", userID)
	}
	if companyID != uuid.Nil {
		c.Set("companyID", companyID)
	}

	return c, rec
}

func testProfileUser() *entity.User {
	return &entity.User{
		ID:       uuid.New(),
		Email:    "ayse.demir@acme.example",
		FullName: "Ayse Demir",
		Company: entity.Company{
			ID:   uuid.New(),
			Name: "Acme Corp",
		},
		JobTitle:     "Field Engineer",
		GSM:          "+905551112233",
		PasswordHash: "$2a$10$secret-hash-must-not-leak",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func testEntrance(branchID uuid.UUID, eventType entity.EventType, source entity.EntranceSource) *entity.Entrance {
	return &entity.Entrance{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		BranchID:  branchID,
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now(),
	}
}

func testBranch() *entity.Branch {
	return &entity.Branch{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Title:     "Istanbul HQ",
		Address:   "Levent, Istanbul",
		Latitude:  41.0786,
		Longitude: 29.0131,
		IsActive:  true,
	}
}
