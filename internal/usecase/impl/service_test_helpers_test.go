package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/passgage/passgage-go/config"
	"github.com/passgage/passgage-go/internal/domain/entity"
	"github.com/passgage/passgage-go/internal/domain/repository"
	"github.com/passgage/passgage-go/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Hand-written in-memory fakes for the repository and service interfaces.
// They keep the tests deterministic without a database.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			MaxActiveSessions: 3,
			AccessTokenTTL:    15 * time.Minute,
			RefreshTokenTTL:   7 * 24 * time.Hour,
		},
		AccessControl: &config.AccessControlConfig{
			DefaultRadiusM:   1000,
			MaxRadiusM:       10000,
			DefaultGeofenceM: 150,
		},
	}
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}

	return repo
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user

	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.users[user.ID] = user

	return nil
}

func (f *fakeUserRepo) AcquireSessionMutex(_ context.Context, _ uuid.UUID) error {
	return nil
}

type fakeRefreshTokenRepo struct {
	tokens map[string]*entity.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*entity.RefreshToken)}
}

func (f *fakeRefreshTokenRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	f.tokens[token.TokenHash] = token

	return nil
}

func (f *fakeRefreshTokenRepo) FindRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	token, ok := f.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, repository.ErrRefreshTokenExpired
	}

	return token, nil
}

func (f *fakeRefreshTokenRepo) DeleteRefreshTokenByHash(_ context.Context, tokenHash string) error {
	if _, ok := f.tokens[tokenHash]; !ok {
		return repository.ErrRefreshTokenNotFound
	}
	delete(f.tokens, tokenHash)

	return nil
}

func (f *fakeRefreshTokenRepo) DeleteRefreshTokensByUserID(_ context.Context, userID uuid.UUID) error {
	for hash, token := range f.tokens {
		if token.UserID == userID {
			delete(f.tokens, hash)
		}
	}

	return nil
}

func (f *fakeRefreshTokenRepo) DeleteExpiredRefreshTokens(_ context.Context) error {
	for hash, token := range f.tokens {
		if time.Now().After(token.ExpiresAt) {
			delete(f.tokens, hash)
		}
	}

	return nil
}

func (f *fakeRefreshTokenRepo) CountActiveSessionsByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, token := range f.tokens {
		if token.UserID == userID && time.Now().Before(token.ExpiresAt) {
			count++
		}
	}

	return count, nil
}

type fakeBranchRepo struct {
	branches map[uuid.UUID]*entity.Branch
}

func newFakeBranchRepo(branches ...*entity.Branch) *fakeBranchRepo {
	repo := &fakeBranchRepo{branches: make(map[uuid.UUID]*entity.Branch)}
	for _, branch := range branches {
		repo.branches[branch.ID] = branch
	}

	return repo
}

func (f *fakeBranchRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Branch, error) {
	branch, ok := f.branches[id]
	if !ok {
		return nil, repository.ErrBranchNotFound
	}

	return branch, nil
}

func (f *fakeBranchRepo) FindByQRCode(_ context.Context, code string) (*entity.Branch, error) {
	for _, branch := range f.branches {
		if branch.IsActive && branch.QRCode == code {
			return branch, nil
		}
	}

	return nil, repository.ErrBranchNotFound
}

func (f *fakeBranchRepo) FindByNFCTag(_ context.Context, tagID string) (*entity.Branch, error) {
	for _, branch := range f.branches {
		if branch.IsActive && branch.NFCTagID == tagID {
			return branch, nil
		}
	}

	return nil, repository.ErrBranchNotFound
}

func (f *fakeBranchRepo) FindActiveByCompany(_ context.Context, companyID uuid.UUID) ([]*entity.Branch, error) {
	var result []*entity.Branch
	for _, branch := range f.branches {
		if branch.IsActive && branch.CompanyID == companyID {
			result = append(result, branch)
		}
	}

	return result, nil
}

func (f *fakeBranchRepo) Create(_ context.Context, branch *entity.Branch) error {
	if branch.ID == uuid.Nil {
		branch.ID = uuid.New()
	}
	f.branches[branch.ID] = branch

	return nil
}

func (f *fakeBranchRepo) Update(_ context.Context, branch *entity.Branch) error {
	f.branches[branch.ID] = branch

	return nil
}

type fakeEntranceRepo struct {
	records []*entity.Entrance
}

func (f *fakeEntranceRepo) Create(_ context.Context, entrance *entity.Entrance) error {
	if entrance.ID == uuid.Nil {
		entrance.ID = uuid.New()
	}
	f.records = append(f.records, entrance)

	return nil
}

func (f *fakeEntranceRepo) FindLastByUserAndBranch(_ context.Context, userID, branchID uuid.UUID) (*entity.Entrance, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID && f.records[i].BranchID == branchID {
			return f.records[i], nil
		}
	}

	return nil, repository.ErrEntranceNotFound
}

func (f *fakeEntranceRepo) FindByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.Entrance, error) {
	var result []*entity.Entrance
	for i := len(f.records) - 1; i >= 0 && len(result) < limit; i-- {
		if f.records[i].UserID == userID {
			result = append(result, f.records[i])
		}
	}

	return result, nil
}

type fakeWorkLogRepo struct {
	records []*entity.WorkLogRecord
}

func (f *fakeWorkLogRepo) Create(_ context.Context, record *entity.WorkLogRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	f.records = append(f.records, record)

	return nil
}

func (f *fakeWorkLogRepo) FindLastByUser(_ context.Context, userID uuid.UUID) (*entity.WorkLogRecord, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			return f.records[i], nil
		}
	}

	return nil, repository.ErrWorkLogNotFound
}

func (f *fakeWorkLogRepo) FindByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.WorkLogRecord, error) {
	var result []*entity.WorkLogRecord
	for i := len(f.records) - 1; i >= 0 && len(result) < limit; i-- {
		if f.records[i].UserID == userID {
			result = append(result, f.records[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	return result, nil
}

// fakeRepoFactory hands the same in-memory repositories to every transaction.
type fakeRepoFactory struct {
	userRepo     *fakeUserRepo
	refreshRepo  *fakeRefreshTokenRepo
	branchRepo   *fakeBranchRepo
	entranceRepo *fakeEntranceRepo
	workLogRepo  *fakeWorkLogRepo
}

func newFakeRepoFactory() *fakeRepoFactory {
	return &fakeRepoFactory{
		userRepo:     newFakeUserRepo(),
		refreshRepo:  newFakeRefreshTokenRepo(),
		branchRepo:   newFakeBranchRepo(),
		entranceRepo: &fakeEntranceRepo{},
		workLogRepo:  &fakeWorkLogRepo{},
	}
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository                 { return f.userRepo }
func (f *fakeRepoFactory) RefreshTokenRepo() repository.RefreshTokenRepository { return f.refreshRepo }
func (f *fakeRepoFactory) BranchRepo() repository.BranchRepository             { return f.branchRepo }
func (f *fakeRepoFactory) EntranceRepo() repository.EntranceRepository         { return f.entranceRepo }
func (f *fakeRepoFactory) WorkLogRepo() repository.WorkLogRepository           { return f.workLogRepo }

// fakeTxManager executes the callback directly against the shared factory.
type fakeTxManager struct {
	factory *fakeRepoFactory
}

func (f *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(f.factory)
}

// fakeHasher trades bcrypt for a reversible prefix so tests stay fast.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeTokenService issues recognizable token strings instead of real JWTs.
type fakeTokenService struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	claims     map[string]*service.Claims
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{
		accessTTL:  15 * time.Minute,
		refreshTTL: 7 * 24 * time.Hour,
		claims:     make(map[string]*service.Claims),
	}
}

func (f *fakeTokenService) GenerateTokens(userID, companyID uuid.UUID) (string, string, error) {
	access := "access-" + uuid.NewString()
	refresh := "refresh-" + uuid.NewString()
	f.claims[access] = &service.Claims{UserID: userID, CompanyID: companyID, Type: service.TokenTypeAccess}
	f.claims[refresh] = &service.Claims{UserID: userID, CompanyID: companyID, Type: service.TokenTypeRefresh}

	return access, refresh, nil
}

func (f *fakeTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	claims, ok := f.claims[tokenString]
	if !ok || claims.Type != service.TokenTypeAccess {
		return nil, errors.New("invalid access token")
	}

	return claims, nil
}

func (f *fakeTokenService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	claims, ok := f.claims[tokenString]
	if !ok || claims.Type != service.TokenTypeRefresh {
		return nil, errors.New("invalid refresh token")
	}

	return claims, nil
}

func (f *fakeTokenService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

func (f *fakeTokenService) GetAccessTokenDuration() time.Duration  { return f.accessTTL }
func (f *fakeTokenService) GetRefreshTokenDuration() time.Duration { return f.refreshTTL }

// fakeQRCodeService round-trips entrance codes through a "qr:<branch>:<code>" payload.
type fakeQRCodeService struct{}

func (fakeQRCodeService) GenerateEntranceQR(branchID uuid.UUID, code string) ([]byte, error) {
	return []byte("qr:" + branchID.String() + ":" + code), nil
}

func (fakeQRCodeService) ParseEntranceQR(qrData string) (uuid.UUID, string, error) {
	parts := strings.SplitN(qrData, ":", 3)
	if len(parts) != 3 || parts[0] != "qr" {
		return uuid.Nil, "", errors.New("not an entrance QR payload")
	}
	branchID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, "", errors.Wrap(err, "invalid branch id in QR payload")
	}

	return branchID, parts[2], nil
}
