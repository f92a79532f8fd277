package impl

import (
	"context"
	"testing"
	"time"

	"github.com/passgage/passgage-go/internal/domain/entity"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"
	"github.com/passgage/passgage-go/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServiceForTest(users ...*entity.User) (usecase.AuthUsecase, *fakeRepoFactory, *fakeTokenService) {
	factory := newFakeRepoFactory()
	for _, user := range users {
		factory.userRepo.users[user.ID] = user
	}
	tokens := newFakeTokenService()

	svc := NewAuthService(AuthServiceParams{
		TxManager:        &fakeTxManager{factory: factory},
		UserRepo:         factory.userRepo,
		RefreshTokenRepo: factory.refreshRepo,
		Hasher:           fakeHasher{},
		TokenService:     tokens,
		Config:           testConfig(),
		Logger:           testLogger(),
	})

	return svc, factory, tokens
}

func testUser(email, password string) *entity.User {
	hash, _ := fakeHasher{}.Hash(password)

	return &entity.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     "Ada Lovelace",
		Company:      entity.Company{ID: uuid.New(), Name: "Acme"},
		PasswordHash: hash,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, factory, _ := newAuthServiceForTest(user)

	out, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@acme.test",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, user.ID, out.User.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), out.ExpiresAt, time.Minute)

	// The refresh token must be stored hashed, never raw.
	count, err := factory.refreshRepo.CountActiveSessionsByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, rawStored := factory.refreshRepo.tokens[out.RefreshToken]
	assert.False(t, rawStored)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, factory, _ := newAuthServiceForTest(user)

	out, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@acme.test",
		Password: "battery-staple",
	})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.Empty(t, factory.refreshRepo.tokens)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthServiceForTest()

	out, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "nobody@acme.test",
		Password: "whatever",
	})

	require.Error(t, err)
	assert.Nil(t, out)
	// Unknown accounts are indistinguishable from wrong passwords.
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_SessionLimitExceeded(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, _, _ := newAuthServiceForTest(user)

	for range 3 {
		_, err := svc.Login(context.Background(), &usecase.LoginInput{
			Email:    "ada@acme.test",
			Password: "correct-horse",
		})
		require.NoError(t, err)
	}

	out, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@acme.test",
		Password: "correct-horse",
	})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionLimitExceeded))
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, factory, _ := newAuthServiceForTest(user)

	loginOut, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@acme.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	refreshOut, err := svc.RefreshToken(context.Background(), &usecase.RefreshTokenInput{
		RefreshToken: loginOut.RefreshToken,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, refreshOut.AccessToken)
	assert.NotEqual(t, loginOut.AccessToken, refreshOut.AccessToken)

	// The refresh token itself is never rotated.
	count, err := factory.refreshRepo.CountActiveSessionsByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAuthService_RefreshToken_UnknownToken(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, _, tokens := newAuthServiceForTest(user)

	// Valid signature but no matching session in the database.
	_, refresh, err := tokens.GenerateTokens(user.ID, user.Company.ID)
	require.NoError(t, err)

	out, err := svc.RefreshToken(context.Background(), &usecase.RefreshTokenInput{
		RefreshToken: refresh,
	})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_Logout_DeletesSession(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, factory, _ := newAuthServiceForTest(user)

	loginOut, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@acme.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), &usecase.LogoutInput{RefreshToken: loginOut.RefreshToken})

	require.NoError(t, err)
	assert.Empty(t, factory.refreshRepo.tokens)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, _, _ := newAuthServiceForTest(user)

	loginOut, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@acme.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), &usecase.LogoutInput{RefreshToken: loginOut.RefreshToken}))
	// A second logout with the same token must not fail.
	require.NoError(t, svc.Logout(context.Background(), &usecase.LogoutInput{RefreshToken: loginOut.RefreshToken}))
}

func TestAuthService_LogoutAll_DeletesOnlyThatUsersSessions(t *testing.T) {
	userA := testUser("ada@acme.test", "correct-horse")
	userB := testUser("grace@acme.test", "correct-horse")
	svc, factory, _ := newAuthServiceForTest(userA, userB)

	for _, email := range []string{"ada@acme.test", "ada@acme.test", "grace@acme.test"} {
		_, err := svc.Login(context.Background(), &usecase.LoginInput{
			Email:    email,
			Password: "correct-horse",
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.LogoutAll(context.Background(), userA.ID))

	countA, err := factory.refreshRepo.CountActiveSessionsByUserID(context.Background(), userA.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, countA)

	countB, err := factory.refreshRepo.CountActiveSessionsByUserID(context.Background(), userB.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countB)
}

func TestAuthService_LogoutAll_InvalidatesRefresh(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, _, _ := newAuthServiceForTest(user)

	loginOut, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@acme.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(context.Background(), user.ID))

	out, err := svc.RefreshToken(context.Background(), &usecase.RefreshTokenInput{
		RefreshToken: loginOut.RefreshToken,
	})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_CleanupExpiredSessions(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, factory, _ := newAuthServiceForTest(user)

	loginOut, err := svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@acme.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	factory.refreshRepo.tokens["stale-hash"] = &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "stale-hash",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	require.NoError(t, svc.CleanupExpiredSessions(context.Background()))

	assert.Len(t, factory.refreshRepo.tokens, 1)
	_, staleKept := factory.refreshRepo.tokens["stale-hash"]
	assert.False(t, staleKept)

	// The live session still refreshes.
	out, err := svc.RefreshToken(context.Background(), &usecase.RefreshTokenInput{
		RefreshToken: loginOut.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
}

func TestAuthService_GetProfile(t *testing.T) {
	user := testUser("ada@acme.test", "correct-horse")
	svc, _, _ := newAuthServiceForTest(user)

	got, err := svc.GetProfile(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.Company.Name, got.Company.Name)
}

func TestAuthService_GetProfile_NotFound(t *testing.T) {
	svc, _, _ := newAuthServiceForTest()

	got, err := svc.GetProfile(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
