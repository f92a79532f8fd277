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

func newWorkLogServiceForTest() (usecase.WorkLogUsecase, *fakeRepoFactory) {
	factory := newFakeRepoFactory()

	svc := NewWorkLogService(WorkLogServiceParams{
		TxManager:   &fakeTxManager{factory: factory},
		WorkLogRepo: factory.workLogRepo,
		Logger:      testLogger(),
	})

	return svc, factory
}

func TestWorkLogService_LogEntry_Success(t *testing.T) {
	svc, factory := newWorkLogServiceForTest()
	userID := uuid.New()

	got, err := svc.LogEntry(context.Background(), &usecase.WorkLogInput{
		UserID:      userID,
		Description: "working from home",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.EventEntry, got.Type)
	assert.Equal(t, "working from home", got.Description)
	assert.Len(t, factory.workLogRepo.records, 1)
}

func TestWorkLogService_LogEntry_AlreadyStarted(t *testing.T) {
	svc, _ := newWorkLogServiceForTest()
	userID := uuid.New()

	_, err := svc.LogEntry(context.Background(), &usecase.WorkLogInput{UserID: userID})
	require.NoError(t, err)

	_, err = svc.LogEntry(context.Background(), &usecase.WorkLogInput{UserID: userID})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrWorkAlreadyStarted))
}

func TestWorkLogService_LogExit_WithoutEntry(t *testing.T) {
	svc, _ := newWorkLogServiceForTest()

	_, err := svc.LogExit(context.Background(), &usecase.WorkLogInput{UserID: uuid.New()})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrWorkNotStarted))
}

func TestWorkLogService_EntryExitPairing(t *testing.T) {
	svc, _ := newWorkLogServiceForTest()
	userID := uuid.New()
	input := &usecase.WorkLogInput{UserID: userID}

	entry, err := svc.LogEntry(context.Background(), input)
	require.NoError(t, err)
	exit, err := svc.LogExit(context.Background(), input)
	require.NoError(t, err)
	// A new session can begin after the previous one closed.
	again, err := svc.LogEntry(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, entity.EventEntry, entry.Type)
	assert.Equal(t, entity.EventExit, exit.Type)
	assert.Equal(t, entity.EventEntry, again.Type)
}

func TestWorkLogService_SessionsAreIndependentPerUser(t *testing.T) {
	svc, _ := newWorkLogServiceForTest()
	alice := uuid.New()
	bob := uuid.New()

	_, err := svc.LogEntry(context.Background(), &usecase.WorkLogInput{UserID: alice})
	require.NoError(t, err)

	// Bob's open session state is unaffected by Alice's.
	_, err = svc.LogExit(context.Background(), &usecase.WorkLogInput{UserID: bob})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrWorkNotStarted))
}

func TestWorkLogService_GetHistory(t *testing.T) {
	svc, _ := newWorkLogServiceForTest()
	userID := uuid.New()

	_, err := svc.LogEntry(context.Background(), &usecase.WorkLogInput{UserID: userID, Description: "morning"})
	require.NoError(t, err)
	_, err = svc.LogExit(context.Background(), &usecase.WorkLogInput{UserID: userID, Description: "lunch"})
	require.NoError(t, err)

	records, err := svc.GetHistory(context.Background(), userID, 10)

	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, entity.EventExit, records[0].Type)
	assert.Equal(t, entity.EventEntry, records[1].Type)

	limited, err := svc.GetHistory(context.Background(), userID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
