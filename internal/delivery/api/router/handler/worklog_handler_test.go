package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/passgage/passgage-go/internal/domain/entity"
	domainerrors "github.com/passgage/passgage-go/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkLog(eventType entity.EventType, description string) *entity.WorkLogRecord {
	return &entity.WorkLogRecord{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Type:        eventType,
		Timestamp:   time.Now(),
		Description: description,
	}
}

func TestWorkLogHandler_LogEntry_Success(t *testing.T) {
	fake := &fakeWorkLogUsecase{record: testWorkLog(entity.EventEntry, "working from home")}
	h := &WorkLogHandler{workLogUC: fake, logger: testLogger()}

	body := `{"description":"working from home"}`
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/worklog/entry", body, uuid.New(), uuid.Nil)

	require.NoError(t, h.LogEntry(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "working from home")
	assert.Contains(t, rec.Body.String(), "entry")
}

func TestWorkLogHandler_LogEntry_AlreadyStarted(t *testing.T) {
	fake := &fakeWorkLogUsecase{logErr: domainerrors.ErrWorkAlreadyStarted}
	h := &WorkLogHandler{workLogUC: fake, logger: testLogger()}

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/worklog/entry", `{}`, uuid.New(), uuid.Nil)

	require.NoError(t, h.LogEntry(c))
	assert.Equal(t, domainerrors.ErrWorkAlreadyStarted.HTTPCode(), rec.Code)
	assert.Contains(t, rec.Body.String(), domainerrors.ErrWorkAlreadyStarted.ErrorCode())
}

func TestWorkLogHandler_LogExit_Success(t *testing.T) {
	fake := &fakeWorkLogUsecase{record: testWorkLog(entity.EventExit, "")}
	h := &WorkLogHandler{workLogUC: fake, logger: testLogger()}

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/worklog/exit", `{}`, uuid.New(), uuid.Nil)

	require.NoError(t, h.LogExit(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "exit")
}

func TestWorkLogHandler_LogExit_NotStarted(t *testing.T) {
	fake := &fakeWorkLogUsecase{logErr: domainerrors.ErrWorkNotStarted}
	h := &WorkLogHandler{workLogUC: fake, logger: testLogger()}

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/worklog/exit", `{}`, uuid.New(), uuid.Nil)

	require.NoError(t, h.LogExit(c))
	assert.Equal(t, domainerrors.ErrWorkNotStarted.HTTPCode(), rec.Code)
	assert.Contains(t, rec.Body.String(), domainerrors.ErrWorkNotStarted.ErrorCode())
}

func TestWorkLogHandler_LogEntry_NoIdentity(t *testing.T) {
	fake := &fakeWorkLogUsecase{}
	h := &WorkLogHandler{workLogUC: fake, logger: testLogger()}

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/worklog/entry", `{}`, uuid.Nil, uuid.Nil)

	require.NoError(t, h.LogEntry(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWorkLogHandler_GetHistory_Success(t *testing.T) {
	fake := &fakeWorkLogUsecase{
		history: []*entity.WorkLogRecord{
			testWorkLog(entity.EventExit, ""),
			testWorkLog(entity.EventEntry, "morning session"),
		},
	}
	h := &WorkLogHandler{workLogUC: fake, logger: testLogger()}

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/worklog/history?limit=10", "", uuid.New(), uuid.Nil)

	require.NoError(t, h.GetHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "morning session")
	assert.Equal(t, 10, fake.lastLimit)
}

func TestWorkLogHandler_GetHistory_BadLimit(t *testing.T) {
	fake := &fakeWorkLogUsecase{}
	h := &WorkLogHandler{workLogUC: fake, logger: testLogger()}

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/worklog/history?limit=-1", "", uuid.New(), uuid.Nil)

	require.NoError(t, h.GetHistory(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
