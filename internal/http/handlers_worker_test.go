package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/openpalette/genstudio/internal/core"
	"github.com/openpalette/genstudio/internal/domain/failure"
	"github.com/openpalette/genstudio/internal/domain/model"
)

func strPtr(s string) *string { return &s }

func TestNextJobEmptyQueue(t *testing.T) {
	f := newRouterFixture(t)

	f.jobs.EXPECT().NextPending(gomock.Any()).Return(nil, model.ErrNoJobsPending)

	req := httptest.NewRequest(http.MethodGet, "/api/worker/jobs/next", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestNextJobReturnsPendingJob(t *testing.T) {
	f := newRouterFixture(t)

	f.jobs.EXPECT().NextPending(gomock.Any()).
		Return(&model.Job{ID: "job-1", Status: model.JobStatusPending, Priority: model.DefaultPriority}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/worker/jobs/next", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var job model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "job-1", job.ID)
}

func TestClaimMovesJobToProcessing(t *testing.T) {
	f := newRouterFixture(t)

	var captured *model.JobUpdate
	f.jobs.EXPECT().Update(gomock.Any(), "job-1", gomock.Any(), model.JobStatusPending).
		DoAndReturn(func(_ any, _ string, update *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			captured = update
			return &model.Job{
				ID:            "job-1",
				Status:        model.JobStatusProcessing,
				ExternalJobID: update.ExternalJobID,
			}, nil
		})

	req := httptest.NewRequest(http.MethodPost, "/api/worker/jobs/job-1/claim",
		strings.NewReader(`{"externalJobId": "ext-9"}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var job model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, model.JobStatusProcessing, job.Status)

	require.NotNil(t, captured)
	require.NotNil(t, captured.ExternalJobID)
	assert.Equal(t, "ext-9", *captured.ExternalJobID)
	require.NotNil(t, captured.StartedAt)
}

func TestClaimConflictWhenJobLeftPending(t *testing.T) {
	f := newRouterFixture(t)

	f.jobs.EXPECT().Update(gomock.Any(), "job-1", gomock.Any(), model.JobStatusPending).
		Return(nil, core.ErrStaleStatus)

	req := httptest.NewRequest(http.MethodPost, "/api/worker/jobs/job-1/claim",
		strings.NewReader(`{"externalJobId": "ext-9"}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClaimRequiresExternalJobID(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/worker/jobs/job-1/claim",
		strings.NewReader(`{"externalJobId": ""}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressForwardedToClient(t *testing.T) {
	f := newRouterFixture(t)

	f.jobs.EXPECT().GetByExternalID(gomock.Any(), "ext-9").Return(&model.Job{
		ID:           "job-1",
		Status:       model.JobStatusProcessing,
		ConnectionID: strPtr("conn-1"),
	}, nil)

	body := `{"externalJobId": "ext-9", "nodeId": "sampler", "progressValue": 10, "progressMax": 20}`
	req := httptest.NewRequest(http.MethodPost, "/api/worker/events/progress", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	msgs := f.gateway.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.MessageJobProgress, msgs[0].Message.Type)
	assert.Equal(t, 50, msgs[0].Message.Percentage)
}

func TestCompleteFinishesJob(t *testing.T) {
	f := newRouterFixture(t)

	f.jobs.EXPECT().GetByExternalID(gomock.Any(), "ext-9").
		Return(&model.Job{ID: "job-1", Status: model.JobStatusProcessing}, nil)
	f.jobs.EXPECT().Update(gomock.Any(), "job-1", gomock.Any(), model.JobStatusProcessing).
		Return(&model.Job{
			ID:         "job-1",
			Status:     model.JobStatusCompleted,
			ResultRefs: []string{"outputs/job-1/0.png"},
		}, nil)

	body := `{"externalJobId": "ext-9", "resultReference": ["outputs/job-1/0.png"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/worker/events/complete", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var job model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, []string{"outputs/job-1/0.png"}, job.ResultRefs)
}

func TestFailRetriesTransientError(t *testing.T) {
	f := newRouterFixture(t)

	f.jobs.EXPECT().GetByExternalID(gomock.Any(), "ext-9").
		Return(&model.Job{ID: "job-1", Status: model.JobStatusProcessing, RetryCount: 0}, nil)

	var captured *model.JobUpdate
	f.jobs.EXPECT().Update(gomock.Any(), "job-1", gomock.Any(), model.JobStatusProcessing).
		DoAndReturn(func(_ any, _ string, update *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			captured = update
			return &model.Job{ID: "job-1", Status: model.JobStatusPending, RetryCount: 1}, nil
		})

	body := `{"externalJobId": "ext-9", "errorType": "connection_reset", "errorMessage": "worker went away"}`
	req := httptest.NewRequest(http.MethodPost, "/api/worker/events/fail", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var job model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)

	require.NotNil(t, captured)
	require.NotNil(t, captured.Priority)
	assert.Equal(t, model.RetryPriority, *captured.Priority)
	require.NotNil(t, captured.ErrorType)
	assert.Equal(t, string(failure.TypeConnectionFailure), *captured.ErrorType)
}

func TestFailInvalidInputIsTerminal(t *testing.T) {
	f := newRouterFixture(t)

	f.jobs.EXPECT().GetByExternalID(gomock.Any(), "ext-9").
		Return(&model.Job{ID: "job-1", Status: model.JobStatusProcessing}, nil)

	var captured *model.JobUpdate
	f.jobs.EXPECT().Update(gomock.Any(), "job-1", gomock.Any(), model.JobStatusProcessing).
		DoAndReturn(func(_ any, _ string, update *model.JobUpdate, _ model.JobStatus) (*model.Job, error) {
			captured = update
			return &model.Job{ID: "job-1", Status: model.JobStatusFailed}, nil
		})

	body := `{"externalJobId": "ext-9", "errorType": "invalid_prompt", "errorMessage": "bad prompt"}`
	req := httptest.NewRequest(http.MethodPost, "/api/worker/events/fail", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, captured)
	require.NotNil(t, captured.Status)
	assert.Equal(t, model.JobStatusFailed, *captured.Status)
	require.NotNil(t, captured.ErrorType)
	assert.Equal(t, string(failure.TypeInvalidInput), *captured.ErrorType)
}
