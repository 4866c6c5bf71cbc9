package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-notify/internal/models"
	"github.com/noah-isme/lms-notify/internal/service"
	appErrors "github.com/noah-isme/lms-notify/pkg/errors"
	"github.com/noah-isme/lms-notify/pkg/response"
)

type notifierServiceMock struct {
	scheduled    bool
	scheduleErr  error
	report       models.DispatchReport
	reportErr    error
	lastDeadline time.Time
}

func (m *notifierServiceMock) ScheduleDeadlineNotifications(ctx context.Context, req service.ScheduleDeadlineRequest) (bool, error) {
	m.lastDeadline = req.Deadline
	return m.scheduled, m.scheduleErr
}

func (m *notifierServiceMock) NotifyActivityPosted(ctx context.Context, courseActivityID, runID string) (models.DispatchReport, error) {
	return m.report, m.reportErr
}

func (m *notifierServiceMock) NotifyScorePublished(ctx context.Context, courseActivityID, runID string) (models.DispatchReport, error) {
	return m.report, m.reportErr
}

func (m *notifierServiceMock) NotifyDocumentUploaded(ctx context.Context, runID, documentName string) (models.DispatchReport, error) {
	return m.report, m.reportErr
}

func (m *notifierServiceMock) NotifyRunFinalized(ctx context.Context, runID string) (models.DispatchReport, error) {
	return m.report, m.reportErr
}

func (m *notifierServiceMock) NotifyRedoEnabled(ctx context.Context, userID, courseActivityID, runID string) (models.DispatchReport, error) {
	return m.report, m.reportErr
}

func (m *notifierServiceMock) NotifyStudentAddedToGroup(ctx context.Context, userID, groupID string) (models.DispatchReport, error) {
	return m.report, m.reportErr
}

func postJSON(t *testing.T, h gin.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h(c)
	return w
}

func TestNotifyHandlerScheduleDeadlineAccepted(t *testing.T) {
	mock := &notifierServiceMock{scheduled: true}
	h := NewNotifyHandler(mock)

	deadline := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	w := postJSON(t, h.ScheduleDeadline, DeadlineRequest{
		CourseActivityID: "ca-1",
		RunID:            "run-1",
		Deadline:         deadline,
	})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, mock.lastDeadline.Equal(deadline))
}

func TestNotifyHandlerScheduleDeadlineSkipped(t *testing.T) {
	h := NewNotifyHandler(&notifierServiceMock{scheduled: false})

	w := postJSON(t, h.ScheduleDeadline, DeadlineRequest{
		CourseActivityID: "ca-1",
		RunID:            "run-1",
		Deadline:         time.Now().Add(time.Hour),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"scheduled":false`)
}

func TestNotifyHandlerScheduleDeadlineMissingFields(t *testing.T) {
	h := NewNotifyHandler(&notifierServiceMock{})

	w := postJSON(t, h.ScheduleDeadline, map[string]string{"run_id": "run-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifyHandlerActivityPosted(t *testing.T) {
	report := models.DispatchReport{
		Kind: models.KindActivityPosted,
		Recipients: []models.RecipientOutcome{
			{UserID: "user-1", PushOutcome: models.OutcomeSent, EmailOutcome: models.OutcomeSkipped},
		},
	}
	h := NewNotifyHandler(&notifierServiceMock{report: report})

	w := postJSON(t, h.ActivityPosted, ActivityRunRequest{CourseActivityID: "ca-1", RunID: "run-1"})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestNotifyHandlerResolutionErrorStatus(t *testing.T) {
	h := NewNotifyHandler(&notifierServiceMock{
		reportErr: appErrors.Clone(appErrors.ErrMissingActivity, "course activity ca-9 not found"),
	})

	w := postJSON(t, h.ActivityPosted, ActivityRunRequest{CourseActivityID: "ca-9", RunID: "run-1"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_ACTIVITY")
}

func TestNotifyHandlerMalformedPayloadStatus(t *testing.T) {
	h := NewNotifyHandler(&notifierServiceMock{
		reportErr: appErrors.Clone(appErrors.ErrMalformedPayload, ""),
	})

	w := postJSON(t, h.ScorePublished, ActivityRunRequest{CourseActivityID: "ca-1", RunID: "run-1"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestNotifyHandlerDocumentUploadedRequiresName(t *testing.T) {
	h := NewNotifyHandler(&notifierServiceMock{})

	w := postJSON(t, h.DocumentUploaded, map[string]string{"run_id": "run-1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifyHandlerGroupMemberAdded(t *testing.T) {
	report := models.DispatchReport{
		Kind: models.KindAddedToGroup,
		Recipients: []models.RecipientOutcome{
			{UserID: "user-1", PushOutcome: models.OutcomeSent, EmailOutcome: models.OutcomeSent},
		},
	}
	h := NewNotifyHandler(&notifierServiceMock{report: report})

	w := postJSON(t, h.GroupMemberAdded, GroupMemberRequest{UserID: "user-1", GroupID: "group-1"})
	require.Equal(t, http.StatusOK, w.Code)
}
