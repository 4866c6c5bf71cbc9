package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-notify/internal/models"
	"github.com/noah-isme/lms-notify/internal/service"
	appErrors "github.com/noah-isme/lms-notify/pkg/errors"
	"github.com/noah-isme/lms-notify/pkg/response"
)

type notifierService interface {
	ScheduleDeadlineNotifications(ctx context.Context, req service.ScheduleDeadlineRequest) (bool, error)
	NotifyActivityPosted(ctx context.Context, courseActivityID, runID string) (models.DispatchReport, error)
	NotifyScorePublished(ctx context.Context, courseActivityID, runID string) (models.DispatchReport, error)
	NotifyDocumentUploaded(ctx context.Context, runID, documentName string) (models.DispatchReport, error)
	NotifyRunFinalized(ctx context.Context, runID string) (models.DispatchReport, error)
	NotifyRedoEnabled(ctx context.Context, userID, courseActivityID, runID string) (models.DispatchReport, error)
	NotifyStudentAddedToGroup(ctx context.Context, userID, groupID string) (models.DispatchReport, error)
}

// NotifyHandler exposes the internal trigger endpoints that LMS services call
// when a domain event happens.
type NotifyHandler struct {
	notifier notifierService
}

// NewNotifyHandler constructs NotifyHandler.
func NewNotifyHandler(notifier notifierService) *NotifyHandler {
	return &NotifyHandler{notifier: notifier}
}

// ActivityRunRequest identifies a course activity inside a run.
type ActivityRunRequest struct {
	CourseActivityID string `json:"course_activity_id" binding:"required"`
	RunID            string `json:"run_id" binding:"required"`
}

// DeadlineRequest carries the deadline to schedule notifications around.
type DeadlineRequest struct {
	CourseActivityID string    `json:"course_activity_id" binding:"required"`
	RunID            string    `json:"run_id" binding:"required"`
	Deadline         time.Time `json:"deadline" binding:"required"`
}

// DocumentUploadedRequest announces a new document on a run.
type DocumentUploadedRequest struct {
	RunID        string `json:"run_id" binding:"required"`
	DocumentName string `json:"document_name" binding:"required"`
}

// RunRequest identifies a run.
type RunRequest struct {
	RunID string `json:"run_id" binding:"required"`
}

// UserActivityRunRequest targets a single user for an activity in a run.
type UserActivityRunRequest struct {
	UserID           string `json:"user_id" binding:"required"`
	CourseActivityID string `json:"course_activity_id" binding:"required"`
	RunID            string `json:"run_id" binding:"required"`
}

// GroupMemberRequest identifies a user joining a group.
type GroupMemberRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	GroupID string `json:"group_id" binding:"required"`
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// ScheduleDeadline registers the deadline notification chain for an activity.
// Responds 202 once the fire times are queued; non-graded activities yield a
// 200 with scheduled=false.
func (h *NotifyHandler) ScheduleDeadline(c *gin.Context) {
	var req DeadlineRequest
	if !bindJSON(c, &req) {
		return
	}
	scheduled, err := h.notifier.ScheduleDeadlineNotifications(c.Request.Context(), service.ScheduleDeadlineRequest{
		CourseActivityID: req.CourseActivityID,
		RunID:            req.RunID,
		Deadline:         req.Deadline,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if !scheduled {
		response.JSON(c, http.StatusOK, gin.H{"scheduled": false})
		return
	}
	response.Accepted(c, gin.H{"scheduled": true})
}

// ActivityPosted fans out the new-activity notification to run students.
func (h *NotifyHandler) ActivityPosted(c *gin.Context) {
	var req ActivityRunRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.notifier.NotifyActivityPosted(c.Request.Context(), req.CourseActivityID, req.RunID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// ScorePublished fans out the scores-available notification to run students.
func (h *NotifyHandler) ScorePublished(c *gin.Context) {
	var req ActivityRunRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.notifier.NotifyScorePublished(c.Request.Context(), req.CourseActivityID, req.RunID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// DocumentUploaded notifies both run students and course managers about a new
// document.
func (h *NotifyHandler) DocumentUploaded(c *gin.Context) {
	var req DocumentUploadedRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.notifier.NotifyDocumentUploaded(c.Request.Context(), req.RunID, req.DocumentName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// RunFinalized notifies the course's managers that the run is finalized.
func (h *NotifyHandler) RunFinalized(c *gin.Context) {
	var req RunRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.notifier.NotifyRunFinalized(c.Request.Context(), req.RunID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// RedoEnabled notifies a single student that a retake was opened for them.
func (h *NotifyHandler) RedoEnabled(c *gin.Context) {
	var req UserActivityRunRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.notifier.NotifyRedoEnabled(c.Request.Context(), req.UserID, req.CourseActivityID, req.RunID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// GroupMemberAdded welcomes a student that was just added to a group.
func (h *NotifyHandler) GroupMemberAdded(c *gin.Context) {
	var req GroupMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.notifier.NotifyStudentAddedToGroup(c.Request.Context(), req.UserID, req.GroupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
