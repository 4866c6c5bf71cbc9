package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-notify/internal/models"
	appErrors "github.com/noah-isme/lms-notify/pkg/errors"
)

type activityReader interface {
	FindDetailByCourseActivityID(ctx context.Context, courseActivityID string) (*models.CourseActivityDetail, error)
}

type runReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.CourseRunDetail, error)
}

type groupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
	ListStudentRecipients(ctx context.Context, groupID string) ([]models.Recipient, error)
}

type userReader interface {
	FindRecipientByID(ctx context.Context, id string) (*models.Recipient, error)
}

// ContextResolver turns trigger identifiers into the denormalized facts a
// notification needs. Read-only; every failure here aborts the task before
// any recipient is computed.
type ContextResolver struct {
	activities activityReader
	runs       runReader
	groups     groupReader
	users      userReader
	logger     *zap.Logger
}

// NewContextResolver constructs the resolver.
func NewContextResolver(activities activityReader, runs runReader, groups groupReader, users userReader, logger *zap.Logger) *ContextResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextResolver{activities: activities, runs: runs, groups: groups, users: users, logger: logger}
}

// ResolveActivityRun resolves activity-bearing kinds: the course-activity join,
// the embedded title payload, and the run with its group and course linkage.
func (s *ContextResolver) ResolveActivityRun(ctx context.Context, kind models.NotificationKind, courseActivityID, runID string) (*models.ResolvedContext, error) {
	rctx := &models.ResolvedContext{Kind: kind}
	if err := s.fillActivity(ctx, rctx, courseActivityID); err != nil {
		return nil, err
	}
	if err := s.fillRun(ctx, rctx, runID); err != nil {
		return nil, err
	}
	return rctx, nil
}

// ResolveRun resolves run-bearing kinds (document uploads, run finalization)
// which have no activity attached.
func (s *ContextResolver) ResolveRun(ctx context.Context, kind models.NotificationKind, runID string) (*models.ResolvedContext, error) {
	rctx := &models.ResolvedContext{Kind: kind}
	if err := s.fillRun(ctx, rctx, runID); err != nil {
		return nil, err
	}
	return rctx, nil
}

// ResolveGroupUser resolves membership kinds addressed at one named user.
func (s *ContextResolver) ResolveGroupUser(ctx context.Context, kind models.NotificationKind, userID, groupID string) (*models.ResolvedContext, error) {
	rctx := &models.ResolvedContext{Kind: kind}

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrMissingGroup, "group "+groupID+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	rctx.GroupID = group.ID
	rctx.GroupName = group.Name

	target, err := s.users.FindRecipientByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrMissingUser, "user "+userID+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	rctx.TargetUser = target

	return rctx, nil
}

// ResolveUserActivityRun resolves single-recipient kinds that also carry an
// activity and run (redo enablement).
func (s *ContextResolver) ResolveUserActivityRun(ctx context.Context, kind models.NotificationKind, userID, courseActivityID, runID string) (*models.ResolvedContext, error) {
	rctx, err := s.ResolveActivityRun(ctx, kind, courseActivityID, runID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.FindRecipientByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrMissingUser, "user "+userID+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	rctx.TargetUser = target

	return rctx, nil
}

func (s *ContextResolver) fillActivity(ctx context.Context, rctx *models.ResolvedContext, courseActivityID string) error {
	detail, err := s.activities.FindDetailByCourseActivityID(ctx, courseActivityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrMissingActivity, "course activity "+courseActivityID+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course activity")
	}

	payload, err := models.ParseActivityPayload(detail.Payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrMalformedPayload.Code, appErrors.ErrMalformedPayload.Status, "activity "+detail.ActivityID+" payload cannot be parsed")
	}
	if strings.TrimSpace(payload.Title) == "" {
		return appErrors.Clone(appErrors.ErrMissingTitle, "activity "+detail.ActivityID+" has no title")
	}
	if detail.CourseName == "" {
		return appErrors.Clone(appErrors.ErrMissingCourse, "course for activity "+courseActivityID+" not found")
	}

	rctx.CourseActivityID = detail.CourseActivityID
	rctx.ActivityID = detail.ActivityID
	rctx.ActivityType = detail.ActivityType
	rctx.ActivityTitle = payload.Title
	rctx.CourseID = detail.CourseID
	rctx.CourseName = detail.CourseName
	return nil
}

func (s *ContextResolver) fillRun(ctx context.Context, rctx *models.ResolvedContext, runID string) error {
	run, err := s.runs.FindDetailByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrMissingRun, "run "+runID+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	if run.GroupID == "" {
		return appErrors.Clone(appErrors.ErrMissingGroup, "run "+runID+" has no group")
	}
	if run.Name == "" {
		return appErrors.Clone(appErrors.ErrMissingRunName, "run "+runID+" has no name")
	}

	rctx.RunID = run.ID
	rctx.RunName = run.Name
	rctx.GroupID = run.GroupID
	rctx.GroupName = run.GroupName
	rctx.Deadline = run.EndDate
	if rctx.CourseID == "" {
		rctx.CourseID = run.CourseID
		rctx.CourseName = run.CourseName
	}
	return nil
}
