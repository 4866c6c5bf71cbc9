package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-notify/internal/models"
	appErrors "github.com/noah-isme/lms-notify/pkg/errors"
	"github.com/noah-isme/lms-notify/pkg/jobs"
)

// NotifierService orchestrates the resolve → build recipients → dispatch
// pipeline for every notification kind, and the schedule → fire pattern for
// the deadline family.
type NotifierService struct {
	resolver   *ContextResolver
	recipients *RecipientService
	dispatcher *DispatchService
	content    *ContentBuilder
	scheduler  TaskScheduler
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewNotifierService constructs the service.
func NewNotifierService(resolver *ContextResolver, recipients *RecipientService, dispatcher *DispatchService, content *ContentBuilder, scheduler TaskScheduler, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *NotifierService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifierService{
		resolver:   resolver,
		recipients: recipients,
		dispatcher: dispatcher,
		content:    content,
		scheduler:  scheduler,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
	}
}

// ScheduleDeadlineRequest carries the inputs for registering a deadline chain.
type ScheduleDeadlineRequest struct {
	CourseActivityID string    `validate:"required"`
	RunID            string    `validate:"required"`
	Deadline         time.Time `validate:"required"`
}

// ScheduleDeadlineNotifications validates the activity-type gate and
// registers the deadline-family fires with the scheduler at their offsets.
// Non-graded activity types are a clean skip. Context is re-resolved fresh at
// fire time; nothing resolved here is trusted later.
func (s *NotifierService) ScheduleDeadlineNotifications(ctx context.Context, req ScheduleDeadlineRequest) (bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid deadline schedule request")
	}
	courseActivityID, runID, deadline := req.CourseActivityID, req.RunID, req.Deadline

	rctx, err := s.resolver.ResolveActivityRun(ctx, models.KindDeadlineReminder, courseActivityID, runID)
	if err != nil {
		return false, err
	}
	if !rctx.ActivityType.Graded() {
		s.logger.Info("skipping deadline scheduling for non-graded activity",
			zap.String("course_activity_id", courseActivityID),
			zap.String("activity_type", string(rctx.ActivityType)),
		)
		return false, nil
	}

	for _, kind := range models.DeadlineKinds {
		payload, err := json.Marshal(models.ScheduledTask{
			Kind:             kind,
			CourseActivityID: courseActivityID,
			RunID:            runID,
		})
		if err != nil {
			return false, fmt.Errorf("encode %s task: %w", kind, err)
		}
		fireAt := deadline.Add(-kind.FireOffset())
		tags := []string{string(kind), runID, courseActivityID}
		if err := s.scheduler.ScheduleAt(ctx, fireAt, string(kind), payload, tags); err != nil {
			return false, fmt.Errorf("schedule %s: %w", kind, err)
		}
		s.metrics.ObserveScheduled(kind)
	}
	return true, nil
}

// HandleTask routes a fired scheduler task to its pipeline. Unknown task
// kinds are an error so the queue surfaces them.
func (s *NotifierService) HandleTask(ctx context.Context, task jobs.Task) error {
	var scheduled models.ScheduledTask
	if err := json.Unmarshal(task.Payload, &scheduled); err != nil {
		return fmt.Errorf("decode task %s: %w", task.ID, err)
	}

	var report models.DispatchReport
	var err error
	switch scheduled.Kind {
	case models.KindDeadlineReminder, models.KindManagerDeadlineWarning,
		models.KindMissedDeadline, models.KindPostDeadlineSummary:
		report, err = s.FireDeadlineKind(ctx, scheduled.Kind, scheduled.CourseActivityID, scheduled.RunID)
	default:
		return fmt.Errorf("unknown task kind %q", scheduled.Kind)
	}
	if err != nil {
		return err
	}

	s.logger.Info("scheduled notification dispatched",
		zap.String("task_id", task.ID),
		zap.String("kind", string(scheduled.Kind)),
		zap.Int("recipients", len(report.Recipients)),
		zap.Bool("skipped", report.Skipped),
	)
	return nil
}

// FireDeadlineKind runs the full pipeline for one deadline-family kind.
// Resolution is fresh: the activity or run may have changed since the
// schedule phase, including its type or deadline.
func (s *NotifierService) FireDeadlineKind(ctx context.Context, kind models.NotificationKind, courseActivityID, runID string) (models.DispatchReport, error) {
	rctx, err := s.resolver.ResolveActivityRun(ctx, kind, courseActivityID, runID)
	if err != nil {
		return models.DispatchReport{Kind: kind}, err
	}
	if !rctx.ActivityType.Graded() {
		s.logger.Info("skipping non-graded activity",
			zap.String("kind", string(kind)),
			zap.String("course_activity_id", courseActivityID),
		)
		return models.DispatchReport{Kind: kind, Skipped: true}, nil
	}
	return s.fanOut(ctx, rctx)
}

// NotifyActivityPosted informs the run's students about a new activity.
func (s *NotifierService) NotifyActivityPosted(ctx context.Context, courseActivityID, runID string) (models.DispatchReport, error) {
	rctx, err := s.resolver.ResolveActivityRun(ctx, models.KindActivityPosted, courseActivityID, runID)
	if err != nil {
		return models.DispatchReport{Kind: models.KindActivityPosted}, err
	}
	return s.fanOut(ctx, rctx)
}

// NotifyScorePublished informs the run's students their scores are out.
func (s *NotifierService) NotifyScorePublished(ctx context.Context, courseActivityID, runID string) (models.DispatchReport, error) {
	rctx, err := s.resolver.ResolveActivityRun(ctx, models.KindScorePublished, courseActivityID, runID)
	if err != nil {
		return models.DispatchReport{Kind: models.KindScorePublished}, err
	}
	return s.fanOut(ctx, rctx)
}

// NotifyDocumentUploaded informs both the run's students and the course's
// managers about a new document. The two halves are independent fan-outs over
// disjoint scope rules; their outcomes merge into one report.
func (s *NotifierService) NotifyDocumentUploaded(ctx context.Context, runID, documentName string) (models.DispatchReport, error) {
	rctx, err := s.resolver.ResolveRun(ctx, models.KindDocumentUploaded, runID)
	if err != nil {
		return models.DispatchReport{Kind: models.KindDocumentUploaded}, err
	}
	rctx.DocumentName = documentName

	students, err := s.recipients.StudentsOfGroup(ctx, rctx.GroupID)
	if err != nil {
		return models.DispatchReport{Kind: rctx.Kind}, err
	}
	managers, err := s.recipients.ManagersOfCourse(ctx, rctx.CourseID)
	if err != nil {
		return models.DispatchReport{Kind: rctx.Kind}, err
	}

	report := s.dispatchTo(ctx, rctx, students)
	managerReport := s.dispatchTo(ctx, rctx, managers)
	report.Recipients = append(report.Recipients, managerReport.Recipients...)
	return report, nil
}

// NotifyRunFinalized informs the course's managers that a run is finalized.
func (s *NotifierService) NotifyRunFinalized(ctx context.Context, runID string) (models.DispatchReport, error) {
	rctx, err := s.resolver.ResolveRun(ctx, models.KindRunFinalized, runID)
	if err != nil {
		return models.DispatchReport{Kind: models.KindRunFinalized}, err
	}
	return s.fanOut(ctx, rctx)
}

// NotifyRedoEnabled informs one student they may re-attempt an activity.
func (s *NotifierService) NotifyRedoEnabled(ctx context.Context, userID, courseActivityID, runID string) (models.DispatchReport, error) {
	rctx, err := s.resolver.ResolveUserActivityRun(ctx, models.KindRedoEnabled, userID, courseActivityID, runID)
	if err != nil {
		return models.DispatchReport{Kind: models.KindRedoEnabled}, err
	}
	return s.fanOut(ctx, rctx)
}

// NotifyStudentAddedToGroup informs one student of a new group membership.
func (s *NotifierService) NotifyStudentAddedToGroup(ctx context.Context, userID, groupID string) (models.DispatchReport, error) {
	rctx, err := s.resolver.ResolveGroupUser(ctx, models.KindAddedToGroup, userID, groupID)
	if err != nil {
		return models.DispatchReport{Kind: models.KindAddedToGroup}, err
	}
	return s.fanOut(ctx, rctx)
}

func (s *NotifierService) fanOut(ctx context.Context, rctx *models.ResolvedContext) (models.DispatchReport, error) {
	recipients, err := s.recipients.BuildRecipients(ctx, rctx)
	if err != nil {
		return models.DispatchReport{Kind: rctx.Kind}, err
	}
	return s.dispatchTo(ctx, rctx, recipients), nil
}

func (s *NotifierService) dispatchTo(ctx context.Context, rctx *models.ResolvedContext, recipients []models.Recipient) models.DispatchReport {
	if len(recipients) == 0 {
		s.logger.Info("no recipients, nothing dispatched", zap.String("kind", string(rctx.Kind)))
		return models.DispatchReport{Kind: rctx.Kind, Recipients: []models.RecipientOutcome{}}
	}
	return s.dispatcher.Dispatch(ctx, rctx.Kind, recipients, func(recipient models.Recipient) (models.PushMessage, models.EmailMessage) {
		return s.content.Build(rctx, recipient)
	})
}
