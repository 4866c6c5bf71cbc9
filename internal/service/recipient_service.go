package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-notify/internal/models"
	appErrors "github.com/noah-isme/lms-notify/pkg/errors"
)

type courseReader interface {
	ListManagerRecipients(ctx context.Context, courseID string) ([]models.Recipient, error)
}

type submissionReader interface {
	SubmittedUserIDs(ctx context.Context, activityType models.ActivityType, activityID, runID string) (map[string]struct{}, error)
}

// RecipientService computes the exact recipient set a notification kind is
// entitled to reach. Student kinds are scoped to the run's group, manager
// kinds to the course; nothing outside the scope ever enters the set.
type RecipientService struct {
	groups      groupReader
	courses     courseReader
	users       userReader
	submissions submissionReader
	logger      *zap.Logger
}

// NewRecipientService constructs the service.
func NewRecipientService(groups groupReader, courses courseReader, users userReader, submissions submissionReader, logger *zap.Logger) *RecipientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipientService{groups: groups, courses: courses, users: users, submissions: submissions, logger: logger}
}

// BuildRecipients routes the resolved context to the scope rule for its kind.
// For document uploads this returns the student half; the manager half comes
// from ManagersOfCourse on the same context.
func (s *RecipientService) BuildRecipients(ctx context.Context, rctx *models.ResolvedContext) ([]models.Recipient, error) {
	switch rctx.Kind {
	case models.KindDeadlineReminder, models.KindActivityPosted, models.KindScorePublished, models.KindDocumentUploaded:
		return s.StudentsOfGroup(ctx, rctx.GroupID)
	case models.KindManagerDeadlineWarning, models.KindRunFinalized:
		return s.ManagersOfCourse(ctx, rctx.CourseID)
	case models.KindMissedDeadline:
		return s.NotSubmittedStudents(ctx, rctx)
	case models.KindPostDeadlineSummary:
		return s.SummaryRecipients(ctx, rctx)
	case models.KindRedoEnabled, models.KindAddedToGroup:
		return s.SingleRecipient(ctx, rctx)
	}
	return nil, fmt.Errorf("no recipient rule for kind %q", rctx.Kind)
}

// StudentsOfGroup returns the student members of exactly one group, deduped
// by user id. The membership query is the only filter; a student in several
// groups appears once, and only because of this group.
func (s *RecipientService) StudentsOfGroup(ctx context.Context, groupID string) ([]models.Recipient, error) {
	members, err := s.groups.ListStudentRecipients(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group students")
	}
	return dedupeByID(members), nil
}

// ManagersOfCourse returns the managers of exactly one course. An empty
// result is a valid no-op, not an error.
func (s *RecipientService) ManagersOfCourse(ctx context.Context, courseID string) ([]models.Recipient, error) {
	managers, err := s.courses.ListManagerRecipients(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course managers")
	}
	return dedupeByID(managers), nil
}

// NotSubmittedStudents returns the group's students minus everyone with a
// completed submission for the (activity, run) pair. The submitted set comes
// from exactly one table, selected by the activity's type.
func (s *RecipientService) NotSubmittedStudents(ctx context.Context, rctx *models.ResolvedContext) ([]models.Recipient, error) {
	students, err := s.StudentsOfGroup(ctx, rctx.GroupID)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, nil
	}

	submitted, err := s.submissions.SubmittedUserIDs(ctx, rctx.ActivityType, rctx.ActivityID, rctx.RunID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	remaining := make([]models.Recipient, 0, len(students))
	for _, student := range students {
		if _, ok := submitted[student.ID]; ok {
			continue
		}
		remaining = append(remaining, student)
	}
	return remaining, nil
}

// SummaryRecipients returns the course managers for a post-deadline summary
// and annotates the context with submitted / not-submitted counts. The counts
// describe the students; the recipient set stays the managers.
func (s *RecipientService) SummaryRecipients(ctx context.Context, rctx *models.ResolvedContext) ([]models.Recipient, error) {
	managers, err := s.ManagersOfCourse(ctx, rctx.CourseID)
	if err != nil {
		return nil, err
	}
	if len(managers) == 0 {
		return nil, nil
	}

	students, err := s.StudentsOfGroup(ctx, rctx.GroupID)
	if err != nil {
		return nil, err
	}

	rctx.SubmittedCount = 0
	rctx.NotSubmittedCount = 0
	if len(students) > 0 {
		submitted, err := s.submissions.SubmittedUserIDs(ctx, rctx.ActivityType, rctx.ActivityID, rctx.RunID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
		}
		for _, student := range students {
			if _, ok := submitted[student.ID]; ok {
				rctx.SubmittedCount++
			} else {
				rctx.NotSubmittedCount++
			}
		}
	}

	return managers, nil
}

// SingleRecipient re-validates the named user and returns them alone.
func (s *RecipientService) SingleRecipient(ctx context.Context, rctx *models.ResolvedContext) ([]models.Recipient, error) {
	if rctx.TargetUser == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingUser, "no target user resolved")
	}
	target, err := s.users.FindRecipientByID(ctx, rctx.TargetUser.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrMissingUser, "user "+rctx.TargetUser.ID+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return []models.Recipient{*target}, nil
}

func dedupeByID(recipients []models.Recipient) []models.Recipient {
	if len(recipients) < 2 {
		return recipients
	}
	seen := make(map[string]struct{}, len(recipients))
	result := make([]models.Recipient, 0, len(recipients))
	for _, r := range recipients {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		result = append(result, r)
	}
	return result
}
