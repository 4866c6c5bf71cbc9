package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-notify/internal/models"
)

// SubmissionRepository reads completion markers for graded activities.
// Each activity type has its own table; a lookup consults exactly one of them.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// SubmittedUserIDs returns the set of user ids with a completed submission for
// the (activity, run) pair. Quiz attempts count only when completed; an open
// attempt is not a submission.
func (r *SubmissionRepository) SubmittedUserIDs(ctx context.Context, activityType models.ActivityType, activityID, runID string) (map[string]struct{}, error) {
	var query string
	switch activityType {
	case models.ActivityTypeAssignment:
		query = `SELECT user_id FROM assignment_submissions WHERE activity_id = $1 AND run_id = $2 AND submitted_at IS NOT NULL`
	case models.ActivityTypeQuiz:
		query = `SELECT user_id FROM quiz_attempts WHERE activity_id = $1 AND run_id = $2 AND completed_at IS NOT NULL`
	case models.ActivityTypeExam:
		query = `SELECT user_id FROM exam_submissions WHERE activity_id = $1 AND run_id = $2 AND submitted_at IS NOT NULL`
	default:
		return nil, fmt.Errorf("activity type %q has no submission table", activityType)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, activityID, runID); err != nil {
		return nil, fmt.Errorf("list submitted user ids: %w", err)
	}

	submitted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		submitted[id] = struct{}{}
	}
	return submitted, nil
}
