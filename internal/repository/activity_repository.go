package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-notify/internal/models"
)

// ActivityRepository reads activities through their course-activity join.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// FindDetailByCourseActivityID resolves a course-activity join id into the
// activity row plus the owning course.
func (r *ActivityRepository) FindDetailByCourseActivityID(ctx context.Context, courseActivityID string) (*models.CourseActivityDetail, error) {
	const query = `SELECT ca.id AS course_activity_id, a.id AS activity_id, a.type AS activity_type, a.payload,
        ca.course_id, COALESCE(c.name, '') AS course_name
        FROM course_activities ca
        JOIN activities a ON a.id = ca.activity_id
        LEFT JOIN courses c ON c.id = ca.course_id
        WHERE ca.id = $1`
	var detail models.CourseActivityDetail
	if err := r.db.GetContext(ctx, &detail, query, courseActivityID); err != nil {
		return nil, err
	}
	return &detail, nil
}
