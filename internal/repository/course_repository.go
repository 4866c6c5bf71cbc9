package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-notify/internal/models"
)

// CourseRepository reads courses and their manager linkage.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListManagerRecipients returns every manager of the course. The course_id
// filter is the isolation boundary for manager notifications.
func (r *CourseRepository) ListManagerRecipients(ctx context.Context, courseID string) ([]models.Recipient, error) {
	const query = `SELECT cm.user_id, u.full_name, u.email
        FROM course_managers cm
        JOIN users u ON u.id = cm.user_id
        WHERE cm.course_id = $1
        ORDER BY cm.user_id`
	var recipients []models.Recipient
	if err := r.db.SelectContext(ctx, &recipients, query, courseID); err != nil {
		return nil, fmt.Errorf("list course managers: %w", err)
	}
	return recipients, nil
}
