package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-notify/internal/models"
)

// RunRepository reads course runs with their group and course context.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs the repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// FindDetailByID returns a run joined with its group and course names.
func (r *RunRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseRunDetail, error) {
	const query = `SELECT cr.id, COALESCE(cr.name, '') AS name, cr.course_id, COALESCE(cr.group_id, '') AS group_id, cr.end_date,
        COALESCE(g.name, '') AS group_name, COALESCE(c.name, '') AS course_name
        FROM course_runs cr
        LEFT JOIN groups g ON g.id = cr.group_id
        LEFT JOIN courses c ON c.id = cr.course_id
        WHERE cr.id = $1`
	var detail models.CourseRunDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}
