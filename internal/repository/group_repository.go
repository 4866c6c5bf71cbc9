package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-notify/internal/models"
)

// GroupRepository reads groups and their student memberships.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID returns a group by its ID.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, name FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListStudentRecipients returns every student member of the group, joined to
// users for display name and email. The group_id filter is the isolation
// boundary for run-scoped notifications; ordering by user id keeps iteration
// deterministic.
func (r *GroupRepository) ListStudentRecipients(ctx context.Context, groupID string) ([]models.Recipient, error) {
	const query = `SELECT DISTINCT gm.user_id, u.full_name, u.email
        FROM group_memberships gm
        JOIN users u ON u.id = gm.user_id
        WHERE gm.group_id = $1 AND gm.role = $2
        ORDER BY gm.user_id`
	var recipients []models.Recipient
	if err := r.db.SelectContext(ctx, &recipients, query, groupID, models.MembershipRoleStudent); err != nil {
		return nil, fmt.Errorf("list group students: %w", err)
	}
	return recipients, nil
}
