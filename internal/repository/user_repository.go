package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-notify/internal/models"
)

// UserRepository reads user records from the platform store.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindRecipientByID returns the recipient projection of a user.
func (r *UserRepository) FindRecipientByID(ctx context.Context, id string) (*models.Recipient, error) {
	const query = `SELECT id AS user_id, full_name, email FROM users WHERE id = $1`
	var recipient models.Recipient
	if err := r.db.GetContext(ctx, &recipient, query, id); err != nil {
		return nil, err
	}
	return &recipient, nil
}
