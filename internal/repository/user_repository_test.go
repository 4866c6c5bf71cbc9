package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserRepositoryFindRecipientByID(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "full_name", "email"}).
		AddRow("user-1", "Student One", "one@example.com")
	mock.ExpectQuery(`SELECT id AS user_id, full_name, email FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnRows(rows)

	recipient, err := repo.FindRecipientByID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", recipient.ID)
	require.NotNil(t, recipient.Email)
	require.Equal(t, "one@example.com", *recipient.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindRecipientByIDNullEmail(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "full_name", "email"}).
		AddRow("user-2", "Student Two", nil)
	mock.ExpectQuery(`SELECT id AS user_id`).
		WithArgs("user-2").
		WillReturnRows(rows)

	recipient, err := repo.FindRecipientByID(context.Background(), "user-2")
	require.NoError(t, err)
	require.Nil(t, recipient.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindRecipientByIDNotFound(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT id AS user_id`).
		WithArgs("user-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindRecipientByID(context.Background(), "user-missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
