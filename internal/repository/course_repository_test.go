package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryListManagerRecipientsFiltersByCourse(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "full_name", "email"}).
		AddRow("mgr-1", "Manager One", "mgr1@example.com")
	mock.ExpectQuery(`SELECT cm\.user_id, u\.full_name, u\.email\s+FROM course_managers cm\s+JOIN users u ON u\.id = cm\.user_id\s+WHERE cm\.course_id = \$1\s+ORDER BY cm\.user_id`).
		WithArgs("course-2").
		WillReturnRows(rows)

	managers, err := repo.ListManagerRecipients(context.Background(), "course-2")
	require.NoError(t, err)
	require.Len(t, managers, 1)
	require.Equal(t, "mgr-1", managers[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListManagerRecipientsNone(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(`SELECT cm\.user_id`).
		WithArgs("course-7").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "full_name", "email"}))

	managers, err := repo.ListManagerRecipients(context.Background(), "course-7")
	require.NoError(t, err)
	require.Empty(t, managers)
	require.NoError(t, mock.ExpectationsWereMet())
}
