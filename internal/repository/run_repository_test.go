package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRunRepositoryFindDetailByID(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	end := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "course_id", "group_id", "end_date", "group_name", "course_name"}).
		AddRow("run-1", "Spring 2026", "course-1", "group-1", end, "Cohort A", "Algebra")
	mock.ExpectQuery(`SELECT cr\.id, COALESCE\(cr\.name, ''\) AS name`).
		WithArgs("run-1").
		WillReturnRows(rows)

	detail, err := repo.FindDetailByID(context.Background(), "run-1")
	require.NoError(t, err)
	require.Equal(t, "Spring 2026", detail.Name)
	require.Equal(t, "group-1", detail.GroupID)
	require.Equal(t, "Cohort A", detail.GroupName)
	require.NotNil(t, detail.EndDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryFindDetailByIDCoalescesNulls(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "course_id", "group_id", "end_date", "group_name", "course_name"}).
		AddRow("run-2", "", "course-1", "", nil, "", "Algebra")
	mock.ExpectQuery(`SELECT cr\.id`).
		WithArgs("run-2").
		WillReturnRows(rows)

	detail, err := repo.FindDetailByID(context.Background(), "run-2")
	require.NoError(t, err)
	require.Empty(t, detail.GroupID)
	require.Empty(t, detail.Name)
	require.Nil(t, detail.EndDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryFindDetailByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectQuery(`SELECT cr\.id`).
		WithArgs("run-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindDetailByID(context.Background(), "run-missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
