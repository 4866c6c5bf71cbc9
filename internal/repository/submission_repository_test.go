package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-notify/internal/models"
)

func newSubmissionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubmissionRepositoryQuizCountsCompletedOnly(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM quiz_attempts WHERE activity_id = $1 AND run_id = $2 AND completed_at IS NOT NULL")).
		WithArgs("act-2", "run-3").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-6"))

	submitted, err := repo.SubmittedUserIDs(context.Background(), models.ActivityTypeQuiz, "act-2", "run-3")
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	_, ok := submitted["user-6"]
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryAssignmentTable(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM assignment_submissions WHERE activity_id = $1 AND run_id = $2 AND submitted_at IS NOT NULL")).
		WithArgs("act-1", "run-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-1").AddRow("user-2"))

	submitted, err := repo.SubmittedUserIDs(context.Background(), models.ActivityTypeAssignment, "act-1", "run-1")
	require.NoError(t, err)
	require.Len(t, submitted, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryRejectsUngradedType(t *testing.T) {
	db, _, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	_, err := repo.SubmittedUserIDs(context.Background(), models.ActivityTypeOther, "act-9", "run-9")
	require.Error(t, err)
}
