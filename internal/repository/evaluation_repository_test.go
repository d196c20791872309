package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/trainbase/evaluation-api/internal/models"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
)

func TestEvaluationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_evaluations")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	eval := &models.StudentEvaluation{
		StudentID:     "student-1",
		TrainerID:     "trainer-1",
		SessionID:     "session-1",
		GroupID:       "group-1",
		OverallRating: 4,
	}
	require.NoError(t, repo.Create(context.Background(), eval))
	require.NotEmpty(t, eval.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryCreateDuplicateMapsToConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_evaluations")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_evaluations_session_student"})

	err := repo.Create(context.Background(), &models.StudentEvaluation{
		StudentID: "student-1",
		TrainerID: "trainer-1",
		SessionID: "session-1",
		GroupID:   "group-1",
	})
	require.Error(t, err)
	var typed *appErrors.Error
	require.True(t, errors.As(err, &typed))
	require.Equal(t, appErrors.ErrConflict.Code, typed.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryListBuildsFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "trainer_id", "session_id", "group_id"})
	mock.ExpectQuery(regexp.QuoteMeta("JOIN groups g ON g.id = e.group_id")).
		WithArgs("group-1", "course-1").
		WillReturnRows(rows)

	evaluations, err := repo.List(context.Background(), models.EvaluationFilter{
		GroupID:  "group-1",
		CourseID: "course-1",
	})
	require.NoError(t, err)
	require.Empty(t, evaluations)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryDeleteByGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_evaluations WHERE group_id")).
		WithArgs("group-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteByGroup(context.Background(), "group-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryListAppliesPagination(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY e.created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("group-1", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.List(context.Background(), models.EvaluationFilter{
		GroupID: "group-1",
		Limit:   10,
		Offset:  20,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM student_evaluations e")).
		WithArgs("group-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background(), models.EvaluationFilter{GroupID: "group-1"})
	require.NoError(t, err)
	require.Equal(t, 7, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryListAppliesOffsetWithoutLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY e.created_at DESC OFFSET $2")).
		WithArgs("group-1", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.List(context.Background(), models.EvaluationFilter{
		GroupID: "group-1",
		Offset:  20,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
